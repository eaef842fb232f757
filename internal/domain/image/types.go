package image

import (
	"errors"
	stdimage "image"
	"io"
)

// Upload is a single client-submitted file, as received by the transport layer.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Metadata describes a successfully validated image.
type Metadata struct {
	Filename string
	Format   string
	Width    int
	Height   int
	Mode     string
	FileSize int64
}

// Canonical is the normalized three-channel representation handed to detectors.
// Detectors read it and never mutate it.
type Canonical struct {
	Pixels     *stdimage.RGBA
	SourceMode string
}

// Bounds reports the pixel dimensions of the canonical image.
func (c *Canonical) Bounds() stdimage.Rectangle {
	return c.Pixels.Bounds()
}

// Mode reports the canonical color model.
func (c *Canonical) Mode() string {
	return "RGB"
}

// ValidationCode identifies the specific constraint an upload violated.
type ValidationCode string

const (
	CodeUnsupportedFormat   ValidationCode = "unsupported_format"
	CodeUnsupportedMimeType ValidationCode = "unsupported_mime_type"
	CodePayloadTooLarge     ValidationCode = "payload_too_large"
	CodeCorruptImage        ValidationCode = "corrupt_image"
)

// ValidationError is a client-caused rejection; it carries a machine-readable
// code so the transport layer can map it to a status without string matching.
type ValidationError struct {
	Code    ValidationCode
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
