package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	"io"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"deepscan-server/internal/platform/config"
	"deepscan-server/internal/platform/logging"
)

// Validator applies the layered acceptance checks against incoming uploads.
// Checks run in a fixed order and the first failure wins: extension, declared
// MIME type, byte size, structural decode.
type Validator struct {
	cfg    *config.UploadConfig
	logger *logging.Logger
}

func NewValidator(cfg *config.UploadConfig, logger *logging.Logger) *Validator {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Validate checks the upload and, on success, returns the decoded image along
// with its metadata. Failures are always *ValidationError. If the upload
// reader is seekable its position is restored to the start afterwards.
func (v *Validator) Validate(upload Upload) (stdimage.Image, *Metadata, error) {
	if err := v.checkExtension(upload.Filename); err != nil {
		return nil, nil, err
	}
	if err := v.checkMimeType(upload.ContentType); err != nil {
		return nil, nil, err
	}

	raw, err := v.readLimited(upload.Reader)
	if err != nil {
		return nil, nil, err
	}

	decoded, format, err := v.decode(raw)
	if err != nil {
		return nil, nil, err
	}

	bounds := decoded.Bounds()
	meta := &Metadata{
		Filename: upload.Filename,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Mode:     colorModeOf(decoded),
		FileSize: int64(len(raw)),
	}

	v.logger.Debug(
		"image validation success: format=%s width=%d height=%d size=%d",
		meta.Format, meta.Width, meta.Height, meta.FileSize,
	)

	return decoded, meta, nil
}

func (v *Validator) checkExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range v.cfg.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return nil
		}
	}
	return &ValidationError{
		Code: CodeUnsupportedFormat,
		Message: fmt.Sprintf(
			"invalid file format %q, allowed formats: %s",
			ext, strings.Join(v.cfg.AllowedExtensions, ", "),
		),
	}
}

func (v *Validator) checkMimeType(contentType string) error {
	declared := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	for _, allowed := range v.cfg.AllowedMimeTypes {
		if strings.ToLower(allowed) == declared {
			return nil
		}
	}
	return &ValidationError{
		Code: CodeUnsupportedMimeType,
		Message: fmt.Sprintf(
			"invalid MIME type %q, allowed types: %s",
			contentType, strings.Join(v.cfg.AllowedMimeTypes, ", "),
		),
	}
}

// readLimited drains the upload into memory, bounded one byte past the limit
// so an oversized stream is detected without buffering it whole.
func (v *Validator) readLimited(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, &ValidationError{
			Code:    CodeCorruptImage,
			Message: "missing image payload",
		}
	}

	if seeker, ok := r.(io.Seeker); ok {
		defer seeker.Seek(0, io.SeekStart)
	}

	limited := &io.LimitedReader{R: r, N: v.cfg.MaxFileSize + 1}
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, &ValidationError{
			Code:    CodeCorruptImage,
			Message: "failed to read image payload",
			Cause:   err,
		}
	}

	if limited.N <= 0 {
		v.logger.Warn(
			"detected oversized upload: max_size=%d",
			v.cfg.MaxFileSize,
		)
		return nil, &ValidationError{
			Code: CodePayloadTooLarge,
			Message: fmt.Sprintf(
				"file too large, maximum size: %.1fMB",
				v.cfg.MaxFileSizeMB(),
			),
		}
	}
	if len(raw) == 0 {
		return nil, &ValidationError{
			Code:    CodeCorruptImage,
			Message: "empty image payload",
		}
	}
	return raw, nil
}

// decode performs a full structural decode, not just a header probe, so
// truncated or corrupt streams are rejected before anything downstream
// touches the pixels.
func (v *Validator) decode(raw []byte) (stdimage.Image, string, error) {
	decoded, format, err := stdimage.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", &ValidationError{
			Code:    CodeCorruptImage,
			Message: fmt.Sprintf("invalid image file: %v", err),
			Cause:   err,
		}
	}
	return decoded, format, nil
}

func colorModeOf(img stdimage.Image) string {
	switch img.(type) {
	case *stdimage.RGBA, *stdimage.RGBA64:
		return "RGBA"
	case *stdimage.NRGBA, *stdimage.NRGBA64:
		return "NRGBA"
	case *stdimage.Gray, *stdimage.Gray16:
		return "Gray"
	case *stdimage.YCbCr:
		return "YCbCr"
	case *stdimage.CMYK:
		return "CMYK"
	case *stdimage.Paletted:
		return "Paletted"
	default:
		return "Unknown"
	}
}
