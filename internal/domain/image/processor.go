package image

import (
	stdimage "image"
	stddraw "image/draw"

	xdraw "golang.org/x/image/draw"
)

// Processor normalizes validated images into the canonical representation
// consumed by detectors. It is stateless and safe for concurrent use.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Normalize converts the decoded image to the three-channel canonical form.
// Images already backed by RGBA pixels pass through without copying.
func (p *Processor) Normalize(img stdimage.Image) *Canonical {
	sourceMode := colorModeOf(img)

	if rgba, ok := img.(*stdimage.RGBA); ok {
		return &Canonical{Pixels: rgba, SourceMode: sourceMode}
	}

	bounds := img.Bounds()
	rgba := stdimage.NewRGBA(bounds)
	stddraw.Draw(rgba, bounds, img, bounds.Min, stddraw.Src)

	return &Canonical{Pixels: rgba, SourceMode: sourceMode}
}

// FitWithin downscales the image to fit inside maxWidth x maxHeight while
// keeping its aspect ratio. The default pipeline does not call this; it is
// available for preprocessing ahead of a real-model variant.
func (p *Processor) FitWithin(img stdimage.Image, maxWidth, maxHeight int) stdimage.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
