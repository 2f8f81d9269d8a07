package frames

import (
	"image"

	"github.com/disintegration/imaging"

	"roadsafety-service/internal/geometry"
)

// CropMargin is the padding, in pixels, added around a plate box before OCR.
const CropMargin = 10

// CropRegion extracts a box from the frame with a margin, clamped to the
// image bounds. Returns nil when the clamped region is empty.
func CropRegion(img image.Image, box geometry.Box, margin int) image.Image {
	b := img.Bounds()
	// Not image.Rect: it would swap inverted corners and turn a fully
	// out-of-bounds box into a bogus nonempty rectangle.
	r := image.Rectangle{
		Min: image.Pt(max(b.Min.X, box.X1-margin), max(b.Min.Y, box.Y1-margin)),
		Max: image.Pt(min(b.Max.X, box.X2+margin), min(b.Max.Y, box.Y2+margin)),
	}
	if r.Empty() {
		return nil
	}
	return imaging.Crop(img, r)
}
