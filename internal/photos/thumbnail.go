package photos

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Thumbnail geometry and encoding.
const (
	ThumbnailSize    = 300
	ThumbnailQuality = 85
)

// makeThumbnail writes a JPEG that fits within ThumbnailSize on both sides,
// flattening any transparency onto white.
func makeThumbnail(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	fitted := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	bounds := fitted.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, fitted, image.Pt(0, 0), 1.0)

	if err := imaging.Save(flat, dst, imaging.JPEGQuality(ThumbnailQuality)); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}
