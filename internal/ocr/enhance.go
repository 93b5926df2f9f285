package ocr

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// EnhanceImage writes a grayscale, contrast-boosted, sharpened copy of in to out.
func EnhanceImage(in, out string) error {
	src, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.AdjustGamma(img, 1.2)
	if err := imaging.Save(img, out); err != nil {
		return fmt.Errorf("save enhanced image: %w", err)
	}
	return nil
}
