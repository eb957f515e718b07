package pipeline

import (
	"image"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// Refine cleans a segmentation mask.
//
// The mask is binarized at its Otsu threshold (foreground is strictly above
// it), closed with a square structuring element and median filtered. A
// constant mask has no Otsu threshold; it is only normalized so that any
// nonzero value becomes 255. The result always holds 0 and 255 only.
func Refine(mask *image.Gray, cfg config.Config) *image.Gray {
	var bin *image.Gray
	if t, ok := imaging.OtsuThreshold(imaging.Histogram(mask)); ok {
		bin = imaging.Binarize(mask, t)
	} else {
		bin = imaging.Binarize(mask, 0)
	}

	closed := imaging.Close(bin, cfg.Refiner.MorphKernel)
	return imaging.Median(closed, cfg.Refiner.MedianKernel)
}
