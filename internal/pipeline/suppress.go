package pipeline

import (
	"image"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// Suppress blacks out foliage and soil.
//
// Each pixel is converted to 8-bit HSV. Pixels inside the foliage range or
// the soil range become (0,0,0); every other pixel is copied unchanged. The
// input is not modified.
func Suppress(img image.Image, cfg config.Config) *image.NRGBA {
	out := imaging.Normalize(img)
	foliage, soil := cfg.Suppressor.Foliage, cfg.Suppressor.Soil

	for i := 0; i < len(out.Pix); i += 4 {
		px := out.Pix[i : i+3 : i+3]
		hsv := imaging.ToHSV8(px[0], px[1], px[2])
		if foliage.Contains(hsv.H, hsv.S, hsv.V) || soil.Contains(hsv.H, hsv.S, hsv.V) {
			px[0], px[1], px[2] = 0, 0, 0
		}
	}
	return out
}
