package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/detection"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// Band is the radius range searched by the circle detector, in pixels.
type Band struct {
	MinRadius int `json:"min_radius"`
	MaxRadius int `json:"max_radius"`
}

// RadiusBand scales min(width, height) by the configured fractions and
// floors the results.
func RadiusBand(width, height int, cfg config.Config) Band {
	m := float64(min(width, height))
	return Band{
		MinRadius: int(math.Floor(cfg.Counter.MinRadiusFrac * m)),
		MaxRadius: int(math.Floor(cfg.Counter.MaxRadiusFrac * m)),
	}
}

// Accepts reports whether a detected radius lies strictly inside the
// acceptance window BandLowFactor*MinRadius < r < BandHighFactor*MaxRadius.
func (b Band) Accepts(r float64, cfg config.Config) bool {
	return r > cfg.Counter.BandLowFactor*float64(b.MinRadius) &&
		r < cfg.Counter.BandHighFactor*float64(b.MaxRadius)
}

// CountResult is the outcome of blossom counting.
type CountResult struct {
	// Circles are the accepted detections, strongest first.
	Circles []detection.Circle

	// Detected is the number of circles found before the band filter.
	Detected int

	Count int
	Band  Band

	// Annotated is a copy of the original with a ring around every accepted
	// circle and, when enabled, a caption stating the count.
	Annotated *image.NRGBA
}

// Count smooths a refined mask, detects circles with the gradient Hough
// transform and renders them over the original image. Finding no circles is
// not an error.
func Count(mask *image.Gray, original image.Image, cfg config.Config) (*CountResult, error) {
	b := mask.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	if original == nil {
		return nil, errors.New("original image is required for rendering")
	}
	if ob := original.Bounds(); ob.Dx() != b.Dx() || ob.Dy() != b.Dy() {
		return nil, errors.Errorf("mask is %dx%d but original is %dx%d", b.Dx(), b.Dy(), ob.Dx(), ob.Dy())
	}

	blurred := imaging.GaussianBlur(mask, cfg.Counter.BlurKernel, cfg.Counter.BlurSigma)
	band := RadiusBand(b.Dx(), b.Dy(), cfg)

	found := detection.HoughCircles(blurred, detection.HoughParams{
		DP:                   cfg.Counter.DP,
		MinDist:              cfg.Counter.MinDist,
		CannyThreshold:       cfg.Counter.CannyThreshold,
		AccumulatorThreshold: cfg.Counter.AccumulatorThreshold,
		MinRadius:            band.MinRadius,
		MaxRadius:            band.MaxRadius,
	})

	res := &CountResult{
		Circles:  acceptCircles(found, band, cfg),
		Detected: len(found),
		Band:     band,
	}
	res.Count = len(res.Circles)
	res.Annotated = Render(original, res.Circles, cfg)
	return res, nil
}

// acceptCircles rounds every detection to whole pixels, half to even, and
// keeps those whose rounded radius passes the band. The reported radius is
// the one that was tested.
func acceptCircles(found []detection.Circle, band Band, cfg config.Config) []detection.Circle {
	kept := make([]detection.Circle, 0, len(found))
	for _, c := range found {
		c.X = math.RoundToEven(c.X)
		c.Y = math.RoundToEven(c.Y)
		c.Radius = math.RoundToEven(c.Radius)
		if band.Accepts(c.Radius, cfg) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Render draws rings for circles on a copy of img. Centers and radii are
// rounded half to even before drawing.
func Render(img image.Image, circles []detection.Circle, cfg config.Config) *image.NRGBA {
	out := imaging.Normalize(img)
	rc := cfg.Render.CircleColor
	ring := color.NRGBA{R: rc[0], G: rc[1], B: rc[2], A: 255}

	for _, c := range circles {
		imaging.DrawCircle(out,
			int(math.RoundToEven(c.X)),
			int(math.RoundToEven(c.Y)),
			int(math.RoundToEven(c.Radius)),
			cfg.Render.CircleThickness, ring)
	}
	if cfg.Render.Caption {
		imaging.DrawCaption(out, Caption(len(circles)), color.White)
	}
	return out
}

// Caption is the text stamped on the annotated image.
func Caption(n int) string {
	return fmt.Sprintf("%d hydrangeas detected", n)
}
