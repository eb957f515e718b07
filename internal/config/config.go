// Package config holds the tunable thresholds of the blossom counting pipeline.
//
// Every numeric constant used by the four pipeline stages lives in Config as a
// named field. Default returns the calibrated values for hydrangea photographs;
// Load overlays a TOML file on top of those defaults so individual thresholds
// can be tuned without code changes.
//
// # File Format
//
// Only the keys present in the file are changed:
//
//	[suppressor.foliage]
//	lower = [25, 30, 30]
//	upper = [90, 255, 255]
//
//	[cluster]
//	seed = 7
//
//	[counter]
//	accumulator_threshold = 20
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ColorRange is an inclusive per-channel bound in 8-bit HSV
// (H 0-179, S 0-255, V 0-255).
type ColorRange struct {
	Lower [3]uint8 `toml:"lower" json:"lower"`
	Upper [3]uint8 `toml:"upper" json:"upper"`
}

// Contains reports whether (h, s, v) lies inside the range on all three channels.
func (r ColorRange) Contains(h, s, v uint8) bool {
	return h >= r.Lower[0] && h <= r.Upper[0] &&
		s >= r.Lower[1] && s <= r.Upper[1] &&
		v >= r.Lower[2] && v <= r.Upper[2]
}

// SuppressorConfig configures background suppression.
type SuppressorConfig struct {
	// Foliage is the HSV range of leaves and stems.
	Foliage ColorRange `toml:"foliage" json:"foliage"`

	// Soil is the HSV range of earth and mulch.
	Soil ColorRange `toml:"soil" json:"soil"`
}

// ClusterConfig configures the two-group k-means segmentation.
type ClusterConfig struct {
	// Seed drives the k-means++ initialization. Equal seeds give equal labels.
	Seed int64 `toml:"seed" json:"seed"`

	// MaxIterations bounds each Lloyd run.
	MaxIterations int `toml:"max_iterations" json:"max_iterations"`

	// Tolerance is the convergence threshold on the squared center shift,
	// relative to the mean per-channel variance of the data.
	Tolerance float64 `toml:"tolerance" json:"tolerance"`

	// Runs is the number of seeded restarts; the lowest inertia wins.
	Runs int `toml:"runs" json:"runs"`
}

// RefinerConfig configures mask cleanup.
type RefinerConfig struct {
	// MorphKernel is the side of the square structuring element used by close.
	MorphKernel int `toml:"morph_kernel" json:"morph_kernel"`

	// MedianKernel is the side of the median filter window.
	MedianKernel int `toml:"median_kernel" json:"median_kernel"`
}

// CounterConfig configures smoothing, the radius band and the Hough detector.
type CounterConfig struct {
	BlurKernel int     `toml:"blur_kernel" json:"blur_kernel"`
	BlurSigma  float64 `toml:"blur_sigma" json:"blur_sigma"`

	// MinRadiusFrac and MaxRadiusFrac scale min(height, width) into the radius band.
	MinRadiusFrac float64 `toml:"min_radius_frac" json:"min_radius_frac"`
	MaxRadiusFrac float64 `toml:"max_radius_frac" json:"max_radius_frac"`

	// DP is the inverse accumulator resolution ratio.
	DP float64 `toml:"dp" json:"dp"`

	// MinDist is the minimum distance between accepted centers, in pixels.
	MinDist float64 `toml:"min_dist" json:"min_dist"`

	// CannyThreshold is the upper Canny threshold; the lower one is half of it.
	CannyThreshold float64 `toml:"canny_threshold" json:"canny_threshold"`

	// AccumulatorThreshold is the vote count a center needs to be considered.
	AccumulatorThreshold int `toml:"accumulator_threshold" json:"accumulator_threshold"`

	// A detected circle is kept only when
	// BandLowFactor*minRadius < r < BandHighFactor*maxRadius.
	BandLowFactor  float64 `toml:"band_low_factor" json:"band_low_factor"`
	BandHighFactor float64 `toml:"band_high_factor" json:"band_high_factor"`
}

// RenderConfig configures the annotated output image.
type RenderConfig struct {
	CircleColor     [3]uint8 `toml:"circle_color" json:"circle_color"`
	CircleThickness int      `toml:"circle_thickness" json:"circle_thickness"`
	Caption         bool     `toml:"caption" json:"caption"`
}

// Config is the complete set of pipeline parameters.
type Config struct {
	Suppressor SuppressorConfig `toml:"suppressor" json:"suppressor"`
	Cluster    ClusterConfig    `toml:"cluster" json:"cluster"`
	Refiner    RefinerConfig    `toml:"refiner" json:"refiner"`
	Counter    CounterConfig    `toml:"counter" json:"counter"`
	Render     RenderConfig     `toml:"render" json:"render"`
}

// Default returns the thresholds calibrated for hydrangea photographs.
func Default() Config {
	return Config{
		Suppressor: SuppressorConfig{
			Foliage: ColorRange{Lower: [3]uint8{25, 30, 30}, Upper: [3]uint8{90, 255, 255}},
			Soil:    ColorRange{Lower: [3]uint8{10, 60, 20}, Upper: [3]uint8{30, 255, 200}},
		},
		Cluster: ClusterConfig{
			Seed:          42,
			MaxIterations: 300,
			Tolerance:     1e-4,
			Runs:          1,
		},
		Refiner: RefinerConfig{
			MorphKernel:  7,
			MedianKernel: 5,
		},
		Counter: CounterConfig{
			BlurKernel:           11,
			BlurSigma:            3,
			MinRadiusFrac:        0.04,
			MaxRadiusFrac:        0.23,
			DP:                   1.1,
			MinDist:              60,
			CannyThreshold:       45,
			AccumulatorThreshold: 17,
			BandLowFactor:        0.8,
			BandHighFactor:       1.1,
		},
		Render: RenderConfig{
			CircleColor:     [3]uint8{255, 0, 0},
			CircleThickness: 3,
			Caption:         true,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks that every parameter is usable by the pipeline.
func (c Config) Validate() error {
	ranges := []struct {
		name string
		r    ColorRange
	}{
		{"suppressor.foliage", c.Suppressor.Foliage},
		{"suppressor.soil", c.Suppressor.Soil},
	}
	for _, cr := range ranges {
		name, r := cr.name, cr.r
		for i := 0; i < 3; i++ {
			if r.Lower[i] > r.Upper[i] {
				return errors.Errorf("%s: lower bound %d exceeds upper bound %d on channel %d",
					name, r.Lower[i], r.Upper[i], i)
			}
		}
		if r.Upper[0] > 179 {
			return errors.Errorf("%s: hue bound %d outside 0-179", name, r.Upper[0])
		}
	}

	if c.Cluster.MaxIterations < 1 {
		return errors.New("cluster.max_iterations must be at least 1")
	}
	if c.Cluster.Runs < 1 {
		return errors.New("cluster.runs must be at least 1")
	}
	if c.Cluster.Tolerance < 0 {
		return errors.New("cluster.tolerance must not be negative")
	}

	kernels := []struct {
		name string
		size int
	}{
		{"refiner.morph_kernel", c.Refiner.MorphKernel},
		{"refiner.median_kernel", c.Refiner.MedianKernel},
		{"counter.blur_kernel", c.Counter.BlurKernel},
	}
	for _, k := range kernels {
		if k.size < 1 || k.size%2 == 0 {
			return errors.Errorf("%s must be a positive odd number, got %d", k.name, k.size)
		}
	}

	cc := c.Counter
	if cc.BlurSigma <= 0 {
		return errors.New("counter.blur_sigma must be positive")
	}
	if cc.MinRadiusFrac < 0 || cc.MaxRadiusFrac <= 0 || cc.MinRadiusFrac > cc.MaxRadiusFrac {
		return errors.Errorf("counter radius fractions invalid: min %.3f, max %.3f", cc.MinRadiusFrac, cc.MaxRadiusFrac)
	}
	if cc.DP < 1 {
		return errors.Errorf("counter.dp must be >= 1, got %.2f", cc.DP)
	}
	if cc.MinDist <= 0 {
		return errors.New("counter.min_dist must be positive")
	}
	if cc.CannyThreshold <= 0 {
		return errors.New("counter.canny_threshold must be positive")
	}
	if cc.AccumulatorThreshold < 1 {
		return errors.New("counter.accumulator_threshold must be at least 1")
	}
	if cc.BandLowFactor < 0 || cc.BandHighFactor <= 0 {
		return errors.New("counter band factors must be positive")
	}

	if c.Render.CircleThickness < 1 {
		return errors.New("render.circle_thickness must be at least 1")
	}
	return nil
}
