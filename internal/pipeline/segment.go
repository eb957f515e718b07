package pipeline

import (
	"image"
	"math"

	"github.com/muesli/clusters"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/hydrangea-counter/internal/cluster"
	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// Segmentation is the outcome of the two-group color clustering.
type Segmentation struct {
	// Mask is 255 where the pixel belongs to the floral group, 0 elsewhere.
	Mask *image.Gray

	// Labels holds the group (0 or 1) of every pixel in row-major order.
	Labels []int

	// Means is the mean 8-bit Lab lightness of each group. An empty group
	// has mean -Inf.
	Means [2]float64

	// Floral is the label of the brighter group.
	Floral int

	// Colors is the number of distinct Lab colors that were clustered.
	Colors int

	Iterations int
}

// Segment splits a background-suppressed image into two color groups with
// seeded k-means in 8-bit Lab space and keeps the group with the higher mean
// lightness. Suppressed black pixels take part in the clustering and in the
// lightness means.
func Segment(img *image.NRGBA, cfg config.Config) (*Segmentation, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	// Identical colors are clustered once with their pixel count as weight.
	index := make(map[imaging.Lab8]int)
	obs := make([]cluster.Observation, 0)
	pixelObs := make([]int, w*h)

	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3]
			lab := imaging.ToLab8(px[0], px[1], px[2])
			j, ok := index[lab]
			if !ok {
				j = len(obs)
				index[lab] = j
				obs = append(obs, cluster.Observation{
					Coords: clusters.Coordinates{float64(lab.L), float64(lab.A), float64(lab.B)},
				})
			}
			obs[j].Weight++
			pixelObs[y*w+x] = j
		}
	}

	res, err := cluster.KMeans(obs, cluster.Options{
		K:             2,
		MaxIterations: cfg.Cluster.MaxIterations,
		Tolerance:     cfg.Cluster.Tolerance,
		Runs:          cfg.Cluster.Runs,
		Seed:          cfg.Cluster.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "color clustering failed")
	}

	seg := &Segmentation{
		Mask:       imaging.NewMask(w, h),
		Labels:     make([]int, w*h),
		Means:      groupLightness(obs, res.Labels),
		Colors:     len(obs),
		Iterations: res.Iterations,
	}
	if seg.Means[1] > seg.Means[0] {
		seg.Floral = 1
	}

	for i, j := range pixelObs {
		label := res.Labels[j]
		seg.Labels[i] = label
		if label == seg.Floral {
			seg.Mask.Pix[(i/w)*seg.Mask.Stride+i%w] = imaging.MaskOn
		}
	}
	return seg, nil
}

// groupLightness returns the weighted mean Lab L of each of the two groups,
// or -Inf for a group with no members.
func groupLightness(obs []cluster.Observation, labels []int) [2]float64 {
	var means [2]float64
	for g := 0; g < 2; g++ {
		var x, w []float64
		for i, o := range obs {
			if labels[i] == g {
				x = append(x, o.Coords[0])
				w = append(w, o.Weight)
			}
		}
		if len(x) == 0 {
			means[g] = math.Inf(-1)
			continue
		}
		means[g] = stat.Mean(x, w)
	}
	return means
}
