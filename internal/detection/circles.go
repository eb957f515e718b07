package detection

import (
	"image"
	"math"
	"sort"
)

// Circle is a detected circle in pixel coordinates.
type Circle struct {
	// X and Y locate the center. They sit on accumulator cell centers, so
	// they are fractional when DP != 1.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Radius is the estimated radius in pixels.
	Radius float64 `json:"radius"`

	// Votes is the accumulator count at the center.
	Votes int `json:"votes"`
}

// HoughParams configures HoughCircles.
type HoughParams struct {
	// DP is the inverse ratio of accumulator resolution to image resolution.
	// DP = 1 votes at full resolution, DP = 2 at half width and height.
	DP float64

	// MinDist is the minimum distance between detected centers. Weaker
	// centers closer than this to an accepted one are dropped.
	MinDist float64

	// CannyThreshold is the upper Canny threshold. The lower one is half of it.
	CannyThreshold float64

	// AccumulatorThreshold is the vote count a center must exceed, and the
	// number of supporting edge pixels its radius must exceed.
	AccumulatorThreshold int

	// MinRadius and MaxRadius bound the searched radii. MaxRadius <= 0 means
	// the larger image dimension.
	MinRadius int
	MaxRadius int
}

// HoughCircles finds circles in a gray image with the gradient Hough transform.
//
// # Algorithm (Hough Gradient)
//
//  1. Edge Detection: Sobel derivatives and Canny edges
//  2. Center Voting: every edge pixel walks along its gradient line, in both
//     directions, for distances MinRadius..MaxRadius, and increments each
//     accumulator cell it crosses. Circle edges all point at the center, so
//     the center collects one vote per boundary pixel.
//  3. Center Selection: accumulator cells above AccumulatorThreshold that are
//     local maxima against their 4 neighbors, sorted by votes (highest first)
//  4. Distance Filter: a center closer than MinDist to an already accepted
//     center is skipped
//  5. Radius Estimation: distances from the center to all edge pixels inside
//     the radius band are sorted and grouped into bins of width DP. The bin
//     with the most pixels per unit radius wins, and the center is kept only
//     if that bin holds more than AccumulatorThreshold pixels
//
// # Performance
//
// Voting is O(edges × (MaxRadius - MinRadius)); radius estimation is
// O(centers × edges × log(edges)). Flat images produce no edges and return
// immediately.
//
// # Limitations
//
//   - Concentric circles collapse to one center
//   - Circles whose centers are outside the image are not found
//   - Accuracy of the center is bounded by the accumulator cell size (DP)
func HoughCircles(img *image.Gray, p HoughParams) []Circle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil
	}

	dp := math.Max(p.DP, 1)
	idp := 1 / dp
	minR := p.MinRadius
	if minR < 0 {
		minR = 0
	}
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = max(w, h)
	} else if maxR < minR {
		maxR = minR + 2
	}
	low := math.Max(p.CannyThreshold/2, 1)

	grad := Sobel(img)
	edges := Canny(grad, low, p.CannyThreshold)

	acols := int(math.Ceil(float64(w) * idp))
	arows := int(math.Ceil(float64(h) * idp))
	stride := acols + 2
	acc := make([]int, (arows+2)*stride)

	points := make([]image.Point, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !edges[i] {
				continue
			}
			vx := float64(grad.DX[i])
			vy := float64(grad.DY[i])
			mag := math.Sqrt(vx*vx + vy*vy)
			if mag < 1 {
				continue
			}
			points = append(points, image.Pt(x, y))

			sx := vx * idp / mag
			sy := vy * idp / mag
			x0 := float64(x) * idp
			y0 := float64(y) * idp

			for dir := 0; dir < 2; dir++ {
				x1 := x0 + float64(minR)*sx
				y1 := y0 + float64(minR)*sy
				for r := minR; r <= maxR; r++ {
					ax := int(math.Floor(x1))
					ay := int(math.Floor(y1))
					if ax < 0 || ax >= acols || ay < 0 || ay >= arows {
						break
					}
					acc[(ay+1)*stride+ax+1]++
					x1 += sx
					y1 += sy
				}
				sx, sy = -sx, -sy
			}
		}
	}

	if len(points) == 0 {
		return nil
	}

	centers := make([]int, 0)
	for y := 1; y <= arows; y++ {
		for x := 1; x <= acols; x++ {
			base := y*stride + x
			v := acc[base]
			if v > p.AccumulatorThreshold &&
				v > acc[base-1] && v >= acc[base+1] &&
				v > acc[base-stride] && v >= acc[base+stride] {
				centers = append(centers, base)
			}
		}
	}
	if len(centers) == 0 {
		return nil
	}

	sort.SliceStable(centers, func(i, j int) bool {
		return acc[centers[i]] > acc[centers[j]]
	})

	minDist := math.Max(p.MinDist, dp)
	minDist2 := minDist * minDist
	minR2 := float64(minR * minR)
	maxR2 := float64(maxR * maxR)

	circles := make([]Circle, 0)
	dists := make([]float64, 0, len(points))

	for _, base := range centers {
		ay := base/stride - 1
		ax := base%stride - 1
		cx := (float64(ax) + 0.5) * dp
		cy := (float64(ay) + 0.5) * dp

		if tooClose(circles, cx, cy, minDist2) {
			continue
		}

		dists = dists[:0]
		for _, pt := range points {
			dx := float64(pt.X) - cx
			dy := float64(pt.Y) - cy
			r2 := dx*dx + dy*dy
			if r2 >= minR2 && r2 <= maxR2 {
				dists = append(dists, math.Sqrt(r2))
			}
		}
		if len(dists) == 0 {
			continue
		}

		radius, support := bestRadius(dists, dp)
		if support > p.AccumulatorThreshold {
			circles = append(circles, Circle{
				X:      cx,
				Y:      cy,
				Radius: radius,
				Votes:  acc[base],
			})
		}
	}

	return circles
}

// tooClose reports whether (cx, cy) is within sqrt(minDist2) of any accepted center.
func tooClose(circles []Circle, cx, cy, minDist2 float64) bool {
	for _, c := range circles {
		dx := c.X - cx
		dy := c.Y - cy
		if dx*dx+dy*dy < minDist2 {
			return true
		}
	}
	return false
}

// bestRadius groups sorted distances into bins no wider than binWidth and
// returns the median distance of the bin with the highest count/radius ratio,
// together with that bin's count. Dividing by the radius keeps larger circles,
// which naturally have more boundary pixels, from always winning.
//
// dists is sorted in place.
func bestRadius(dists []float64, binWidth float64) (float64, int) {
	sort.Float64s(dists)

	var (
		best      float64
		bestCount int
		start     int
	)
	for j := 1; j <= len(dists); j++ {
		if j < len(dists) && dists[j]-dists[start] <= binWidth {
			continue
		}
		count := j - start
		r := dists[(start+j-1)/2]
		if (best < 1e-6 && count >= bestCount) || float64(count)*best >= float64(bestCount)*r {
			best = r
			bestCount = count
		}
		start = j
	}
	return best, bestCount
}
