package detection

import (
	"image"
	"math"
)

// Gradient holds 3x3 Sobel derivatives of a gray image, row-major.
type Gradient struct {
	Width, Height int
	DX, DY        []int
}

// Sobel computes horizontal and vertical derivatives with the 3x3 Sobel
// operator. Borders use replicated edge pixels.
//
//	     -1 0 1          -1 -2 -1
//	Gx = -2 0 2     Gy =  0  0  0
//	     -1 0 1           1  2  1
//
// Values are unscaled, so a full 0 to 255 step yields a magnitude of 1020.
func Sobel(img *image.Gray) *Gradient {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := &Gradient{Width: w, Height: h, DX: make([]int, w*h), DY: make([]int, w*h)}

	at := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(img.Pix[y*img.Stride+x])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			g.DX[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			g.DY[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return g
}

// Canny marks edge pixels of a precomputed gradient.
//
// The implementation follows the Canny algorithm on the L1 gradient
// magnitude |dx|+|dy|:
//
//  1. Non-maximum suppression: a pixel survives only if its magnitude is a
//     local maximum across the gradient direction (quantized to 0, 45, 90 or
//     135 degrees)
//
//  2. Hysteresis thresholding:
//     - Pixels above high are strong edges (always kept)
//     - Pixels above low are weak edges, kept only if 8-connected to a strong edge
//     - Everything else is discarded
//
// Border pixels are never edges.
func Canny(g *Gradient, low, high float64) []bool {
	w, h := g.Width, g.Height
	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Abs(float64(g.DX[i])) + math.Abs(float64(g.DY[i]))
	}

	// tan(22.5°) and tan(67.5°) split the gradient directions into four sectors.
	const tan22 = 0.41421356
	const tan67 = 2.41421356

	candidate := make([]bool, w*h)
	strong := make([]int, 0)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			dx := math.Abs(float64(g.DX[i]))
			dy := math.Abs(float64(g.DY[i]))

			var n1, n2 float64
			switch {
			case dy <= dx*tan22:
				// horizontal gradient, compare left/right
				n1, n2 = mag[i-1], mag[i+1]
			case dy >= dx*tan67:
				// vertical gradient, compare up/down
				n1, n2 = mag[i-w], mag[i+w]
			case (g.DX[i] < 0) != (g.DY[i] < 0):
				// anti-diagonal
				n1, n2 = mag[i-w+1], mag[i+w-1]
			default:
				n1, n2 = mag[i-w-1], mag[i+w+1]
			}

			if m > n1 && m >= n2 {
				candidate[i] = true
				if m > high {
					strong = append(strong, i)
				}
			}
		}
	}

	edges := make([]bool, w*h)
	stack := strong
	for _, i := range strong {
		edges[i] = true
	}

	// Grow strong edges into connected weak candidates.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if candidate[j] && !edges[j] {
					edges[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	return edges
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
