package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// GaussianKernel returns a normalized 1-D Gaussian of the given odd size and sigma.
func GaussianKernel(size int, sigma float64) []float64 {
	if size < 1 {
		size = 1
	}
	half := size / 2
	k := make([]float64, size)
	sum := 0.0
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur smooths a gray image with a size x size Gaussian of the given
// sigma. The kernel is applied as two separable passes through bild's
// convolution with edge-extended borders.
//
// bild's own blur.Gaussian ties the kernel width to sigma; this keeps the two
// independent so an 11x11 window can be paired with sigma 3.
func GaussianBlur(m *image.Gray, size int, sigma float64) *image.Gray {
	if size <= 1 || sigma <= 0 {
		return cloneGray(m)
	}
	weights := GaussianKernel(size, sigma)

	horizontal := convolution.NewKernel(size, 1)
	vertical := convolution.NewKernel(1, size)
	copy(horizontal.Matrix, weights)
	copy(vertical.Matrix, weights)

	opts := &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}
	pass := convolution.Convolve(m, horizontal, opts)
	pass = convolution.Convolve(pass, vertical, opts)
	return GrayFromRGBA(pass)
}
