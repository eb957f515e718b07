package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Mask values. A binary mask holds only these two levels.
const (
	MaskOff uint8 = 0
	MaskOn  uint8 = 255
)

// NewMask allocates an all-off mask with the given size.
func NewMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// GrayFromRGBA copies the red channel of an RGBA image into a new gray image.
//
// bild filters return *image.RGBA even for gray input; on such images all three
// channels are equal, so the red channel is the intensity.
func GrayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range dstRow {
			dstRow[x] = srcRow[x*4]
		}
	}
	return dst
}

// IsBinary reports whether every pixel is MaskOff or MaskOn.
func IsBinary(m *image.Gray) bool {
	b := m.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range m.Pix[y*m.Stride : y*m.Stride+b.Dx()] {
			if v != MaskOff && v != MaskOn {
				return false
			}
		}
	}
	return true
}

// CountOn returns the number of pixels brighter than MaskOff.
func CountOn(m *image.Gray) int {
	n := 0
	b := m.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range m.Pix[y*m.Stride : y*m.Stride+b.Dx()] {
			if v != MaskOff {
				n++
			}
		}
	}
	return n
}

// Histogram returns the 256-bin intensity histogram of a gray image.
func Histogram(m *image.Gray) [256]int {
	var hist [256]int
	b := m.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range m.Pix[y*m.Stride : y*m.Stride+b.Dx()] {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold picks the global threshold t that maximizes the between-class
// variance of the histogram. Foreground is every pixel with value > t.
//
// The first maximizing t wins, so a two-level mask {lo, hi} yields t = lo.
// ok is false when the image has a single intensity (or no pixels), where no
// threshold separates two classes.
func OtsuThreshold(hist [256]int) (t uint8, ok bool) {
	total := 0
	sumAll := 0.0
	levels := 0
	for i, n := range hist {
		if n > 0 {
			levels++
		}
		total += n
		sumAll += float64(i * n)
	}
	if levels < 2 {
		return 0, false
	}

	var (
		weightBg  int
		sumBg     float64
		bestVar   = -1.0
		bestLevel int
	)
	for i := 0; i < 255; i++ {
		weightBg += hist[i]
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(i * hist[i])

		meanBg := sumBg / float64(weightBg)
		meanFg := (sumAll - sumBg) / float64(weightFg)
		diff := meanBg - meanFg
		between := float64(weightBg) * float64(weightFg) * diff * diff
		if between > bestVar {
			bestVar = between
			bestLevel = i
		}
	}
	return uint8(bestLevel), true
}

// Binarize maps pixels above t to MaskOn and everything else to MaskOff.
func Binarize(m *image.Gray, t uint8) *image.Gray {
	if t == 255 {
		return NewMask(m.Bounds().Dx(), m.Bounds().Dy())
	}
	// segment.Threshold keeps pixels >= level
	return segment.Threshold(m, t+1)
}

// Close performs a morphological close (dilation then erosion) with a square
// structuring element of side size.
func Close(m *image.Gray, size int) *image.Gray {
	radius := float64(size / 2)
	if radius < 1 {
		return cloneGray(m)
	}
	dilated := effect.Dilate(m, radius)
	return GrayFromRGBA(effect.Erode(dilated, radius))
}

// Median replaces every pixel with the median of its size x size neighborhood.
func Median(m *image.Gray, size int) *image.Gray {
	radius := float64(size / 2)
	if radius < 1 {
		return cloneGray(m)
	}
	return GrayFromRGBA(effect.Median(m, radius))
}

func cloneGray(m *image.Gray) *image.Gray {
	b := m.Bounds()
	dst := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], m.Pix[y*m.Stride:y*m.Stride+b.Dx()])
	}
	return dst
}
