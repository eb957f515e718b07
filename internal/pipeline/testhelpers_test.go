package pipeline

import (
	"image"
	"image/color"
	"testing"
)

var (
	leafGreen = color.NRGBA{40, 160, 60, 255}
	white     = color.NRGBA{255, 255, 255, 255}
)

// scenarioCenters are the disk centers of the 400x400 reference image.
var scenarioCenters = []image.Point{{100, 100}, {300, 100}, {200, 300}}

// createDiskScene returns a background-colored image with filled disks.
func createDiskScene(t *testing.T, width, height, radius int, bg, fg color.NRGBA, centers ...image.Point) *image.NRGBA {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}
	for _, c := range centers {
		for y := c.Y - radius; y <= c.Y+radius; y++ {
			for x := c.X - radius; x <= c.X+radius; x++ {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= radius*radius && image.Pt(x, y).In(img.Bounds()) {
					img.SetNRGBA(x, y, fg)
				}
			}
		}
	}
	return img
}

// createDiskMask returns a binary mask with filled disks.
func createDiskMask(t *testing.T, width, height, radius int, centers ...image.Point) *image.Gray {
	t.Helper()
	scene := createDiskScene(t, width, height, radius, color.NRGBA{A: 255}, white, centers...)
	m := image.NewGray(scene.Bounds())
	for i := range m.Pix {
		m.Pix[i] = scene.Pix[i*4]
	}
	return m
}

func equalGray(a, b *image.Gray) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			if a.GrayAt(x, y) != b.GrayAt(x, y) {
				return false
			}
		}
	}
	return true
}
