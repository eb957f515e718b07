package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawCircle strokes a circle outline of the given thickness onto img.
//
// A pixel is painted when its center lies within thickness/2 of the ideal
// circle. Parts of the ring outside the image are clipped.
func DrawCircle(img draw.Image, cx, cy, radius, thickness int, c color.Color) {
	if radius < 0 || thickness < 1 {
		return
	}
	half := float64(thickness) / 2
	outer := radius + thickness/2 + 1
	bounds := img.Bounds()

	for y := cy - outer; y <= cy+outer; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := cx - outer; x <= cx+outer; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x - cx)
			dy := float64(y - cy)
			if math.Abs(math.Sqrt(dx*dx+dy*dy)-float64(radius)) <= half {
				img.Set(x, y, c)
			}
		}
	}
}

// captionPadding is the space around the caption text, in pixels.
const captionPadding = 4

// DrawCaption writes text on a dark banner across the top of img.
//
// The banner spans the full width and is tall enough for one line of the
// 7x13 basic font. Text wider than the image is clipped.
func DrawCaption(img draw.Image, text string, fg color.Color) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()

	bounds := img.Bounds()
	banner := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+lineHeight+2*captionPadding)
	banner = banner.Intersect(bounds)
	draw.Draw(img, banner, image.NewUniform(color.NRGBA{0, 0, 0, 200}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(bounds.Min.X+captionPadding, bounds.Min.Y+captionPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

// MeasureCaption returns the pixel width of text in the caption font.
func MeasureCaption(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}
