package imaging

import (
	"testing"
)

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestToHSV8_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSV8
	}{
		{"pure red", 255, 0, 0, HSV8{0, 255, 255}},
		{"pure green", 0, 255, 0, HSV8{60, 255, 255}},
		{"pure blue", 0, 0, 255, HSV8{120, 255, 255}},
		{"white", 255, 255, 255, HSV8{0, 0, 255}},
		{"black", 0, 0, 0, HSV8{0, 0, 0}},
		{"leaf green", 40, 160, 60, HSV8{65, 191, 160}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHSV8(tt.r, tt.g, tt.b)
			if absDiff(got.H, tt.want.H) > 1 || absDiff(got.S, tt.want.S) > 1 || absDiff(got.V, tt.want.V) > 1 {
				t.Errorf("ToHSV8(%d,%d,%d) = %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestToHSV8_HueStaysBelow180(t *testing.T) {
	// magenta-red hues close to 360 degrees must wrap instead of reaching 180
	for b := 0; b < 6; b++ {
		got := ToHSV8(255, 0, uint8(b))
		if got.H >= 180 {
			t.Errorf("ToHSV8(255,0,%d) hue = %d, want < 180", b, got.H)
		}
	}
}

func TestToLab8_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Lab8
	}{
		{"black", 0, 0, 0, Lab8{0, 128, 128}},
		{"white", 255, 255, 255, Lab8{255, 128, 128}},
		{"mid gray", 128, 128, 128, Lab8{137, 128, 128}},
		{"red", 255, 0, 0, Lab8{136, 208, 195}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLab8(tt.r, tt.g, tt.b)
			if absDiff(got.L, tt.want.L) > 2 || absDiff(got.A, tt.want.A) > 2 || absDiff(got.B, tt.want.B) > 2 {
				t.Errorf("ToLab8(%d,%d,%d) = %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestToLab8_LightnessIsMonotonicOnGrays(t *testing.T) {
	prev := ToLab8(0, 0, 0).L
	for v := 1; v < 256; v += 5 {
		cur := ToLab8(uint8(v), uint8(v), uint8(v)).L
		if cur < prev {
			t.Fatalf("lightness decreased from %d to %d at gray %d", prev, cur, v)
		}
		prev = cur
	}
}
