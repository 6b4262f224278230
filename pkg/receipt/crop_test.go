package receipt

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestCropBlankImagePassesThrough(t *testing.T) {
	in := imaging.New(100, 80, color.NRGBA{255, 255, 255, 255})
	out := CropReceipt(in, CropConfig{})
	if out.Bounds() != in.Bounds() {
		t.Fatalf("blank image must pass through unchanged, got %v", out.Bounds())
	}
	for _, p := range [][2]int{{0, 0}, {50, 40}, {99, 79}} {
		r, g, b, _ := out.At(p[0], p[1]).RGBA()
		if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
			t.Fatalf("pixel %v changed on pass-through", p)
		}
	}
}

func TestCropNeverGrows(t *testing.T) {
	// dark paper-like rectangle on a light background
	in := imaging.New(200, 300, color.NRGBA{250, 250, 250, 255})
	for y := 30; y < 270; y++ {
		for x := 20; x < 180; x++ {
			in.Set(x, y, color.NRGBA{40, 40, 40, 255})
		}
	}
	out := CropReceipt(in, CropConfig{})
	if out.Bounds().Dx() > 200 || out.Bounds().Dy() > 300 {
		t.Fatalf("crop grew the image: %v", out.Bounds())
	}
}

func TestCropDegenerateBoxPassesThrough(t *testing.T) {
	// Margins wider than the detected region force a degenerate box.
	in := imaging.New(120, 120, color.NRGBA{250, 250, 250, 255})
	for y := 40; y < 80; y++ {
		for x := 40; x < 80; x++ {
			in.Set(x, y, color.NRGBA{30, 30, 30, 255})
		}
	}
	out := CropReceipt(in, CropConfig{MarginX: 200, MarginY: 200, MinContourPoints: 10})
	if out.Bounds() != in.Bounds() {
		t.Fatalf("degenerate box must return the input, got %v", out.Bounds())
	}
}
