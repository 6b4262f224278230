package receipt

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// bandImage builds a synthetic page: bands of the given color at the listed
// (y0,y1) spans, background everywhere else.
func bandImage(w, h int, bg, band color.NRGBA, spans [][2]int) *image.NRGBA {
	img := imaging.New(w, h, bg)
	for _, s := range spans {
		for y := s[0]; y < s[1]; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, band)
			}
		}
	}
	return img
}

func TestSegmentThreeBands(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	spans := [][2]int{{30, 50}, {80, 100}, {130, 150}}
	// binary map has ink lit; the grayscale source has ink dark
	binary := bandImage(200, 180, black, white, spans)
	gray := bandImage(200, 180, white, black, spans)

	cfg := DefaultSegmentConfig()
	lines := SegmentLines(gray, binary, cfg)
	if len(lines) != 3 {
		t.Fatalf("expected 3 line images got %d", len(lines))
	}
	wantH := 20 + 2*cfg.LineMargin + 2*cfg.Padding
	wantW := 200 + 2*cfg.Padding
	for i, ln := range lines {
		if ln.Bounds().Dx() != wantW || ln.Bounds().Dy() != wantH {
			t.Fatalf("line %d dims %dx%d, want %dx%d", i, ln.Bounds().Dx(), ln.Bounds().Dy(), wantW, wantH)
		}
	}
}

func TestSegmentRunOpenAtBottomCloses(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	spans := [][2]int{{60, 100}} // band touches the bottom edge
	binary := bandImage(120, 100, black, white, spans)
	gray := bandImage(120, 100, white, black, spans)

	lines := SegmentLines(gray, binary, SegmentConfig{})
	if len(lines) != 1 {
		t.Fatalf("expected the unterminated run to close as 1 line, got %d", len(lines))
	}
}

func TestSegmentShortRunsDropped(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	spans := [][2]int{{20, 25}} // 5 rows, below MinLineHeight
	binary := bandImage(120, 100, black, white, spans)
	gray := bandImage(120, 100, white, black, spans)

	lines := SegmentLines(gray, binary, SegmentConfig{})
	if len(lines) != 0 {
		t.Fatalf("expected noise run to be dropped, got %d lines", len(lines))
	}
}
