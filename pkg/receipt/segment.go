package receipt

import (
	"image"

	"github.com/disintegration/imaging"
)

// SegmentConfig carries the text-line segmentation knobs. Zero-value fields
// fall back to defaults.
type SegmentConfig struct {
	ScaleFactor     float64 // upscale applied before binarization
	BinarizeWindow  int     // adaptive threshold window
	BinarizeBias    int     // adaptive threshold bias
	DilateHalfWidth int     // horizontal smear radius merging glyphs
	RowInkThreshold int     // minimum lit pixels for a row to count as text
	MinLineHeight   int     // runs shorter than this are noise
	LineMargin      int     // symmetric expansion of each detected run
	Padding         int     // light border added around each line image
}

func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		ScaleFactor:     2.0,
		BinarizeWindow:  31,
		BinarizeBias:    4,
		DilateHalfWidth: 15,
		RowInkThreshold: 10,
		MinLineHeight:   15,
		LineMargin:      2,
		Padding:         10,
	}
}

func (c SegmentConfig) withDefaults() SegmentConfig {
	d := DefaultSegmentConfig()
	if c.ScaleFactor == 0 {
		c.ScaleFactor = d.ScaleFactor
	}
	if c.BinarizeWindow == 0 {
		c.BinarizeWindow = d.BinarizeWindow
	}
	if c.BinarizeBias == 0 {
		c.BinarizeBias = d.BinarizeBias
	}
	if c.DilateHalfWidth == 0 {
		c.DilateHalfWidth = d.DilateHalfWidth
	}
	if c.RowInkThreshold == 0 {
		c.RowInkThreshold = d.RowInkThreshold
	}
	if c.MinLineHeight == 0 {
		c.MinLineHeight = d.MinLineHeight
	}
	if c.LineMargin == 0 {
		c.LineMargin = d.LineMargin
	}
	if c.Padding == 0 {
		c.Padding = d.Padding
	}
	return c
}

// PrepareForSegmentation converts a cropped receipt into the two maps the
// segmenter needs: an upscaled grayscale image (lines are cut from this one,
// OCR reads better on grayscale than on the binary map) and an inverted
// binary map where ink is lit.
func PrepareForSegmentation(img image.Image, cfg SegmentConfig) (gray, binary image.Image) {
	cfg = cfg.withDefaults()
	g := imaging.Grayscale(img)
	w := int(float64(g.Bounds().Dx()) * cfg.ScaleFactor)
	if w < 1 {
		w = 1
	}
	resized := imaging.Resize(g, w, 0, imaging.Lanczos)
	bin := adaptiveThreshold(resized, cfg.BinarizeWindow, cfg.BinarizeBias, true)
	return resized, bin
}

// SegmentLines splits a binarized receipt into padded per-line images, in
// reading order. The order is positionally meaningful and must be preserved
// by every downstream consumer.
func SegmentLines(gray, binary image.Image, cfg SegmentConfig) []image.Image {
	cfg = cfg.withDefaults()
	w := binary.Bounds().Dx()
	h := binary.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}

	dilated := dilateHorizontal(binary, cfg.DilateHalfWidth)
	projection := make([]int, h)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			if dilated[row+x] {
				projection[y]++
			}
		}
	}

	type span struct{ y0, y1 int }
	var spans []span
	start := -1
	for y := 0; y < h; y++ {
		if projection[y] > cfg.RowInkThreshold {
			if start == -1 {
				start = y
			}
			continue
		}
		if start != -1 {
			if y-start > cfg.MinLineHeight {
				y0 := start - cfg.LineMargin
				if y0 < 0 {
					y0 = 0
				}
				y1 := y + cfg.LineMargin
				if y1 > h {
					y1 = h
				}
				spans = append(spans, span{y0, y1})
			}
			start = -1
		}
	}
	// a run still open at the bottom edge closes as a line
	if start != -1 {
		spans = append(spans, span{start, h})
	}

	gw := gray.Bounds().Dx()
	var out []image.Image
	for _, s := range spans {
		roi := imaging.Crop(gray, image.Rect(0, s.y0, gw, s.y1))
		out = append(out, padBorder(roi, cfg.Padding))
	}
	return out
}
