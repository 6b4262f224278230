package receipt

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires the extraction stages together: crop, segment, per-line
// OCR, parse. Zero-value configs fall back to defaults; a nil Recognizer is
// the only invalid state.
type Pipeline struct {
	Recognizer Recognizer
	Crop       CropConfig
	Segment    SegmentConfig
	// Workers bounds the concurrent OCR calls. Values below 2 run the
	// lines sequentially.
	Workers int
}

// minLineLength is the shortest recognized line kept; anything below is OCR
// noise, dropped silently.
const minLineLength = 3

// Extract runs the full pipeline on an encoded photograph. The only fatal
// failure is an undecodable buffer (ErrDecodeImage); everything else
// degrades to fewer or zero items, which is a valid result.
func (p *Pipeline) Extract(ctx context.Context, data []byte) (Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	return p.extract(ctx, img)
}

// ExtractFile is a convenience wrapper over Extract for on-disk photos.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	return p.extract(ctx, img)
}

func (p *Pipeline) extract(ctx context.Context, img image.Image) (Result, error) {
	cropped := CropReceipt(img, p.Crop)
	gray, binary := PrepareForSegmentation(cropped, p.Segment)
	lines := SegmentLines(gray, binary, p.Segment)

	texts, err := p.recognizeAll(ctx, lines)
	if err != nil {
		return Result{}, err
	}

	// Reading order is positionally meaningful: recognizeAll reassembled
	// results by line index, so filtering here keeps the order intact.
	recognized := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.ToUpper(strings.TrimSpace(t))
		if len(t) < minLineLength {
			continue
		}
		recognized = append(recognized, t)
	}

	items, total := ParseLines(recognized)
	return Result{Items: items, Total: total}, nil
}

// recognizeAll dispatches per-line OCR across a bounded worker pool and
// returns the texts indexed by original line position. Recognizer errors
// skip the line; only context cancellation aborts the batch.
func (p *Pipeline) recognizeAll(ctx context.Context, lines []image.Image) ([]string, error) {
	out := make([]string, len(lines))
	if p.Workers < 2 {
		for i, ln := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			text, err := p.Recognizer.RecognizeLine(ln)
			if err != nil {
				log.Printf("OCR line %d failed: %v", i, err)
				continue
			}
			out[i] = text
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, ln := range lines {
		i, ln := i, ln
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := p.Recognizer.RecognizeLine(ln)
			if err != nil {
				log.Printf("OCR line %d failed: %v", i, err)
				return nil
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
