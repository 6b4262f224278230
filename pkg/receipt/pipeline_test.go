package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// scriptedRecognizer replays a fixed transcript, one line per call.
type scriptedRecognizer struct {
	mu    sync.Mutex
	lines []string
	calls int
}

func (s *scriptedRecognizer) RecognizeLine(img image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.lines) {
		return "", nil
	}
	out := s.lines[s.calls]
	s.calls++
	return out, nil
}

// widthRecognizer derives its output from the line image, so results are
// deterministic regardless of scheduling order.
type widthRecognizer struct{}

func (widthRecognizer) RecognizeLine(img image.Image) (string, error) {
	return fmt.Sprintf("WIDTH %d", img.Bounds().Dx()), nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func receiptPhoto(t *testing.T, bands int) []byte {
	t.Helper()
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	h := 30 + bands*(12+30)
	img := imaging.New(200, h, white)
	for b := 0; b < bands; b++ {
		y0 := 30 + b*(12+30)
		for y := y0; y < y0+12; y++ {
			for x := 0; x < 200; x++ {
				img.Set(x, y, black)
			}
		}
	}
	return encodePNG(t, img)
}

func TestExtractEndToEnd(t *testing.T) {
	rec := &scriptedRecognizer{lines: []string{"2 BUC X 3,00", "PAINE", "X", "TOTAL 10.50"}}
	p := &Pipeline{
		Recognizer: rec,
		// a contour minimum no synthetic image reaches keeps the crop a
		// soft pass-through, so segmentation sees the full photo
		Crop: CropConfig{MinContourPoints: 1 << 20},
	}
	res, err := p.Extract(context.Background(), receiptPhoto(t, 4))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if rec.calls != 4 {
		t.Fatalf("expected 4 OCR calls got %d", rec.calls)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item got %+v", res.Items)
	}
	it := res.Items[0]
	if it.Name != "PAINE" || it.Price != 3.00 || it.Quantity != 2 {
		t.Fatalf("unexpected item %+v", it)
	}
	if res.Total == nil || *res.Total != 10.50 {
		t.Fatalf("expected total 10.50 got %v", res.Total)
	}
}

func TestExtractUndecodableInput(t *testing.T) {
	p := &Pipeline{Recognizer: widthRecognizer{}}
	_, err := p.Extract(context.Background(), []byte("definitely not an image"))
	if !errors.Is(err, ErrDecodeImage) {
		t.Fatalf("expected ErrDecodeImage got %v", err)
	}
}

func TestRecognizeAllPreservesOrder(t *testing.T) {
	var lines []image.Image
	for i := 0; i < 8; i++ {
		lines = append(lines, imaging.New(10+i, 5, color.NRGBA{255, 255, 255, 255}))
	}
	p := &Pipeline{Recognizer: widthRecognizer{}, Workers: 4}
	out, err := p.recognizeAll(context.Background(), lines)
	if err != nil {
		t.Fatalf("recognizeAll: %v", err)
	}
	for i, got := range out {
		want := fmt.Sprintf("WIDTH %d", 10+i)
		if got != want {
			t.Fatalf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestRecognizeAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Recognizer: widthRecognizer{}, Workers: 2}
	lines := []image.Image{imaging.New(10, 5, color.NRGBA{255, 255, 255, 255})}
	if _, err := p.recognizeAll(ctx, lines); err == nil {
		t.Fatal("expected context error")
	}
}
