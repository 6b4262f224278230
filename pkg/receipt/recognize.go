package receipt

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns a single text-line image into text. An empty string is a
// valid result for unreadable input; implementations should reserve errors
// for engine failures. The pipeline skips errored lines instead of aborting.
type Recognizer interface {
	RecognizeLine(img image.Image) (string, error)
}

// TesseractRecognizer runs a local Tesseract engine on each line image.
// Receipts mix Romanian and English text, so the default language hint
// covers both.
type TesseractRecognizer struct {
	Languages []string
}

func NewTesseractRecognizer(langs ...string) *TesseractRecognizer {
	if len(langs) == 0 {
		langs = []string{"ron", "eng"}
	}
	return &TesseractRecognizer{Languages: langs}
}

// RecognizeLine binarizes the line with an Otsu threshold and feeds it to
// Tesseract in single-block mode. A fresh client per call keeps the
// recognizer safe for the pipeline's concurrent fan-out.
func (t *TesseractRecognizer) RecognizeLine(img image.Image) (string, error) {
	bw := binarize(img, otsuThreshold(img))

	tmp, err := os.CreateTemp("", "line-*.png")
	if err != nil {
		return "", err
	}
	_ = tmp.Close()
	defer os.Remove(tmp.Name())
	if err := imaging.Save(bw, tmp.Name()); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(t.Languages...)
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	if err := client.SetImage(tmp.Name()); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return text, nil
}
