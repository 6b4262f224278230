package receipt

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropConfig carries the numeric knobs of the receipt cropper. The zero
// value of any field falls back to its default, so callers only override
// what they need.
type CropConfig struct {
	MedianKernel     int     // median blur window (speckle removal)
	GaussianSigma    float64 // wide blur subtracted during unsharp masking
	SharpenWeight    float64 // weight of the median-blurred image
	BlurWeight       float64 // weight of the Gaussian-blurred image (negative)
	AdaptiveWindow   int     // local threshold window
	AdaptiveBias     int     // constant subtracted from the local mean
	EdgeLowCoef      float64 // lower edge bound = clamp(0, coef·median)
	EdgeHighCoef     float64 // upper edge bound = clamp(255, coef·median)
	MinContourPoints int     // components at or below this size are noise
	MarginX          int     // horizontal inset of the detected box
	MarginY          int     // vertical inset of the detected box
}

// DefaultCropConfig returns the tuned defaults for phone photos of thermal
// receipts.
func DefaultCropConfig() CropConfig {
	return CropConfig{
		MedianKernel:     15,
		GaussianSigma:    75,
		SharpenWeight:    1.4,
		BlurWeight:       -0.9,
		AdaptiveWindow:   11,
		AdaptiveBias:     2,
		EdgeLowCoef:      0.67,
		EdgeHighCoef:     1.33,
		MinContourPoints: 150,
		MarginX:          10,
		MarginY:          50,
	}
}

func (c CropConfig) withDefaults() CropConfig {
	d := DefaultCropConfig()
	if c.MedianKernel == 0 {
		c.MedianKernel = d.MedianKernel
	}
	if c.GaussianSigma == 0 {
		c.GaussianSigma = d.GaussianSigma
	}
	if c.SharpenWeight == 0 {
		c.SharpenWeight = d.SharpenWeight
	}
	if c.BlurWeight == 0 {
		c.BlurWeight = d.BlurWeight
	}
	if c.AdaptiveWindow == 0 {
		c.AdaptiveWindow = d.AdaptiveWindow
	}
	if c.AdaptiveBias == 0 {
		c.AdaptiveBias = d.AdaptiveBias
	}
	if c.EdgeLowCoef == 0 {
		c.EdgeLowCoef = d.EdgeLowCoef
	}
	if c.EdgeHighCoef == 0 {
		c.EdgeHighCoef = d.EdgeHighCoef
	}
	if c.MinContourPoints == 0 {
		c.MinContourPoints = d.MinContourPoints
	}
	if c.MarginX == 0 {
		c.MarginX = d.MarginX
	}
	if c.MarginY == 0 {
		c.MarginY = d.MarginY
	}
	return c
}

// CropReceipt locates the paper region of a receipt photograph and returns
// it cropped. Soft-fails: when no usable boundary is found, or the detected
// box collapses after insetting, the input is returned unchanged.
func CropReceipt(img image.Image, cfg CropConfig) image.Image {
	cfg = cfg.withDefaults()
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return img
	}

	gray := imaging.Grayscale(img)
	mblur := medianBlur(gray, cfg.MedianKernel)
	gblur := imaging.Blur(mblur, cfg.GaussianSigma)
	sharpen := addWeighted(mblur, gblur, cfg.SharpenWeight, cfg.BlurWeight)
	thresh := adaptiveThreshold(sharpen, cfg.AdaptiveWindow, cfg.AdaptiveBias, false)

	median := medianIntensity(thresh)
	lower := int(cfg.EdgeLowCoef * float64(median))
	if lower < 0 {
		lower = 0
	}
	upper := int(cfg.EdgeHighCoef * float64(median))
	if upper > 255 {
		upper = 255
	}

	mask, mw, mh := edgeMask(thresh, lower, upper)
	box, ok := contourBounds(mask, mw, mh, cfg.MinContourPoints)
	if !ok {
		return img
	}

	xmin := box.Min.X + cfg.MarginX
	ymin := box.Min.Y + cfg.MarginY
	xmax := box.Max.X - cfg.MarginX
	ymax := box.Max.Y - cfg.MarginY
	if xmin < 0 {
		xmin = 0
	}
	if ymin < 0 {
		ymin = 0
	}
	if xmax > w {
		xmax = w
	}
	if ymax > h {
		ymax = h
	}
	if xmin >= xmax || ymin >= ymax {
		return img
	}
	return imaging.Crop(img, image.Rect(xmin, ymin, xmax, ymax))
}
