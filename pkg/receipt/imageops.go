package receipt

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// lumaPlane flattens an image into a row-major grayscale byte plane.
func lumaPlane(img image.Image) ([]uint8, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			out[i] = uint8((r + g + bb) / 3 >> 8)
			i++
		}
	}
	return out, w, h
}

func planeToImage(p []uint8, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := p[y*w+x]
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// binarize performs a simple global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// otsuThreshold picks a global threshold maximizing between-class variance.
func otsuThreshold(img image.Image) uint8 {
	p, w, h := lumaPlane(img)
	var hist [256]int
	for _, v := range p {
		hist[v]++
	}
	total := w * h
	if total == 0 {
		return 128
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}
	var sumB, wB float64
	best, bestVar := 128, -1.0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		v := wB * wF * (mB - mF) * (mB - mF)
		if v > bestVar {
			bestVar = v
			best = t
		}
	}
	return uint8(best)
}

// medianBlur replaces each pixel with the median of its ksize×ksize window.
// ksize must be odd; even values are bumped.
func medianBlur(img image.Image, ksize int) *image.NRGBA {
	if ksize < 3 {
		ksize = 3
	}
	if ksize%2 == 0 {
		ksize++
	}
	p, w, h := lumaPlane(img)
	half := ksize / 2
	out := make([]uint8, w*h)
	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for i := range hist {
				hist[i] = 0
			}
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			n := 0
			for yy := y0; yy <= y1; yy++ {
				row := yy * w
				for xx := x0; xx <= x1; xx++ {
					hist[p[row+xx]]++
					n++
				}
			}
			mid := n / 2
			acc := 0
			for v := 0; v < 256; v++ {
				acc += hist[v]
				if acc > mid {
					out[y*w+x] = uint8(v)
					break
				}
			}
		}
	}
	return planeToImage(out, w, h)
}

// addWeighted blends two equally sized grayscale images: wa·a + wb·b,
// clamped to [0,255]. Used for unsharp masking.
func addWeighted(a, b image.Image, wa, wb float64) *image.NRGBA {
	pa, w, h := lumaPlane(a)
	pb, _, _ := lumaPlane(b)
	out := make([]uint8, w*h)
	for i := range pa {
		v := wa*float64(pa[i]) + wb*float64(pb[i])
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return planeToImage(out, w, h)
}

// adaptiveThreshold performs a mean adaptive threshold using an integral
// image. When invert is true the output has ink lit (white on black), which
// is what the line segmenter's projection expects.
func adaptiveThreshold(img image.Image, window int, bias int, invert bool) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	p, w, h := lumaPlane(img)
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(p[y*w+x])
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	fg := color.NRGBA{0, 0, 0, 255}
	bg := color.NRGBA{255, 255, 255, 255}
	if invert {
		fg, bg = bg, fg
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			A := ints[y0*w+x0]
			B := ints[y0*w+x1]
			C := ints[y1*w+x0]
			D := ints[y1*w+x1]
			sum := D - B - C + A
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			th := mean - bias
			if th < 0 {
				th = 0
			}
			if int(p[y*w+x]) < th {
				out.Set(x, y, fg)
			} else {
				out.Set(x, y, bg)
			}
		}
	}
	return out
}

// medianIntensity returns the median pixel value of a grayscale image.
func medianIntensity(img image.Image) int {
	p, w, h := lumaPlane(img)
	var hist [256]int
	for _, v := range p {
		hist[v]++
	}
	mid := (w * h) / 2
	acc := 0
	for v := 0; v < 256; v++ {
		acc += hist[v]
		if acc > mid {
			return v
		}
	}
	return 255
}

// edgeMask runs a Sobel gradient over the image and keeps pixels whose
// magnitude reaches upper, or reaches lower while touching a strong
// neighbor. A single-pass approximation of hysteresis thresholding.
func edgeMask(img image.Image, lower, upper int) ([]bool, int, int) {
	p, w, h := lumaPlane(img)
	mag := make([]int, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := int(p[(y-1)*w+x-1])
			tc := int(p[(y-1)*w+x])
			tr := int(p[(y-1)*w+x+1])
			ml := int(p[y*w+x-1])
			mr := int(p[y*w+x+1])
			bl := int(p[(y+1)*w+x-1])
			bc := int(p[(y+1)*w+x])
			br := int(p[(y+1)*w+x+1])
			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			mag[y*w+x] = gx + gy
		}
	}
	mask := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y*w+x]
			if m >= upper {
				mask[y*w+x] = true
				continue
			}
			if m < lower {
				continue
			}
			for dy := -1; dy <= 1 && !mask[y*w+x]; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if mag[(y+dy)*w+x+dx] >= upper {
						mask[y*w+x] = true
						break
					}
				}
			}
		}
	}
	return mask, w, h
}

// contourBounds walks 8-connected components of the edge mask and returns
// the bounding box over every component larger than minPoints. ok is false
// when no component qualifies.
func contourBounds(mask []bool, w, h, minPoints int) (image.Rectangle, bool) {
	visited := make([]bool, len(mask))
	xmin, ymin := w, h
	xmax, ymax := -1, -1
	found := false
	var stack []int
	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		stack = stack[:0]
		stack = append(stack, start)
		visited[start] = true
		var pts []int
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pts = append(pts, idx)
			x, y := idx%w, idx/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x2, y2 := x+dx, y+dy
					if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
						continue
					}
					n := y2*w + x2
					if mask[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		if len(pts) <= minPoints {
			continue
		}
		found = true
		for _, idx := range pts {
			x, y := idx%w, idx/w
			if x < xmin {
				xmin = x
			}
			if x > xmax {
				xmax = x
			}
			if y < ymin {
				ymin = y
			}
			if y > ymax {
				ymax = y
			}
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(xmin, ymin, xmax+1, ymax+1), true
}

// dilateHorizontal smears ink sideways: a pixel becomes ink when any ink
// exists within halfWidth columns on its row. Merges glyphs into line blobs.
func dilateHorizontal(img image.Image, halfWidth int) []bool {
	p, w, h := lumaPlane(img)
	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := y * w
		run := -1
		for x := 0; x < w; x++ {
			if p[row+x] >= 128 { // lit = ink in the inverted binary map
				run = x
			}
			if run >= 0 && x-run <= halfWidth {
				out[row+x] = true
			}
		}
		run = -1
		for x := w - 1; x >= 0; x-- {
			if p[row+x] >= 128 {
				run = x
			}
			if run >= 0 && run-x <= halfWidth {
				out[row+x] = true
			}
		}
	}
	return out
}

// padBorder surrounds the image with a uniform light border. OCR engines
// degrade on content touching the image edge.
func padBorder(img image.Image, pad int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	canvas := imaging.New(w+2*pad, h+2*pad, color.NRGBA{255, 255, 255, 255})
	return imaging.Paste(canvas, img, image.Pt(pad, pad))
}
