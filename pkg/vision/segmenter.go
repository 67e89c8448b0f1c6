package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// Segments splits img into overlapping tiles in row-major scan order,
// starting at the top-left corner and stepping by the configured stride.
// Tiles are clamped at the right and bottom edges; a clamped tile whose
// width or height falls below the minimum size is dropped rather than
// analyzed as a degenerate sliver. An image smaller than the minimum on
// either axis yields no tiles at all, which callers must treat as "nothing
// to analyze", not as an error.
//
// The scan is pure: the same image and config always produce the same tiles.
func Segments(img image.Image, cfg Config) []Segment {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var segments []Segment
	count := 0
	for y := 0; y < height-cfg.Stride/2; y += cfg.Stride {
		for x := 0; x < width-cfg.Stride/2; x += cfg.Stride {
			x1 := min(x+cfg.WindowSize, width)
			y1 := min(y+cfg.WindowSize, height)
			if x1-x < cfg.MinTileSize || y1-y < cfg.MinTileSize {
				continue
			}

			count++
			rect := image.Rect(x, y, x1, y1).Add(bounds.Min)
			segments = append(segments, Segment{
				Box:   Box{X0: x, Y0: y, X1: x1, Y1: y1},
				Image: crop(img, rect),
				Index: count,
			})
		}
	}

	return segments
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// crop extracts the rectangle as a view when the decoder supports it,
// copying pixels only for exotic image types.
func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// shrink scales img down so neither dimension exceeds maxDim, preserving
// aspect ratio. Images already within bounds pass through untouched.
func shrink(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dw := max(int(float64(w)*scale), 1)
	dh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
