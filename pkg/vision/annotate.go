package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const boxBorder = 3

var (
	colorUnsafe = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	colorHumans = color.RGBA{R: 235, G: 140, B: 0, A: 255}
	colorClear  = color.RGBA{R: 40, G: 180, B: 60, A: 255}
)

// Annotate draws the per-segment outcome boxes onto the frame and returns
// it re-encoded as JPEG. The frame goes through the same downscale as
// AnalyzeFrame so the boxes line up with the segment coordinates. Failed
// segments are not drawn.
func (a *Analyzer) Annotate(frame []byte, results []SegmentResult) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	src = shrink(src, a.cfg.MaxDimension)

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	for _, r := range results {
		if r.Failed() {
			continue
		}
		col := colorClear
		switch {
		case r.Safety == SafetyUnsafe:
			col = colorUnsafe
		case r.HumanCount > 0:
			col = colorHumans
		}
		box := image.Rect(r.Box.X0, r.Box.Y0, r.Box.X1, r.Box.Y1)
		drawBox(dst, box, col)
		drawLabel(dst, box, strconv.Itoa(r.HumanCount), col)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode annotated frame: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBox(dst *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	w := boxBorder
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

func drawLabel(dst *image.RGBA, r image.Rectangle, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.Min.X+boxBorder+3, r.Min.Y+boxBorder+13),
	}
	d.DrawString(text)
}
