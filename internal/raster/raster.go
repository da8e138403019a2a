// Package raster renders lines of plain text into an image, one glyph row per
// line, stacked top to bottom.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultDPI maps one point to one pixel.
const DefaultDPI = 72

// ErrEmptyInput is returned when there are no lines to derive a canvas from.
var ErrEmptyInput = errors.New("raster: no lines to render")

// FontError indicates the font resource could not be loaded.
type FontError struct {
	Path string
	Err  error
}

func (e *FontError) Error() string {
	return fmt.Sprintf("raster: failed to load font %s: %v", e.Path, e.Err)
}

func (e *FontError) Unwrap() error { return e.Err }

// Options configures a Rasterizer.
type Options struct {
	// DPI defaults to DefaultDPI.
	DPI float64
	// Hinting defaults to font.HintingNone.
	Hinting font.Hinting
}

// Rasterizer holds the rendering settings shared by every Rasterize call.
// It has no global state; construct one with New and reuse it. A Rasterizer
// is safe for concurrent use.
type Rasterizer struct {
	dpi     float64
	hinting font.Hinting
}

// New returns a ready to use Rasterizer.
func New(opts Options) *Rasterizer {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Rasterizer{dpi: opts.DPI, hinting: opts.Hinting}
}

// LoadFace reads and parses the font at path and returns a face of the given
// point size. Font collections use their first font. The caller must Close
// the face.
func (r *Rasterizer) LoadFace(path string, pointSize float64) (font.Face, error) {
	if pointSize <= 0 {
		return nil, &FontError{Path: path, Err: fmt.Errorf("invalid point size %v", pointSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontError{Path: path, Err: err}
	}
	f, err := parseFont(data)
	if err != nil {
		return nil, &FontError{Path: path, Err: err}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pointSize,
		DPI:     r.dpi,
		Hinting: r.hinting,
	})
	if err != nil {
		return nil, &FontError{Path: path, Err: err}
	}
	return face, nil
}

func parseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	c, cerr := opentype.ParseCollection(data)
	if cerr != nil || c.NumFonts() == 0 {
		return nil, err
	}
	return c.Font(0)
}

// RenderLine draws line in the solid color c over a transparent background,
// on an image exactly large enough for it. The height covers the face's
// ascent and descent, extended by any glyph that reaches beyond them, so
// lines of the same face may differ in height. Images are never empty.
func (r *Rasterizer) RenderLine(face font.Face, line string, c color.Color) *image.NRGBA {
	m := face.Metrics()
	bounds, advance := font.BoundString(face, line)
	ascent := max(m.Ascent, -bounds.Min.Y).Ceil()
	descent := max(m.Descent, bounds.Max.Y).Ceil()

	width := max(advance.Ceil(), bounds.Max.X.Ceil(), 1)
	height := max(ascent+descent, 1)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(line)
	return img
}

// Rasterize renders each line with the font at fontPath and stacks the
// results at x = 0 with no gap between them. The canvas is as wide as the
// widest line and as tall as all lines together; uncovered pixels are
// transparent.
//
// Empty input fails with ErrEmptyInput before the font is read; font
// problems fail with *FontError.
func (r *Rasterizer) Rasterize(lines []string, fontPath string, pointSize float64, c color.Color) (*image.NRGBA, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	face, err := r.LoadFace(fontPath, pointSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	surfaces := make([]*image.NRGBA, len(lines))
	var width, height int
	for i, line := range lines {
		surfaces[i] = r.RenderLine(face, line, c)
		b := surfaces[i].Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, s := range surfaces {
		b := s.Bounds()
		draw.Draw(canvas, b.Add(image.Pt(0, y)), s, b.Min, draw.Src)
		y += b.Dy()
	}
	return canvas, nil
}
