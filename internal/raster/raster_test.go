package raster

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/ptyshot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.NRGBA{A: 0xff}

func TestRasterize_EmptyInput(t *testing.T) {
	r := New(Options{})
	for _, lines := range [][]string{nil, {}} {
		img, err := r.Rasterize(lines, "/does/not/matter.ttf", 12, black)
		assert.Nil(t, img)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestRasterize_FontErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.ttf")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a font"), 0o644))

	r := New(Options{})
	for _, tc := range []struct {
		name string
		path string
		size float64
	}{
		{"missing", filepath.Join(dir, "missing.ttf"), 12},
		{"corrupt", corrupt, 12},
		{"zero size", testutil.GoRegularFont(t), 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img, err := r.Rasterize([]string{"x"}, tc.path, tc.size, black)
			assert.Nil(t, img)
			var fontErr *FontError
			require.True(t, errors.As(err, &fontErr), "expected FontError, got %v", err)
			assert.Equal(t, tc.path, fontErr.Path)
		})
	}

	t.Run("missing wraps not exist", func(t *testing.T) {
		_, err := r.Rasterize([]string{"x"}, filepath.Join(dir, "missing.ttf"), 12, black)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRasterize_CanvasSize(t *testing.T) {
	fontPath := testutil.GoMonoFont(t)
	r := New(Options{})
	face, err := r.LoadFace(fontPath, 24)
	require.NoError(t, err)
	defer face.Close()

	lines := []string{"short", "a much longer line of text"}
	first := r.RenderLine(face, lines[0], black)
	second := r.RenderLine(face, lines[1], black)
	require.Less(t, first.Bounds().Dx(), second.Bounds().Dx())

	img, err := r.Rasterize(lines, fontPath, 24, black)
	require.NoError(t, err)
	assert.Equal(t, second.Bounds().Dx(), img.Bounds().Dx())
	assert.Equal(t, first.Bounds().Dy()+second.Bounds().Dy(), img.Bounds().Dy())
}

func TestRasterize_StacksLines(t *testing.T) {
	fontPath := testutil.GoRegularFont(t)
	r := New(Options{})
	face, err := r.LoadFace(fontPath, 30)
	require.NoError(t, err)
	defer face.Close()

	lines := []string{"Hi", "", "World!"}
	img, err := r.Rasterize(lines, fontPath, 30, black)
	require.NoError(t, err)

	y := 0
	for _, line := range lines {
		s := r.RenderLine(face, line, black)
		b := s.Bounds()
		for py := 0; py < b.Dy(); py++ {
			for px := 0; px < img.Bounds().Dx(); px++ {
				want := color.NRGBA{}
				if px < b.Dx() {
					want = s.NRGBAAt(px, py)
				}
				if got := img.NRGBAAt(px, y+py); got != want {
					t.Fatalf("line %q: pixel (%d,%d) = %v, want %v", line, px, y+py, got, want)
				}
			}
		}
		y += b.Dy()
	}
	assert.Equal(t, img.Bounds().Dy(), y)
}

func TestRenderLine(t *testing.T) {
	r := New(Options{})
	face, err := r.LoadFace(testutil.GoRegularFont(t), 20)
	require.NoError(t, err)
	defer face.Close()

	red := color.NRGBA{R: 0xff, A: 0xff}
	img := r.RenderLine(face, "M", red)
	assert.Positive(t, img.Bounds().Dx())
	assert.GreaterOrEqual(t, img.Bounds().Dy(), (face.Metrics().Ascent + face.Metrics().Descent).Floor())

	var opaque, transparent int
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			c := img.NRGBAAt(x, y)
			switch c.A {
			case 0:
				transparent++
			case 0xff:
				assert.Equal(t, red, c)
				opaque++
			default:
				assert.Zero(t, c.G, "antialiased edges keep the foreground hue")
				assert.Zero(t, c.B, "antialiased edges keep the foreground hue")
			}
		}
	}
	assert.Positive(t, opaque, "glyph should cover some pixels")
	assert.Positive(t, transparent, "background should be transparent")

	empty := r.RenderLine(face, "", red)
	assert.Equal(t, 1, empty.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dy(), empty.Bounds().Dy())
}

func TestRasterizer_Reuse(t *testing.T) {
	fontPath := testutil.GoMonoFont(t)
	r := New(Options{DPI: 96})
	a, err := r.Rasterize([]string{"same", "input"}, fontPath, 12, black)
	require.NoError(t, err)
	b, err := r.Rasterize([]string{"same", "input"}, fontPath, 12, black)
	require.NoError(t, err)
	assert.Equal(t, a.Bounds(), b.Bounds())
	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, image.Pt(0, 0), a.Bounds().Min)
}

func TestNew_Defaults(t *testing.T) {
	assert.Equal(t, float64(DefaultDPI), New(Options{}).dpi)
	assert.Equal(t, float64(144), New(Options{DPI: 144}).dpi)
}
