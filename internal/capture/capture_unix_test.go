//go:build unix

package capture

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/ptyshot/internal/escape"
	"github.com/joeycumines/ptyshot/internal/ptysession"
	"github.com/joeycumines/ptyshot/internal/raster"
	"github.com/joeycumines/ptyshot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helperRequest(t *testing.T, output string, name string, args ...string) Request {
	t.Helper()
	path, argv := testutil.HelperCommand(name, args...)
	return Request{
		Path:      path,
		Args:      argv,
		Size:      ptysession.Size{Cols: 80, Rows: 24},
		FontPath:  testutil.GoMonoFont(t),
		PointSize: 16,
		Color:     color.NRGBA{A: 0xff},
		Output:    output,
	}
}

func newPipeline() *Pipeline {
	return New(raster.New(raster.Options{}), WithEnv(testutil.HelperEnv))
}

func TestPipeline_Run_ColorizedOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shot.png")
	req := helperRequest(t, out, "ansi")

	res, err := newPipeline().Run(req)
	require.NoError(t, err)

	assert.Contains(t, string(res.Raw), "\x1b[1;31m", "raw output keeps escapes")
	assert.Equal(t, escape.TextBlock{"Hello Red and green"}, res.Text)
	for _, line := range res.Text {
		assert.NotContains(t, line, "\x1b")
	}
	assert.Equal(t, 0, res.ExitCode)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.ID))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, res.Image.Bounds(), img.Bounds())

	// The canvas matches what the rasterizer produces for the filtered text.
	want, err := raster.New(raster.Options{}).Rasterize([]string{"Hello Red and green"}, req.FontPath, req.PointSize, req.Color)
	require.NoError(t, err)
	assert.Equal(t, want.Bounds(), res.Image.Bounds())
	assert.Equal(t, want.Pix, res.Image.Pix)
}

func TestPipeline_Capture_MultipleLines(t *testing.T) {
	res, err := newPipeline().Capture(helperRequest(t, "", "lines", "3"))
	require.NoError(t, err)
	assert.Equal(t, escape.TextBlock{"line 0", "line 1", "line 2"}, res.Text)
	assert.False(t, strings.HasSuffix(string(res.Raw), "\n"))
	assert.False(t, strings.HasSuffix(string(res.Raw), "\r"))
}

func TestPipeline_Capture_NonZeroExit(t *testing.T) {
	res, err := newPipeline().Capture(helperRequest(t, "", "exit", "4"))
	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
	assert.Equal(t, escape.TextBlock{"exiting"}, res.Text)
}

func TestPipeline_Run_Failures(t *testing.T) {
	t.Run("empty output", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "shot.png")
		_, err := newPipeline().Run(helperRequest(t, out, "echo"))
		assert.ErrorIs(t, err, raster.ErrEmptyInput)
		assert.NoFileExists(t, out)
	})

	t.Run("launch error", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "shot.png")
		req := helperRequest(t, out, "echo", "x")
		req.Path = "/non/existent/command"
		_, err := newPipeline().Run(req)
		var launchErr *ptysession.LaunchError
		assert.True(t, errors.As(err, &launchErr), "got %v", err)
		assert.NoFileExists(t, out)
	})

	t.Run("font error", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "shot.png")
		req := helperRequest(t, out, "echo", "x")
		req.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
		_, err := newPipeline().Run(req)
		var fontErr *raster.FontError
		assert.True(t, errors.As(err, &fontErr), "got %v", err)
		assert.NoFileExists(t, out)
	})
}
