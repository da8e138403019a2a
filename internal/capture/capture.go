// Package capture runs a program on a pseudo-terminal and turns what it
// printed into an image: capture, decode, strip escape sequences, split into
// lines, rasterize, write.
package capture

import (
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/ptyshot/internal/escape"
	"github.com/joeycumines/ptyshot/internal/imagefile"
	"github.com/joeycumines/ptyshot/internal/ptysession"
	"github.com/joeycumines/ptyshot/internal/raster"
	"golang.org/x/text/encoding/unicode"
)

// Request describes one capture.
type Request struct {
	// Path is the executable to run, and Args its arguments.
	Path string
	Args []string
	Size ptysession.Size

	FontPath  string
	PointSize float64
	Color     color.Color

	// Output is the image file to write. Run requires it; Capture ignores it.
	Output string
}

// Result is the outcome of a capture.
type Result struct {
	// ID identifies the run in log records.
	ID uuid.UUID
	// Raw is the captured output with leading and trailing line separators
	// removed.
	Raw []byte
	// Text is the plain text, one entry per line.
	Text     escape.TextBlock
	ExitCode int
	Image    *image.NRGBA
}

// Pipeline wires the capture stages together. The zero value is not usable;
// construct one with New.
type Pipeline struct {
	rasterizer   *raster.Rasterizer
	logger       *slog.Logger
	pollInterval time.Duration
	env          []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPollInterval bounds each wait on the terminal between exit checks.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.pollInterval = d }
}

// WithEnv appends variables to the environment of launched programs.
func WithEnv(env ...string) Option {
	return func(p *Pipeline) { p.env = append(p.env, env...) }
}

// New returns a Pipeline that renders with r.
func New(r *raster.Rasterizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		rasterizer: r,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capture runs the program and renders its output, without writing a file.
func (p *Pipeline) Capture(req Request) (*Result, error) {
	res := &Result{ID: uuid.New()}
	logger := p.logger.With("run", res.ID.String())

	s, err := ptysession.Start(req.Path, req.Args, ptysession.Options{
		Size:         req.Size,
		Env:          p.env,
		PollInterval: p.pollInterval,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	raw, err := s.Collect()
	if err != nil {
		return nil, err
	}
	res.ExitCode = s.ExitCode()
	res.Raw = ptysession.TrimSeparators(raw)

	text, truncated := filter(decode(res.Raw))
	if truncated {
		logger.Debug("output ends inside an escape sequence")
	}
	res.Text = escape.Lines(text)
	cols, rows := res.Text.Dimensions()
	logger.Debug("text dimensions", "columns", cols, "rows", rows)

	res.Image, err = p.rasterizer.Rasterize(res.Text, req.FontPath, req.PointSize, req.Color)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run captures and writes the image to req.Output. Nothing is written when
// any stage fails.
func (p *Pipeline) Run(req Request) (*Result, error) {
	res, err := p.Capture(req)
	if err != nil {
		return nil, err
	}
	if err := imagefile.Write(req.Output, res.Image); err != nil {
		return nil, err
	}
	b := res.Image.Bounds()
	p.logger.Info("wrote image",
		"run", res.ID.String(),
		"path", req.Output,
		"width", b.Dx(),
		"height", b.Dy(),
		"exitCode", res.ExitCode,
	)
	return res, nil
}

// decode interprets raw as UTF-8, replacing invalid sequences with U+FFFD.
func decode(raw []byte) string {
	b, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func filter(text string) (plain string, truncated bool) {
	var f escape.Filter
	_, _ = f.WriteString(text)
	return f.String(), f.Inside()
}
