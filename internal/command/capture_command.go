package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/joeycumines/ptyshot/internal/capture"
	"github.com/joeycumines/ptyshot/internal/config"
	"github.com/joeycumines/ptyshot/internal/ptysession"
	"github.com/joeycumines/ptyshot/internal/raster"
)

// CaptureCommand runs a program on a pseudo-terminal and writes its output
// as an image.
type CaptureCommand struct {
	*BaseCommand
	config *config.Config
	flags  *flag.FlagSet

	getenv func(string) string
	// termFd is inspected for a default terminal size.
	termFd int
	// env is passed through to launched programs.
	env []string
}

// NewCaptureCommand creates a new capture command.
func NewCaptureCommand(cfg *config.Config) *CaptureCommand {
	return &CaptureCommand{
		BaseCommand: NewBaseCommand(
			"capture",
			"Run a program on a pseudo-terminal and save its output as an image",
			"capture [options] <executable> [args...]",
		),
		config: cfg,
		getenv: os.Getenv,
		termFd: int(os.Stdout.Fd()),
	}
}

// SetupFlags configures the flags for the capture command.
func (c *CaptureCommand) SetupFlags(fs *flag.FlagSet) {
	c.config.BindFlags(fs)
	c.flags = fs
}

// Execute runs the capture.
func (c *CaptureCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing executable")
	}

	c.config.ApplyEnv(c.flags, c.getenv)
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fg, err := c.config.Foreground()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(c.config.LogLevel, c.config.LogFile, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cols, rows := c.config.TerminalSize(c.termFd)
	p := capture.New(
		raster.New(raster.Options{DPI: c.config.DPI}),
		capture.WithLogger(logger),
		capture.WithPollInterval(c.config.PollInterval),
		capture.WithEnv(c.env...),
	)
	res, err := p.Run(capture.Request{
		Path:      resolveExecutable(args[0]),
		Args:      args[1:],
		Size:      ptysession.Size{Cols: cols, Rows: rows},
		FontPath:  c.config.FontPath,
		PointSize: c.config.PointSize,
		Color:     fg,
		Output:    c.config.Output,
	})
	if err != nil {
		return err
	}

	if c.config.Print {
		_, _ = fmt.Fprintln(stdout, res.Text.String())
	}
	return nil
}

// resolveExecutable searches PATH for bare command names. Anything containing
// a path separator, or not found, is returned unchanged so the launch reports
// the failure.
func resolveExecutable(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return name
}
