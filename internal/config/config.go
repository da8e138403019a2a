// Package config holds the settings for a capture run. Values come from
// command line flags, falling back to PTYSHOT_* environment variables and
// then to built-in defaults. There is no configuration file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// Defaults for a capture run.
const (
	DefaultCols         = 150
	DefaultRows         = 130
	DefaultFontPath     = "./fonts/iosevka-regular.ttf"
	DefaultPointSize    = 40
	DefaultDPI          = 72
	DefaultColor        = "#000000"
	DefaultOutput       = "output.png"
	DefaultPollInterval = 10 * time.Millisecond
	DefaultLogLevel     = "info"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvFont     = "PTYSHOT_FONT"
	EnvColor    = "PTYSHOT_COLOR"
	EnvLogLevel = "PTYSHOT_LOG_LEVEL"
	EnvLogFile  = "PTYSHOT_LOG_FILE"
)

// Config represents the settings of one capture run.
type Config struct {
	// Cols and Rows size the pseudo-terminal. Zero means "use the invoking
	// terminal's size if there is one, else the defaults".
	Cols uint16
	Rows uint16

	FontPath  string
	PointSize float64
	DPI       float64
	// Color is the foreground color as #rrggbb or #rrggbbaa.
	Color  string
	Output string

	PollInterval time.Duration

	LogLevel string
	LogFile  string

	// Print also writes the filtered text to stdout.
	Print bool
}

// NewConfig creates a configuration holding the defaults.
func NewConfig() *Config {
	return &Config{
		FontPath:     DefaultFontPath,
		PointSize:    DefaultPointSize,
		DPI:          DefaultDPI,
		Color:        DefaultColor,
		Output:       DefaultOutput,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// BindFlags registers the configuration's flags on fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.Func("cols", "terminal columns (default: invoking terminal, else 150)", uintFlag(&c.Cols))
	fs.Func("rows", "terminal rows (default: invoking terminal, else 130)", uintFlag(&c.Rows))
	fs.StringVar(&c.FontPath, "font", c.FontPath, "path to a TrueType/OpenType font ($"+EnvFont+")")
	fs.Float64Var(&c.PointSize, "size", c.PointSize, "font size in points")
	fs.Float64Var(&c.DPI, "dpi", c.DPI, "rendering resolution")
	fs.StringVar(&c.Color, "color", c.Color, "foreground color, #rrggbb or #rrggbbaa ($"+EnvColor+")")
	fs.StringVar(&c.Output, "o", c.Output, "output image file (.png, .bmp, .tif)")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "maximum wait between checks for process exit")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error ($"+EnvLogLevel+")")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "append logs to this file instead of stderr ($"+EnvLogFile+")")
	fs.BoolVar(&c.Print, "print", c.Print, "also print the captured plain text to stdout")
}

func uintFlag(dst *uint16) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", s, err)
		}
		*dst = uint16(v)
		return nil
	}
}

// ApplyEnv fills in values for flags that were not set explicitly on fs.
// A nil fs treats every flag as unset.
func (c *Config) ApplyEnv(fs *flag.FlagSet, getenv func(string) string) {
	set := make(map[string]bool)
	if fs != nil {
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	}
	for name, apply := range map[string]struct {
		env string
		dst *string
	}{
		"font":      {EnvFont, &c.FontPath},
		"color":     {EnvColor, &c.Color},
		"log-level": {EnvLogLevel, &c.LogLevel},
		"log-file":  {EnvLogFile, &c.LogFile},
	} {
		if set[name] {
			continue
		}
		if v := getenv(apply.env); v != "" {
			*apply.dst = v
		}
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.FontPath == "" {
		errs = append(errs, errors.New("font path is required"))
	}
	if c.PointSize <= 0 {
		errs = append(errs, fmt.Errorf("font size must be positive, got %v", c.PointSize))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %v", c.DPI))
	}
	if _, err := ParseColor(c.Color); err != nil {
		errs = append(errs, err)
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %v", c.PollInterval))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Foreground returns the parsed foreground color.
func (c *Config) Foreground() (color.NRGBA, error) {
	return ParseColor(c.Color)
}

// TerminalSize resolves the pseudo-terminal size. Explicit Cols and Rows win;
// a zero dimension is taken from the terminal on fd when fd is one, and
// otherwise from the defaults.
func (c *Config) TerminalSize(fd int) (cols, rows uint16) {
	cols, rows = c.Cols, c.Rows
	if cols != 0 && rows != 0 {
		return cols, rows
	}
	w, h := DefaultCols, DefaultRows
	if term.IsTerminal(fd) {
		if tw, th, err := term.GetSize(fd); err == nil && tw > 0 && th > 0 {
			w, h = tw, th
		}
	}
	if cols == 0 {
		cols = uint16(w)
	}
	if rows == 0 {
		rows = uint16(h)
	}
	return cols, rows
}

// ParseColor parses #rrggbb or #rrggbbaa, with or without the leading '#'.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
