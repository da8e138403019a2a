package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joeycumines/ptyshot/internal/config"
)

// newLogger builds the run's logger from the resolved level and file. Logs go
// to stderr unless path is set, in which case they are appended to that file
// and the returned close function must be called when done.
func newLogger(level, path string, stderr io.Writer) (*slog.Logger, func() error, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, nil, err
	}
	w := stderr
	closeFn := func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		w = f
		closeFn = f.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}
