package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// GoRegularFont writes the Go Regular TrueType font to a temporary file and
// returns its path.
func GoRegularFont(t testing.TB) string {
	t.Helper()
	return writeFont(t, "goregular.ttf", goregular.TTF)
}

// GoMonoFont writes the Go Mono TrueType font to a temporary file and
// returns its path.
func GoMonoFont(t testing.TB) string {
	t.Helper()
	return writeFont(t, "gomono.ttf", gomono.TTF)
}

func writeFont(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write font: %v", err)
	}
	return path
}
