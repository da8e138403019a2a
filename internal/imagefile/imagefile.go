// Package imagefile writes rendered images to disk in a lossless format
// chosen by file extension.
package imagefile

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a lossless image file format.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the format from the extension of path. Unknown or missing
// extensions get PNG.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	default:
		return PNG
	}
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format: %v", f)
	}
}

// Write encodes img into the file at path, replacing any existing file. The
// image is written to a temporary file in the same directory first, so a
// failed write leaves no partial file behind.
func Write(path string, img image.Image) error {
	f := FormatFor(path)
	return atomicWrite(path, 0o644, func(w io.Writer) error {
		if err := Encode(w, img, f); err != nil {
			return fmt.Errorf("failed to encode %s: %w", f, err)
		}
		return nil
	})
}
