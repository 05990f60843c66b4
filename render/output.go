package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/echoflaresat/orrery/texture"
)

var (
	ErrFormat = errors.New("unsupported output format")
	ErrLayout = errors.New("invalid montage layout")
)

// WritePNG saves img as a PNG, favouring speed over size.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save picks the encoder from the file extension (.png, .jpg, .jpeg).
func Save(path string, img image.Image) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return WritePNG(path, img)
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}
}

// Montage tiles cols×rows equally sized images, row by row, into one sheet.
func Montage(cols, rows int, paths []string) (*image.NRGBA, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrLayout, cols, rows)
	}
	if len(paths) != cols*rows {
		return nil, fmt.Errorf("%w: expected %d input files, got %d", ErrLayout, cols*rows, len(paths))
	}

	var canvas *image.NRGBA
	var tileW, tileH int
	for idx, path := range paths {
		slog.Debug("montage tile", "path", path)
		tex, err := texture.Load(path)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", path, err)
		}
		tile := tex.Image()

		if canvas == nil {
			tileW = tile.Bounds().Dx()
			tileH = tile.Bounds().Dy()
			canvas = image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
		} else if tileW != tile.Bounds().Dx() || tileH != tile.Bounds().Dy() {
			tex.Close()
			return nil, fmt.Errorf("%w: tile %q is %dx%d, expected %dx%d", ErrLayout,
				path, tile.Bounds().Dx(), tile.Bounds().Dy(), tileW, tileH)
		}

		x := (idx % cols) * tileW
		y := (idx / cols) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), tile, tile.Bounds().Min, draw.Over)
		tex.Close()
	}
	return canvas, nil
}
