package tiff

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/exp/mmap"
)

type stripedTiff struct {
	header TiffHeader
	reader *mmap.ReaderAt
}

// LoadStripedTiff maps an uncompressed, strip-organised TIFF. Pixels are read
// straight from the mapping on demand, so huge textures cost no heap.
func LoadStripedTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseTiffHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := validateStriped(header); err != nil {
		reader.Close()
		return nil, err
	}
	return &stripedTiff{header: header, reader: reader}, nil
}

func validateStriped(h TiffHeader) error {
	if len(h.StripOffsets) == 0 || len(h.StripOffsets) != len(h.StripByteCounts) {
		return fmt.Errorf("%w: no strips", ErrUnsupported)
	}
	if h.Compression != CompressionNone {
		return fmt.Errorf("%w: striped compression %d", ErrUnsupported, h.Compression)
	}
	if h.RowsPerStrip <= 0 {
		// a single strip holds the whole image
		if len(h.StripOffsets) != 1 {
			return fmt.Errorf("%w: missing RowsPerStrip", ErrUnsupported)
		}
	}
	return h.checkPixelFormat()
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) Close() error {
	return t.reader.Close()
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	rows := h.RowsPerStrip
	if rows <= 0 {
		rows = h.Height
	}
	strip := y / rows
	localY := y % rows
	bpp := h.SamplesPerPixel

	idx := h.StripOffsets[strip] + (localY*h.Width+x)*bpp

	var buf [3]byte
	if _, err := t.reader.ReadAt(buf[:bpp], int64(idx)); err != nil {
		panic(fmt.Sprintf("could not read pixel at (%d,%d): %v", x, y, err))
	}
	if h.Photometric == PhotometricBlackIsZero {
		return color.RGBA{R: buf[0], G: buf[0], B: buf[0], A: 255}
	}
	return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}
}
