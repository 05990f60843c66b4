package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// tileCacheSize is the number of decompressed tiles kept per image.
const tileCacheSize = 200

// Image is a decoded TIFF whose backing mapping must be released.
type Image interface {
	image.Image
	io.Closer
}

type tiledTiff struct {
	header      TiffHeader
	reader      *mmap.ReaderAt
	cache       *lru.Cache // tileIndex -> []byte
	tilesAcross int
}

// LoadTiledTiff maps a tiled TIFF, uncompressed or deflate, and decodes tiles
// lazily through an LRU cache.
func LoadTiledTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseTiffHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := validateTiled(header); err != nil {
		reader.Close()
		return nil, err
	}

	cache, err := lru.New(tileCacheSize)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &tiledTiff{
		header:      header,
		reader:      reader,
		cache:       cache,
		tilesAcross: (header.Width + header.TileWidth - 1) / header.TileWidth,
	}, nil
}

func validateTiled(h TiffHeader) error {
	if h.TileWidth <= 0 || h.TileHeight <= 0 {
		return fmt.Errorf("%w: not tiled", ErrUnsupported)
	}
	if len(h.TileOffsets) == 0 || len(h.TileOffsets) != len(h.TileByteCounts) {
		return fmt.Errorf("%w: invalid tile offset/length", ErrUnsupported)
	}
	if h.Compression != CompressionNone && h.Compression != CompressionDeflate {
		return fmt.Errorf("%w: tiled compression %d", ErrUnsupported, h.Compression)
	}
	return h.checkPixelFormat()
}

func (t *tiledTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) Close() error {
	t.cache.Purge()
	return t.reader.Close()
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	tileIndex := (y/h.TileHeight)*t.tilesAcross + x/h.TileWidth

	var tile []byte
	if val, ok := t.cache.Get(tileIndex); ok {
		tile = val.([]byte)
	} else {
		tile = t.loadTile(tileIndex)
		t.cache.Add(tileIndex, tile)
	}

	localX := x % h.TileWidth
	localY := y % h.TileHeight
	rowStride := h.TileWidth * h.SamplesPerPixel
	pixOffset := localY*rowStride + localX*h.SamplesPerPixel

	if h.Photometric == PhotometricBlackIsZero {
		v := tile[pixOffset]
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return color.RGBA{
		R: tile[pixOffset],
		G: tile[pixOffset+1],
		B: tile[pixOffset+2],
		A: 255,
	}
}

func (t *tiledTiff) loadTile(index int) []byte {
	h := t.header
	offset := h.TileOffsets[index]
	byteCount := h.TileByteCounts[index]

	buf := make([]byte, byteCount)
	if _, err := t.reader.ReadAt(buf, int64(offset)); err != nil {
		panic(fmt.Sprintf("failed to read tile %d: %v", index, err))
	}

	if h.Compression != CompressionDeflate {
		return buf
	}
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		panic(fmt.Sprintf("zlib decompression error in tile %d: %v", index, err))
	}
	defer r.Close()
	tile, err := io.ReadAll(r)
	if err != nil {
		panic(fmt.Sprintf("zlib read error in tile %d: %v", index, err))
	}
	return tile
}
