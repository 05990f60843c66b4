package texture

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/texture/tiff"
	"github.com/echoflaresat/orrery/vectors"
	exttiff "github.com/echoflaresat/tiff"

	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
)

// Texture is an equirectangular map wrapped around a sphere.
type Texture struct {
	Width  int
	Height int
	img    image.Image
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) Texture {
	b := img.Bounds()
	return Texture{Width: b.Dx(), Height: b.Dy(), img: img}
}

// Load decodes path with the first decoder that accepts it.
func Load(path string) (Texture, error) {
	img, err := loadImage(path)
	if err != nil {
		return Texture{}, err
	}
	return FromImage(img), nil
}

func loadImage(path string) (image.Image, error) {
	img, err := tiff.LoadStripedTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) {
		if !errors.Is(err, tiff.ErrUnsupported) {
			slog.Warn("failed to load striped TIFF", "path", path, "error", err)
		}

		img, err = tiff.LoadTiledTiff(path)
		if err == nil {
			return img, nil
		}
		slog.Debug("tiled TIFF loader declined", "path", path, "error", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// compressed or planar TIFFs the mapped readers do not cover
	if timg, terr := exttiff.Decode(f); terr == nil {
		return timg, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(f)
	return decoded, err
}

// Image returns the decoded image, nil for the zero Texture.
func (t Texture) Image() image.Image { return t.img }

// Close releases a memory-mapped backing image, if any.
func (t Texture) Close() error {
	if c, ok := t.img.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SampleUV returns the texel at (u, v) in [0,1]², v=0 being the top row.
// u wraps around, v clamps. No interpolation.
func (t Texture) SampleUV(u, v float64) colors.Color4 {
	if t.img == nil || t.Width == 0 || t.Height == 0 {
		return colors.White()
	}
	u = u - math.Floor(u)
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))

	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	b := t.img.Bounds()
	return colors.FromStandardColor(t.img.At(b.Min.X+x, b.Min.Y+y))
}

// SampleDir maps a direction from the sphere's centre (Y up) to a texel,
// using the same seam and orientation as a standard UV sphere.
func (t Texture) SampleDir(dir vectors.Vec3) colors.Color4 {
	n := dir.Normalize()
	theta := math.Acos(clamp(n.Y, -1, 1))
	phi := math.Atan2(n.Z, -n.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return t.SampleUV(phi/(2*math.Pi), theta/math.Pi)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Library loads each named texture once from Root.
type Library struct {
	Root string

	mu       sync.Mutex
	textures map[string]*Texture // nil entry: tried and failed
}

func NewLibrary(root string) *Library {
	return &Library{Root: root, textures: make(map[string]*Texture)}
}

// Get returns the texture called name, or nil when it cannot be loaded; the
// caller then falls back to a flat colour. Failures are logged once.
func (l *Library) Get(name string) *Texture {
	if l == nil || name == "" || l.Root == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.textures[name]; ok {
		return t
	}
	path := filepath.Join(l.Root, name)
	tex, err := Load(path)
	if err != nil {
		slog.Warn("texture unavailable, using flat colour", "path", path, "error", err)
		l.textures[name] = nil
		return nil
	}
	l.textures[name] = &tex
	return &tex
}

// Close releases every loaded texture.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for name, t := range l.textures {
		if t != nil {
			if err := t.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(l.textures, name)
	}
	return errors.Join(errs...)
}
