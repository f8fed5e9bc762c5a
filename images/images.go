// Package images probes and loads the raster files placed in grid cells.
//
// Every call opens its file, decodes it and closes it before returning, so no
// file handle outlives the cell that asked for it.
package images

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/labelgrid/layout"
)

// DecodeError reports an image file that exists but could not be read.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Loader reads images from the filesystem.
type Loader struct {
	// AutoOrient applies the EXIF orientation tag of JPEG files.
	AutoOrient bool
	// MaxDPI caps the pixel density of embedded images; 0 disables downsampling.
	MaxDPI float64
}

var _ layout.ImageProber = (*Loader)(nil)

// NewLoader returns a loader with EXIF auto-orientation enabled.
func NewLoader() *Loader { return &Loader{AutoOrient: true} }

// Probe returns the pixel size of the image at path. A path that does not
// exist yields an error wrapping layout.ErrMissingImage; everything else is a
// *DecodeError.
func (l *Loader) Probe(path string) (layout.ImageInfo, error) {
	img, format, err := l.decode(path)
	if err != nil {
		return layout.ImageInfo{}, err
	}
	b := img.Bounds()
	return layout.ImageInfo{Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

// Load decodes the image at path with the same failure kinds as Probe.
func (l *Loader) Load(path string) (image.Image, error) {
	img, _, err := l.decode(path)
	return img, err
}

func (l *Loader) decode(path string) (image.Image, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", layout.ErrMissingImage, path)
		}
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, "", &DecodeError{Path: path, Err: errors.New("is a directory")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	img, err := imaging.Decode(f, imaging.AutoOrientation(l.AutoOrient))
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", &DecodeError{Path: path, Err: errors.New("empty image")}
	}
	return img, format, nil
}

// Downsample shrinks img when it would be embedded denser than MaxDPI at the
// given drawn size in points. Smaller images are returned unchanged.
func (l *Loader) Downsample(img image.Image, widthPt, heightPt float64) image.Image {
	if l == nil || l.MaxDPI <= 0 || img == nil || widthPt <= 0 || heightPt <= 0 {
		return img
	}
	maxW := int(math.Ceil(widthPt / 72 * l.MaxDPI))
	maxH := int(math.Ceil(heightPt / 72 * l.MaxDPI))
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
