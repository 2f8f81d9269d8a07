package frames

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// LoadImage decodes an image file, handling WebP explicitly when the
// registered decoders cannot.
func LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ImageSource treats a single still image as a one-frame video.
type ImageSource struct {
	path string
	img  image.Image
	done bool
}

// NewImageSource opens and decodes the image eagerly so that an unreadable
// file surfaces as ErrSourceUnavailable before any processing starts.
func NewImageSource(path string) (*ImageSource, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return &ImageSource{path: path, img: img}, nil
}

func (s *ImageSource) Meta() Meta {
	b := s.img.Bounds()
	return Meta{Width: b.Dx(), Height: b.Dy(), FrameCount: 1}
}

func (s *ImageSource) Next() (Frame, error) {
	if s.done {
		return Frame{}, io.EOF
	}
	s.done = true
	return Frame{Index: 0, Image: s.img, Path: s.path}, nil
}

func (s *ImageSource) Close() error { return nil }
