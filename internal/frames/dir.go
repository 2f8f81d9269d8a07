package frames

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DirSource reads a directory of frame stills exported by the decoding
// pipeline, in lexical filename order. Export tools zero-pad frame numbers,
// so lexical order is frame order.
type DirSource struct {
	meta  Meta
	files []string
	pos   int
}

// NewDirSource lists the image files under dir and decodes the first one for
// resolution metadata. The fps is whatever the exporter reported; pass 0 when
// unknown.
func NewDirSource(dir string, fps float64) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no frame images in %s", ErrSourceUnavailable, dir)
	}
	sort.Strings(files)

	first, err := LoadImage(files[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	b := first.Bounds()

	return &DirSource{
		meta: Meta{
			Width:      b.Dx(),
			Height:     b.Dy(),
			FPS:        fps,
			FrameCount: len(files),
		},
		files: files,
	}, nil
}

func (s *DirSource) Meta() Meta { return s.meta }

func (s *DirSource) Next() (Frame, error) {
	if s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}
	path := s.files[s.pos]
	idx := s.pos
	s.pos++

	img, err := LoadImage(path)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", idx, err)
	}
	return Frame{Index: idx, Image: img, Path: path}, nil
}

func (s *DirSource) Close() error { return nil }
