// Package frames abstracts decoded frame access over still images and
// directories of exported video frames.
package frames

import (
	"errors"
	"image"
)

// ErrSourceUnavailable marks a source that cannot be opened at all, as
// opposed to one that fails partway through.
var ErrSourceUnavailable = errors.New("source unavailable")

// Meta carries the source metadata reported by the decoder. FPS may be zero
// when the source does not report one; consumers fall back to frame indexes
// for timestamps.
type Meta struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// Frame is one decoded frame. Image may be nil for sources that only carry
// precomputed detector output; consumers that need pixels must check.
type Frame struct {
	Index int
	Image image.Image
	Path  string
}

// Source yields decoded frames in index order. Next returns io.EOF after the
// last frame; any other error is a mid-stream decode failure.
type Source interface {
	Meta() Meta
	Next() (Frame, error)
	Close() error
}
