// Package video scans a sampled frame sequence and accumulates a violation
// timeline with an estimated fine total.
package video

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"roadsafety-service/internal/classify"
	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/fine"
	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/plate"
)

// DefaultStride samples one frame per second of 30fps footage.
const DefaultStride = 30

// Aggregator drives detection and classification over a frame source and
// builds the video summary.
type Aggregator struct {
	detector   detect.Detector
	extractor  PlateExtractor
	classifier *classify.Classifier
	stride     int
	workers    int
	presampled bool
	log        zerolog.Logger
}

type Option func(*Aggregator)

// WithStride sets the sampling stride: every Nth decoded frame is analyzed.
func WithStride(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.stride = n
		}
	}
}

// WithWorkers enables a bounded worker pool across sampled frames. The
// timeline is reordered by frame index before the summary is built, so the
// result is identical to a sequential run.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithPresampled marks the source as already sampled (e.g. a batch of
// exported detector output). Every source frame is analyzed and the given
// stride is only recorded in the summary.
func WithPresampled(stride int) Option {
	return func(a *Aggregator) {
		a.presampled = true
		if stride > 0 {
			a.stride = stride
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

func NewAggregator(detector detect.Detector, extractor PlateExtractor, classifier *classify.Classifier, opts ...Option) *Aggregator {
	a := &Aggregator{
		detector:   detector,
		extractor:  extractor,
		classifier: classifier,
		stride:     DefaultStride,
		workers:    1,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process scans the source and returns the summary. A mid-stream decode or
// detection failure, or cancellation between frames, does not fail the run:
// the summary accumulated so far is returned with Partial set.
func (a *Aggregator) Process(ctx context.Context, src frames.Source) (*violation.VideoSummary, error) {
	defer src.Close()

	meta := src.Meta()
	summary := &violation.VideoSummary{
		Video: violation.VideoInfo{
			Width:       meta.Width,
			Height:      meta.Height,
			FPS:         meta.FPS,
			TotalFrames: meta.FrameCount,
		},
		Processing: violation.ProcessingInfo{FrameStride: a.stride},
		Timeline:   []violation.TimelineEntry{},
		Plates:     []string{},
	}
	if meta.FPS > 0 {
		summary.Video.Duration = float64(meta.FrameCount) / meta.FPS
	}
	if a.workers > 1 {
		summary.Processing.Workers = a.workers
	}

	var entries []violation.TimelineEntry
	var analyzed int
	var partial bool

	if a.workers > 1 {
		entries, analyzed, partial = a.runPool(ctx, src, meta.FPS)
	} else {
		entries, analyzed, partial = a.runSequential(ctx, src, meta.FPS)
	}

	// Timeline ordering is part of the contract regardless of how the frames
	// were processed.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FrameNumber < entries[j].FrameNumber
	})

	seen := make(map[string]bool)
	for _, e := range entries {
		summary.Timeline = append(summary.Timeline, e)
		summary.TotalViolations += len(e.Violations)
		summary.TotalFine += e.Fine
		for _, p := range e.PlateTexts {
			if !seen[p] {
				seen[p] = true
				summary.Plates = append(summary.Plates, p)
			}
		}
	}
	summary.Processing.FramesAnalyzed = analyzed
	summary.Partial = partial

	a.log.Info().
		Int("frames_analyzed", analyzed).
		Int("violations", summary.TotalViolations).
		Int64("total_fine", summary.TotalFine).
		Bool("partial", partial).
		Msg("video processing complete")

	return summary, nil
}

func (a *Aggregator) sampled(index int) bool {
	return a.presampled || index%a.stride == 0
}

func (a *Aggregator) runSequential(ctx context.Context, src frames.Source, fps float64) ([]violation.TimelineEntry, int, bool) {
	var entries []violation.TimelineEntry
	var analyzed int

	for {
		if ctx.Err() != nil {
			return entries, analyzed, true
		}
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			return entries, analyzed, false
		}
		if err != nil {
			a.log.Warn().Err(err).Msg("frame decode failed, returning partial summary")
			return entries, analyzed, true
		}
		if !a.sampled(frame.Index) {
			continue
		}
		entry, err := a.processFrame(ctx, frame, fps)
		if err != nil {
			a.log.Warn().Err(err).Int("frame", frame.Index).Msg("detection failed, returning partial summary")
			return entries, analyzed, true
		}
		analyzed++
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
}

type frameOutcome struct {
	entry *violation.TimelineEntry
	err   error
}

func (a *Aggregator) runPool(ctx context.Context, src frames.Source, fps float64) ([]violation.TimelineEntry, int, bool) {
	jobs := make(chan frames.Frame)
	outcomes := make(chan frameOutcome)
	var partial atomic.Bool

	go func() {
		defer close(jobs)
		for {
			if ctx.Err() != nil {
				partial.Store(true)
				return
			}
			frame, err := src.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				a.log.Warn().Err(err).Msg("frame decode failed, returning partial summary")
				partial.Store(true)
				return
			}
			if !a.sampled(frame.Index) {
				continue
			}
			select {
			case jobs <- frame:
			case <-ctx.Done():
				partial.Store(true)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frame := range jobs {
				entry, err := a.processFrame(ctx, frame, fps)
				outcomes <- frameOutcome{entry: entry, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var entries []violation.TimelineEntry
	var analyzed int
	for out := range outcomes {
		if out.err != nil {
			a.log.Warn().Err(out.err).Msg("detection failed, returning partial summary")
			partial.Store(true)
			continue
		}
		analyzed++
		if out.entry != nil {
			entries = append(entries, *out.entry)
		}
	}
	return entries, analyzed, partial.Load()
}

// processFrame classifies one sampled frame. A clean frame yields a nil
// entry; only frames with violations enter the timeline.
func (a *Aggregator) processFrame(ctx context.Context, frame frames.Frame, fps float64) (*violation.TimelineEntry, error) {
	dets, err := a.detector.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	violations := a.classifier.Classify(dets)
	if len(violations) == 0 {
		return nil, nil
	}

	timestamp := float64(frame.Index)
	if fps > 0 {
		timestamp = float64(frame.Index) / fps
	}

	// OCR failure degrades to "no plate read"; it never aborts the run.
	candidates, err := a.extractor.ExtractPlates(ctx, frame, dets.Plates)
	if err != nil {
		a.log.Warn().Err(err).Int("frame", frame.Index).Msg("plate extraction failed")
		candidates = nil
	}

	var texts []string
	for _, c := range candidates {
		if n := plate.Normalize(c.Text); n != plate.Unknown {
			texts = append(texts, n)
		}
	}

	entryPlate := plate.Unknown
	if best, ok := plate.Best(candidates); ok {
		if n := plate.Normalize(best.Text); n != plate.Unknown {
			entryPlate = n
		}
	}

	return &violation.TimelineEntry{
		FrameResult: violation.FrameResult{
			FrameNumber: frame.Index,
			Timestamp:   timestamp,
			Violations:  violations,
			PlateTexts:  texts,
		},
		Plate: entryPlate,
		Fine:  fine.EstimateTotal(violations),
	}, nil
}
