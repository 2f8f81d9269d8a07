// Worker processes a directory of exported video frames and their detection
// sidecars, and prints the resulting violation summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"roadsafety-service/internal/classify"
	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/frames"
	"roadsafety-service/internal/video"
)

func main() {
	var (
		framesDir = flag.String("frames", "", "directory of exported frame images with .json detection sidecars")
		fps       = flag.Float64("fps", 30, "source frame rate reported by the exporter (0 if unknown)")
		stride    = flag.Int("stride", video.DefaultStride, "analyze every Nth frame")
		workers   = flag.Int("workers", 1, "parallel detection workers")
		mode      = flag.String("mode", "standard", "detector mode: standard, custom_direct_violation")
		out       = flag.String("out", "", "write the summary JSON to this file instead of stdout")
		pretty    = flag.Bool("pretty", false, "human readable log output")
	)
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	if *framesDir == "" {
		log.Fatal().Msg("-frames is required")
	}

	detectorMode, err := detect.ParseMode(*mode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid detector mode")
	}

	src, err := frames.NewDirSource(*framesDir, *fps)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *framesDir).Msg("cannot open frame source")
	}

	meta := src.Meta()
	log.Info().
		Int("frames", meta.FrameCount).
		Float64("fps", meta.FPS).
		Str("resolution", fmt.Sprintf("%dx%d", meta.Width, meta.Height)).
		Int("stride", *stride).
		Msg("processing frames")

	bar := progressbar.Default(int64(meta.FrameCount), "frames")

	detector := detect.NewSidecarDetector(detectorMode)
	agg := video.NewAggregator(detector, detector, classify.New(detectorMode),
		video.WithStride(*stride),
		video.WithWorkers(*workers),
		video.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := agg.Process(ctx, &progressSource{Source: src, bar: bar})
	if err != nil {
		log.Fatal().Err(err).Msg("processing failed")
	}
	_ = bar.Finish()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode summary")
	}
	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("write summary")
		}
		log.Info().Str("path", *out).Msg("summary written")
		return
	}
	os.Stdout.Write(append(data, '\n'))
}

// progressSource advances the progress bar as frames are decoded.
type progressSource struct {
	frames.Source
	bar *progressbar.ProgressBar
}

func (s *progressSource) Next() (frames.Frame, error) {
	frame, err := s.Source.Next()
	if err == nil {
		_ = s.bar.Add(1)
	}
	return frame, err
}
