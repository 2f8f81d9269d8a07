package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roadsafety-service/internal/classify"
	"roadsafety-service/internal/config"
	"roadsafety-service/internal/db"
	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/fine"
	httpx "roadsafety-service/internal/http"
	"roadsafety-service/internal/repository"
	"roadsafety-service/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	mode, err := detect.ParseMode(cfg.Detector.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid detector mode")
	}

	gdb, err := db.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	repo := repository.NewViolationRepository(gdb)
	policy := fine.NewPolicy(cfg.Fines.FirstOffense, cfg.Fines.RepeatOffense)
	classifier := classify.New(mode)
	violationService := service.NewViolationService(repo, policy, classifier, cfg.Detector.FrameStride, cfg.Detector.Workers, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))

	handler := httpx.NewHandler(violationService, cfg, log)
	handler.Register(r, httpx.JWTAuth(cfg.Auth.JWTSecret))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("detector_mode", mode.String()).
		Int("frame_stride", cfg.Detector.FrameStride).
		Msg("starting road safety violation service")

	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
