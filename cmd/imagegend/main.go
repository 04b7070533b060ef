// Command imagegend serves POST /generate-image backed by Amazon Bedrock
// Titan or Gemini, storing images in S3 and metadata in SQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/internal/config"
	"github.com/mhpenta/imagestudio/internal/logging"
	"github.com/mhpenta/imagestudio/metadata"
	"github.com/mhpenta/imagestudio/provider/bedrock"
	"github.com/mhpenta/imagestudio/provider/gemini"
	"github.com/mhpenta/imagestudio/ratelimiter"
	"github.com/mhpenta/imagestudio/server"
	"github.com/mhpenta/imagestudio/storage/s3store"
)

func main() {
	cfg, err := config.Load("imagegend", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("imagegend failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer gen.Close()

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.RequestsPerMinute > 0 {
		opts = append(opts, server.WithRateLimiter(ratelimiter.New(cfg.RequestsPerMinute)))
	}

	if cfg.Bucket != "" {
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.PublicURL,
		})
		if err != nil {
			return err
		}
		opts = append(opts, server.WithStorage(store))
	} else {
		logger.Warn("IMAGE_BUCKET not set, images will not be stored")
	}

	records, err := metadata.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer records.Close()
	opts = append(opts, server.WithRecorder(records))

	model := gen.Models()[0]
	logger.Info("starting imagegend",
		"provider", string(model.Provider),
		"model", model.Name,
		"db_driver", cfg.DBDriver,
		"bucket", cfg.Bucket,
		"requests_per_minute", cfg.RequestsPerMinute,
	)

	return server.New(gen, opts...).ListenAndServe(ctx, cfg.Addr)
}

func newGenerator(ctx context.Context, cfg *config.Config) (imagestudio.ImageGenerator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewWithAPIKey(ctx, cfg.GeminiAPIKey)
	default:
		return bedrock.NewFromDefaultConfig(ctx, cfg.BedrockRegion)
	}
}
