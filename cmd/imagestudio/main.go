// Command imagestudio is an interactive terminal client for an image
// generation endpoint.
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
	"github.com/mhpenta/imagestudio/kvstore"
	"github.com/mhpenta/imagestudio/provider/endpoint"
	"github.com/mhpenta/imagestudio/sink"
	"github.com/mhpenta/imagestudio/storage/s3store"
)

func main() {
	cfg, err := config.Load("imagestudio", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("imagestudio failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	saved, err := imagestudio.OpenSavedStore(ctx, kv)
	if err != nil {
		return err
	}

	shareSinks, err := shareChain(ctx, cfg)
	if err != nil {
		return err
	}

	gen := endpoint.New(cfg.Endpoint, endpoint.WithRequestsPerMinute(cfg.RequestsPerMinute))

	ctrl := imagestudio.NewController(gen,
		imagestudio.WithLogger(logger),
		imagestudio.WithSavedStore(saved),
		imagestudio.WithNotifier(terminalNotifier{out: os.Stdout}),
		imagestudio.WithDownloadSink(sink.NewDir(cfg.DownloadDir)),
		imagestudio.WithShareSinks(shareSinks...),
	)
	defer ctrl.Close()

	return newSession(ctrl, os.Stdin, os.Stdout).run(ctx)
}

func openKV(ctx context.Context, cfg *config.Config) (kvstore.Store, func(), error) {
	if cfg.KV == config.KVRedis {
		r, err := kvstore.OpenRedis(ctx, cfg.RedisURL, "imagestudio:")
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	}
	return kvstore.NewFile(cfg.DataDir), func() {}, nil
}

// shareChain uploads to the configured bucket first, then falls back to the
// clipboard.
func shareChain(ctx context.Context, cfg *config.Config) ([]imagestudio.Sink, error) {
	var sinks []imagestudio.Sink
	if cfg.Bucket != "" {
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewObjectStore(store, ""))
	}
	return append(sinks, sink.NewClipboard()), nil
}
