package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/MimeLyc/transcript-panel/internal/config"
	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/hotspot"
	"github.com/MimeLyc/transcript-panel/internal/httpapi"
	"github.com/MimeLyc/transcript-panel/internal/library"
	"github.com/MimeLyc/transcript-panel/internal/transcript"
	"github.com/MimeLyc/transcript-panel/pkg/log"
)

type cronRunner interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcript panel HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scanner := library.NewScanner(
				cfg.Library.MediaDir,
				library.WithCacheTTL(cfg.Library.CacheTTL()),
				library.WithConcurrency(cfg.Library.Concurrency),
			)

			opts, err := serverOptions(cfg)
			if err != nil {
				return err
			}
			srv := httpapi.NewServer(scanner, opts...)

			scheduler := cron.New()
			if err := scheduleRescan(scheduler, cfg.Library.RescanCron, scanner); err != nil {
				return err
			}

			return runWithComponents(runCtx, cfg, scheduler, srv)
		},
	}
}

func serverOptions(cfg *config.Config) ([]httpapi.Option, error) {
	opts := []httpapi.Option{
		httpapi.WithCORSOrigins(cfg.Server.CORSOrigins),
		httpapi.WithStreamDebounce(cfg.Server.StreamDebounce()),
		httpapi.WithDefaultLanguage(cfg.Engine.DefaultLanguage),
		httpapi.WithControllerOptions(transcript.WithSeekThreshold(cfg.Engine.ReasonableSeekThreshold)),
		httpapi.WithUI(cfg.Server.UIStaticDir, cfg.Server.UIStaticDir != ""),
		httpapi.WithRescanSchedule(cfg.Library.RescanCron),
	}

	if cfg.Hotspots.File != "" {
		spots, err := hotspot.Load(cfg.Hotspots.File)
		if err != nil {
			return nil, err
		}
		overlay := hotspot.NewOverlay(spots, cuepoint.WithReasonableSeekThreshold(cfg.Engine.ReasonableSeekThreshold))
		opts = append(opts, httpapi.WithHotspots(overlay))
		log.Info("Loaded %d hotspots from %s", len(spots), cfg.Hotspots.File)
	}
	return opts, nil
}

// scheduleRescan drops the library cache on the given cron schedule. An
// empty expression disables rescans.
func scheduleRescan(scheduler *cron.Cron, expr string, scanner *library.Scanner) error {
	if expr == "" {
		return nil
	}
	_, err := scheduler.AddFunc(expr, func() {
		log.Info("Rescanning media library %s", scanner.Root())
		scanner.Invalidate()
	})
	if err != nil {
		return fmt.Errorf("schedule library rescan: %w", err)
	}
	return nil
}

func runWithComponents(ctx context.Context, cfg *config.Config, scheduler cronRunner, srv httpServer) error {
	scheduler.Start()
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()
	log.Info("Transcript panel listening on %s", cfg.Server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("Transcript panel stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
