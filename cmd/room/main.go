package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/haxfootball-room/internal/app"
	"github.com/riskibarqy/haxfootball-room/internal/config"
	"github.com/riskibarqy/haxfootball-room/internal/observability"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	room, err := app.NewRoom(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the session loop and the http server live and die together
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if err := room.Session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := room.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return room.Server.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := p.Wait(); err != nil {
		logger.Error("room stopped with error", "error", err)
		exitCode = 1
	}

	room.Close()
	if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
		logger.Error("stop pprof", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	tracingCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := shutdownTracing(tracingCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}
	cancel()

	logger.Info("room stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
