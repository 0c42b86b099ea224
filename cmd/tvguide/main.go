package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mrtommyb/tesstvgapp/internal/api"
	"github.com/mrtommyb/tesstvgapp/internal/health"
	"github.com/mrtommyb/tesstvgapp/internal/metrics"
	"github.com/mrtommyb/tesstvgapp/internal/observability"
	"github.com/mrtommyb/tesstvgapp/internal/plot"
	"github.com/mrtommyb/tesstvgapp/internal/pointing"
	"github.com/mrtommyb/tesstvgapp/internal/render"
	"github.com/mrtommyb/tesstvgapp/internal/visibility"
	"github.com/mrtommyb/tesstvgapp/web"
)

func main() {
	level := loadLogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	srvCfg := loadServerConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(logger), logger)
	if err != nil {
		logger.Error("tracing init failed", "error", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	var ready health.Readiness

	cycle, err := pointing.New(pointing.Cycle1())
	if err != nil {
		logger.Error("invalid pointing model", "error", err)
		os.Exit(1)
	}
	srvCfg.Campaign = cycle.Name()
	logger.Info("pointing model loaded",
		"campaign", cycle.Name(),
		"sectors", cycle.Config().Sectors,
		"cameras", len(cycle.Config().CameraLatitudes),
		"obliquity_deg", cycle.ObliquityDeg(),
	)

	workers := loadEvalWorkers(logger)
	evaluator := visibility.NewEvaluator(cycle, workers, logger)
	metrics.SetEvaluationWorkers(workers)

	scenes, err := plot.NewRenderer(cycle, loadPlotConfig(logger), logger)
	if err != nil {
		logger.Error("invalid plot configuration", "error", err)
		os.Exit(1)
	}

	report, err := render.NewReport(web.Content)
	if err != nil {
		logger.Error("report template", "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(srvCfg, api.Deps{
		Evaluator: evaluator,
		Report:    report,
		Scene:     scenes,
		Readiness: &ready,
		Web:       web.Content,
	}, logger)
	ready.SetReady(true)

	go func() {
		logger.Info("starting server", "addr", srvCfg.Addr, "trust_proxy", srvCfg.TrustProxy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	ready.SetReady(false)
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("TVG_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadServerConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{Addr: ":8042"}

	if v := os.Getenv("TVG_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("TVG_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid TVG_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	return cfg
}

func loadEvalWorkers(logger *slog.Logger) int {
	workers := runtime.NumCPU()

	if v := os.Getenv("TVG_EVAL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid TVG_EVAL_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = n
		}
	}

	logger.Info("evaluation config", "workers", workers)
	return workers
}

func loadPlotConfig(logger *slog.Logger) plot.Config {
	cfg := plot.DefaultConfig()

	if v := os.Getenv("TVG_PLOT_WIDTH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid TVG_PLOT_WIDTH value, using default", "value", v, "default", cfg.Width)
		} else {
			cfg.Width = f
		}
	}

	if v := os.Getenv("TVG_PLOT_HEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid TVG_PLOT_HEIGHT value, using default", "value", v, "default", cfg.Height)
		} else {
			cfg.Height = f
		}
	}

	logger.Info("plot config", "width_in", cfg.Width, "height_in", cfg.Height)
	return cfg
}
