package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/CalibrantLtd/Slido/cmd/slido/cli"
	"github.com/CalibrantLtd/Slido/internal/app"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
	dashboardhttp "github.com/CalibrantLtd/Slido/internal/dashboard/http"
	"github.com/CalibrantLtd/Slido/internal/observability"
	"github.com/CalibrantLtd/Slido/internal/platform/cache"
	"github.com/CalibrantLtd/Slido/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "report":
			os.Exit(runReport(os.Args[2:]))
		case "jobs":
			os.Exit(runJobs(os.Args[2:]))
		case "serve":
		default:
			_, _ = fmt.Fprintf(os.Stderr, "unknown command %q (want serve, report or jobs)\n", os.Args[1])
			os.Exit(cli.ExitInvalid)
		}
	}
	serve()
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var dashboardCache *dashboard.Cache
	if cfg.CacheEnabled {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			// the service computes uncached until redis is reachable
			logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			dashboardCache = dashboard.NewCache(redisClient, cfg.CacheTTL)
			go func() {
				if err := dashboardCache.ListenForInvalidation(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("cache invalidation listener", slog.Any("error", err))
				}
			}()
		}
	}

	service := dashboard.NewService(dashboardCache,
		dashboard.WithLogger(logger),
		dashboard.WithRecorder(metrics),
	)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	dashboardHandler := dashboardhttp.NewHandler(logger, service, jobClient, dashboardhttp.Options{
		RequestTimeout: cfg.ComputeTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RatePerMinute:  cfg.RateLimitPerMinute,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	var opts cli.ReportOptions
	fs.StringVar(&opts.DatasetPath, "data", "", "dataset file (.json, .csv or .xlsx)")
	fs.StringVar(&opts.Sheet, "sheet", "", "workbook sheet, first sheet when empty")
	fs.StringVar(&opts.ParamsPath, "params", "", "portfolio parameter file (YAML)")
	fs.StringVar(&opts.Period, "period", "", "month, quarter, year or binder")
	fs.StringVar(&opts.Ratio, "ratio", "", "CCR or NLR")
	fs.StringVar(&opts.Premium, "premium", "", "GWP or NWP")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print the table as JSON")
	if err := fs.Parse(args); err != nil {
		return cli.ExitInvalid
	}

	reportCLI, err := cli.NewReportCLI(dashboard.NewService(nil))
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return cli.ExitFailure
	}
	return reportCLI.ReportCommand(context.Background(), opts)
}

func runJobs(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	var opts cli.JobsOptions
	redisAddr := fs.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	fs.StringVar(&opts.DatasetPath, "data", "", "dataset file for warmup")
	fs.StringVar(&opts.DatasetID, "id", "", "dataset ID used as cache key")
	fs.StringVar(&opts.Sheet, "sheet", "", "workbook sheet")
	fs.StringVar(&opts.ParamsPath, "params", "", "portfolio parameter file (YAML)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitInvalid
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(os.Stderr, "usage: slido jobs [flags] warmup|invalidate")
		return cli.ExitInvalid
	}
	opts.Job = fs.Arg(0)

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: *redisAddr})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return cli.ExitFailure
	}
	defer func() { _ = client.Close() }()

	jobsCLI, err := cli.NewJobsCLI(client)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return cli.ExitFailure
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return jobsCLI.TriggerCommand(ctx, opts)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
