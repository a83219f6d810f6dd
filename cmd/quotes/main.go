package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btcquotes/internal/aggregate"
	"btcquotes/internal/bootstrap"
	"btcquotes/internal/config"
	"btcquotes/internal/httpx"
	"btcquotes/internal/logx"
	"btcquotes/internal/metrics"
	"btcquotes/internal/pipeline"
	"btcquotes/internal/validate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	var configPath string
	var amount string
	var metricsAddr string

	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.StringVar(&amount, "amount", "", "fetch quotes once for this USD amount and print JSON")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	logger, err := logx.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	qm := metrics.NewQuoteMetrics(reg)
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	httpClient := httpx.New(cfg.RequestTimeout())
	httpClient.UserAgent = cfg.HTTP.UserAgent

	agg := aggregate.New(
		bootstrap.Fetchers(cfg, httpClient),
		cfg.Quotes.Currency,
		aggregate.WithLogger(logger),
		aggregate.WithMetrics(qm),
		aggregate.WithFetchTimeout(cfg.RequestTimeout()),
	)
	v := validate.New(cfg.Quotes.MinAmount, cfg.Quotes.MaxAmount)

	if amount != "" {
		err := runOnce(ctx, agg, v, amount, cfg.Quotes.Currency, os.Stdout)
		agg.Close()
		switch {
		case errors.Is(err, errInvalidInput):
			os.Exit(2)
		case err != nil:
			logger.Error("one-shot quote failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	s := pipeline.New(ctx, agg, v, cfg.Debounce(),
		pipeline.WithLogger(logger),
		pipeline.WithInitialAmount(cfg.Quotes.InitialAmount),
	)
	defer s.Close()
	logger.Info("session started",
		zap.String("session_id", s.ID()),
		zap.String("currency", cfg.Quotes.Currency),
		zap.Duration("debounce", cfg.Debounce()),
	)
	if err := runInteractive(ctx, s, cfg.Quotes.Currency, os.Stdin, os.Stdout); err != nil {
		logger.Error("input", zap.Error(err))
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server", zap.Error(err))
	}
}
