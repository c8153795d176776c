package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bayfiles/bay_sdk_go/internal/devseed"
	"github.com/bayfiles/bay_sdk_go/internal/logging"
	"github.com/bayfiles/bay_sdk_go/internal/metrics"
	"github.com/bayfiles/bay_sdk_go/pkg/bay/mock"
)

const apiURLEnv = "BAY_API_URL"

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	seed := flag.String("seed", "", "path to YAML/JSON seed with accounts and files")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "console", "log format: console, json")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, *addr, *seed, *latency, *fail); err != nil {
		logger.Fatal("sandbox failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, addr, seedPath string, latency time.Duration, fail string) error {
	api := mock.New()
	if seedPath != "" {
		s, err := devseed.Load(seedPath)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := api.Seed(s); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
		logger.Info("seed applied",
			zap.String("path", seedPath),
			zap.Int("accounts", len(s.Accounts)),
			zap.Int("anonymous_files", len(s.Files)),
		)
	}

	failCfg, err := parseFailConfig(fail)
	if err != nil {
		return fmt.Errorf("parse fail flag: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg, "sandbox")
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", withMiddleware(logger, m, latency, failCfg, api))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("bay-sandbox listening", zap.String("addr", addr))
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Println()
	fmt.Println("export BAY_RUNTIME_MODE=http")
	fmt.Printf("export %s=http://%s/v1\n", apiURLEnv, host)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
