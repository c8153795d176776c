package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bayfiles/bay_sdk_go/internal/metrics"
)

const outcomeInjected = "injected_failure"

type failConfig struct {
	rate float64
	code int
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMiddleware injects latency and failures, then records metrics and a
// log entry per request. Paths are reduced to an operation name before
// logging since they carry credentials and tokens.
func withMiddleware(logger *zap.Logger, m *metrics.Metrics, delay time.Duration, failCfg failConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		op := operation(r.URL.Path)
		if delay > 0 {
			time.Sleep(delay)
		}

		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			status := failCfg.code
			if status == 0 {
				status = http.StatusInternalServerError
			}
			http.Error(w, "failure injected", status)
			m.ObserveRequest(op, outcomeInjected, time.Since(start))
			logger.Warn("failure injected", zap.String("op", op), zap.Int("status", status))
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		took := time.Since(start)
		m.ObserveRequest(op, metrics.OutcomeOK, took)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("op", op),
			zap.Int("status", rec.status),
			zap.Duration("took", took),
		)
	})
}

// operation maps a request path to a label without path parameters:
// account/login, file/info, upload, download and so on.
func operation(path string) string {
	path = strings.TrimPrefix(path, "/v1")
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	switch {
	case len(parts) == 0:
		return "root"
	case parts[0] == "account" || parts[0] == "file":
		if len(parts) > 1 {
			return parts[0] + "/" + parts[1]
		}
		return parts[0]
	default:
		return parts[0]
	}
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return failConfig{}, err
			}
			if val < 0 || val > 1 {
				return failConfig{}, fmt.Errorf("fail rate %v out of [0,1]", val)
			}
			cfg.rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return failConfig{}, err
			}
			cfg.code = val
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
