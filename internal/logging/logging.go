package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/freudibili/reeltodo/internal/config"
)

// out is swapped in tests to capture records.
var out io.Writer = os.Stdout

// New builds the process-wide logger. Every record carries a service
// attribute so ingestion logs stay identifiable when the analyzer and
// push sidecars share a log sink.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	handler, err := buildHandler(cfg)
	if err != nil {
		return nil, err
	}

	return slog.New(handler).With("service", "reeltodo"), nil
}

func buildHandler(cfg config.LoggingConfig) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(out, opts), nil
	case "text":
		return slog.NewTextHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}
