package config

import (
	"testing"
	"time"

	"log/slog"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"SERVER_PORT",
		"SERVER_READ_TIMEOUT_SECONDS",
		"SERVER_WRITE_TIMEOUT_SECONDS",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_URL",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"OPENAI_SEARCH_MODEL",
		"OPENAI_TEMPERATURE",
		"MEDIA_ANALYZER_URL",
		"MEDIA_ANALYZER_API_KEY",
		"MEDIA_ANALYZER_TIMEOUT_SECONDS",
		"GOOGLE_PLACES_API_KEY",
		"YOUTUBE_API_KEY",
		"PUSH_ENDPOINT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Errorf("expected default read timeout %v, got %v", defaultReadTimeout, cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level %v, got %v", slog.LevelInfo, cfg.Logging.Level)
	}
	if cfg.Logging.Format != defaultLogFormat {
		t.Errorf("expected default log format %q, got %q", defaultLogFormat, cfg.Logging.Format)
	}
	if cfg.OpenAI.Model != defaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", defaultOpenAIModel, cfg.OpenAI.Model)
	}
	if cfg.Analyzer.Timeout != defaultAnalyzerTimeout {
		t.Errorf("expected default analyzer timeout %v, got %v", defaultAnalyzerTimeout, cfg.Analyzer.Timeout)
	}
	if cfg.Push.Endpoint != defaultPushEndpoint {
		t.Errorf("expected default push endpoint %q, got %q", defaultPushEndpoint, cfg.Push.Endpoint)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearConfigEnv(t)

	overrides := map[string]string{
		"SERVER_PORT":                     "9090",
		"SERVER_READ_TIMEOUT_SECONDS":     "30",
		"SERVER_WRITE_TIMEOUT_SECONDS":    "45",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS": "15",
		"MEDIA_ANALYZER_TIMEOUT_SECONDS":  "90",
		"OPENAI_MODEL":                    "gpt-4o",
		"LOG_LEVEL":                       "debug",
		"LOG_FORMAT":                      "text",
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected overridden port, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout %v, got %v", 30*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Analyzer.Timeout != 90*time.Second {
		t.Errorf("expected analyzer timeout %v, got %v", 90*time.Second, cfg.Analyzer.Timeout)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected overridden model, got %q", cfg.OpenAI.Model)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected log level %v, got %v", slog.LevelDebug, cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format text, got %q", cfg.Logging.Format)
	}
}

func TestLoadCloudRunPortWins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != "8081" {
		t.Errorf("expected PORT to win, got %q", cfg.Server.Port)
	}
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SERVER_READ_TIMEOUT_SECONDS":    "-1",
		"SERVER_WRITE_TIMEOUT_SECONDS":   "abc",
		"MEDIA_ANALYZER_TIMEOUT_SECONDS": "3.5",
		"OPENAI_TEMPERATURE":             "warm",
		"LOG_LEVEL":                      "verbose",
		"LOG_FORMAT":                     "xml",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error when %s=%q", key, value)
			}
		})
	}
}

func TestParseSecondsRejectsInvalidInput(t *testing.T) {
	cases := []string{"-1", "abc", "3.5"}

	for _, input := range cases {
		if _, err := parseSeconds(input); err == nil {
			t.Fatalf("expected error for input %q", input)
		}
	}
}
