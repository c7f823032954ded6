package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/freekieb7/rawhttp/test"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	test.AssertNoError(t, err)

	test.AssertEqual(t, DefaultAddr, cfg.Addr)
	test.AssertEqual(t, DefaultWorkers, cfg.Workers)
	test.AssertEqual(t, slog.LevelInfo, cfg.LogLevel)
	test.AssertEqual(t, DefaultLogDir, cfg.LogDir)
	test.AssertEqual(t, DefaultPublicDir, cfg.PublicDir)
	test.AssertEqual(t, false, cfg.OTel)
	test.AssertEqual(t, false, cfg.TLSEnabled())
}

func TestLoadEnvironmentOverridesFlags(t *testing.T) {
	cfg, err := Load(
		[]string{"-addr", "0.0.0.0:9000", "-workers", "4"},
		env(map[string]string{"RAWHTTP_WORKERS": "16", "RAWHTTP_LOG_LEVEL": "debug", "RAWHTTP_OTEL": "true", "RAWHTTP_REUSE_PORT": "1"}),
	)
	test.AssertNoError(t, err)

	test.AssertEqual(t, "0.0.0.0:9000", cfg.Addr)
	test.AssertEqual(t, 16, cfg.Workers)
	test.AssertEqual(t, slog.LevelDebug, cfg.LogLevel)
	test.AssertEqual(t, true, cfg.OTel)
	test.AssertEqual(t, true, cfg.ReusePort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"non numeric workers", []string{"-workers", "many"}, nil},
		{"zero workers", nil, map[string]string{"RAWHTTP_WORKERS": "0"}},
		{"unknown level", []string{"-log-level", "loud"}, nil},
		{"bad otel flag", nil, map[string]string{"RAWHTTP_OTEL": "maybe"}},
		{"half a key pair", []string{"-tls-cert", "cert.pem"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args, env(tc.env))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	if _, err := Load([]string{"-nope"}, env(nil)); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
