// Package config loads server settings from flags and the environment.
package config

import (
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/freekieb7/rawhttp/telemetry"
	"github.com/freekieb7/rawhttp/validation"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	DefaultAddr      = "127.0.0.1:7878"
	DefaultWorkers   = 10
	DefaultLogLevel  = "info"
	DefaultLogDir    = "logs"
	DefaultPublicDir = "public"
)

type Config struct {
	Addr      string
	Workers   int
	LogLevel  slog.Level
	LogDir    string
	PublicDir string
	TLSCert   string
	TLSKey    string
	OTel      bool
	ReusePort bool
}

// TLSEnabled reports whether both halves of a key pair were configured.
func (cfg Config) TLSEnabled() bool {
	return cfg.TLSCert != "" && cfg.TLSKey != ""
}

func (cfg Config) TLSConfig() (*tls.Config, error) {
	certificate, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("config: loading key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

type option struct {
	flag  string
	env   string
	def   string
	usage string
	rules []string
}

var options = []option{
	{"addr", "RAWHTTP_ADDR", DefaultAddr, "listen address", []string{"required"}},
	{"workers", "RAWHTTP_WORKERS", strconv.Itoa(DefaultWorkers), "number of connection workers", []string{"required", "integer", "min:1", "max:1024"}},
	{"log-level", "RAWHTTP_LOG_LEVEL", DefaultLogLevel, "debug, info, warn or error", []string{"required", "oneof:debug|info|warn|error"}},
	{"log-dir", "RAWHTTP_LOG_DIR", DefaultLogDir, "directory for server.log", []string{"required"}},
	{"public-dir", "RAWHTTP_PUBLIC_DIR", DefaultPublicDir, "directory served under /public/", []string{"required"}},
	{"tls-cert", "RAWHTTP_TLS_CERT", "", "TLS certificate file", nil},
	{"tls-key", "RAWHTTP_TLS_KEY", "", "TLS private key file", nil},
	{"otel", "RAWHTTP_OTEL", "false", "export telemetry over OTLP", []string{"boolean"}},
	{"reuse-port", "RAWHTTP_REUSE_PORT", "false", "set SO_REUSEPORT on the listener", []string{"boolean"}},
}

// Load parses args, then lets any non-empty environment variable override
// the flag of the same setting.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("rawhttp", flag.ContinueOnError)

	values := make(map[string]*string, len(options))
	for _, opt := range options {
		values[opt.flag] = fs.String(opt.flag, opt.def, opt.usage)
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	data := make(map[string]string, len(options))
	rules := make(map[string][]string, len(options))
	for _, opt := range options {
		value := *values[opt.flag]
		if getenv != nil {
			if env := getenv(opt.env); env != "" {
				value = env
			}
		}
		data[opt.flag] = value
		if opt.rules != nil {
			rules[opt.flag] = opt.rules
		}
	}

	if violations := validation.ValidateMap(data, rules); !violations.IsEmpty() {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, violations)
	}

	if (data["tls-cert"] == "") != (data["tls-key"] == "") {
		return Config{}, fmt.Errorf("%w: tls-cert and tls-key must be set together", ErrInvalidConfig)
	}

	workers, _ := strconv.Atoi(data["workers"])
	level, err := telemetry.ParseLevel(data["log-level"])
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return Config{
		Addr:      data["addr"],
		Workers:   workers,
		LogLevel:  level,
		LogDir:    data["log-dir"],
		PublicDir: data["public-dir"],
		TLSCert:   data["tls-cert"],
		TLSKey:    data["tls-key"],
		OTel:      validation.ValidateTrue(data["otel"]),
		ReusePort: validation.ValidateTrue(data["reuse-port"]),
	}, nil
}
