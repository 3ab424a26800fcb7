// Package config reads process settings from flags, falling back to
// environment variables and then to built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/freekieb7/rawhttp/http"
)

type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int
	MaxConns       int

	ServiceName  string
	OTLPEndpoint string
}

func Default() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		ReadTimeout:    http.DefaultReadTimeout,
		WriteTimeout:   http.DefaultWriteTimeout,
		MaxRequestSize: http.MaxRequestSize,
		MaxConns:       http.DefaultMaxConns,
		ServiceName:    "rawhttp",
	}
}

// Load parses args (without the program name). getenv supplies the
// environment, usually os.Getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if err := fromEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("rawhttp", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (host:port)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "time allowed to receive a complete request head")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "time allowed to write the response")
	fs.IntVar(&cfg.MaxRequestSize, "max-request-size", cfg.MaxRequestSize, "maximum buffered request size in bytes")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "maximum number of connections served at once")
	fs.StringVar(&cfg.ServiceName, "service-name", cfg.ServiceName, "service name reported to OpenTelemetry")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/gRPC collector; telemetry is off when empty")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Addr == "" {
		errs = append(errs, errors.New("config: addr is empty"))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, errors.New("config: read timeout must be positive"))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, errors.New("config: write timeout must be positive"))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("config: max request size must be positive"))
	}
	if cfg.MaxConns <= 0 {
		errs = append(errs, errors.New("config: max conns must be positive"))
	}
	return errors.Join(errs...)
}

func fromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("RAWHTTP_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}

	var err error
	if cfg.ReadTimeout, err = envDuration(getenv, "RAWHTTP_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = envDuration(getenv, "RAWHTTP_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}
	if cfg.MaxRequestSize, err = envInt(getenv, "RAWHTTP_MAX_REQUEST_SIZE", cfg.MaxRequestSize); err != nil {
		return err
	}
	if cfg.MaxConns, err = envInt(getenv, "RAWHTTP_MAX_CONNS", cfg.MaxConns); err != nil {
		return err
	}
	return nil
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func envInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
