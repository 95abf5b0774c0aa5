package config

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(cfg *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
			cfg.Log.LogLevel = level
		}
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("HTTP_WRITE"); !ok {
			cfg.Server.WriteTimeout = timeout
		}
	}
}

func WithSweepInterval(interval time.Duration) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("SWEEP_INTERVAL"); !ok {
			cfg.Sweep.Interval = interval
		}
	}
}

func WithStorage(driver StorageDriver) Option {
	return func(cfg *Config) {
		cfg.Storage = driver
	}
}
