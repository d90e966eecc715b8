package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"INFO"`
	Host           string        `envconfig:"HOST" default:"localhost"`
	Port           int           `envconfig:"PORT" default:"8081"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MetricsAddr    string        `envconfig:"METRICS_ADDR"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
