package main

import "time"

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8082"`
	ProxyURL        string        `env:"PROXY_URL,required=true"`
	CredentialsFile string        `env:"CREDENTIALS_FILE,required=true"`
	Bucket          string        `env:"BUCKET,required=true"`
	SessionID       string        `env:"SESSION_ID,required=true"`
	RecordsCSV      string        `env:"RECORDS_CSV,default=records.csv"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
}
