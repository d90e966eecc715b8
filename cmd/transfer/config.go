package main

import "time"

type Config struct {
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	ProxyURL         string        `env:"PROXY_URL,required=true"`
	CredentialsFile  string        `env:"CREDENTIALS_FILE,required=true"`
	Bucket           string        `env:"BUCKET,required=true"`
	SessionID        string        `env:"SESSION_ID,required=true"`
	MaxConcurrent    int           `env:"MAX_CONCURRENT,default=3"`
	ChunkSize        int64         `env:"CHUNK_SIZE,default=10485760"`
	SchedulerTick    time.Duration `env:"SCHEDULER_TICK,default=1s"`
	SignedURLTTL     time.Duration `env:"SIGNED_URL_TTL,default=15m"`
	UploadSessionTTL time.Duration `env:"UPLOAD_SESSION_TTL,default=168h"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricsAddr      string        `env:"METRICS_ADDR"`
}
