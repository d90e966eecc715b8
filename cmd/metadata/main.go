package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"

	"storage-browser/infrastructure/metadata"
	"storage-browser/infrastructure/proxy"
	"storage-browser/infrastructure/transport"
	"storage-browser/observability"
	"storage-browser/repositories"
	"storage-browser/services"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Metadata API terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	auth, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return exitConfig, fmt.Errorf("reading credentials: %w", err)
	}
	records, err := repositories.NewRecordRepository(cfg.RecordsCSV, log)
	if err != nil {
		return exitRuntime, err
	}
	store := proxy.NewClient(cfg.ProxyURL, auth, transport.NewHTTPClient(cfg.RequestTimeout), log)
	index := services.NewMetadataService(services.MetadataConfig{Bucket: cfg.Bucket, SessionID: cfg.SessionID}, store, records, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           metadata.NewServer(index, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: observability.Handler(), ReadHeaderTimeout: 5 * time.Second})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("Listening", "address", srv.Addr, "at", time.Now().UTC())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return exitRuntime, err
	}
	log.Info("Metadata API stopped cleanly")
	return exitOK, nil
}
