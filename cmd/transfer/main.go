package main

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"

	"storage-browser/infrastructure/proxy"
	"storage-browser/infrastructure/storage"
	"storage-browser/infrastructure/transport"
	"storage-browser/observability"
	"storage-browser/runtime/workers"
	"storage-browser/services"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `usage: transfer <command> [arguments]

commands:
  upload -target <mount path> [-priority n] files...
  download -dest <dir> [-priority n] objects...
  run                 resume paused tasks and drain both queues
  list                print every task
  retry <id>
  cancel <id>
  remove <id>
  clear               drop completed tasks`

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "transfer: %v\n", err)
	}
	os.Exit(code)
}

// app holds everything a command needs. Both queues are rehydrated from
// badger before any command runs.
type app struct {
	cfg       Config
	log       *slog.Logger
	uploads   *services.UploadManager
	downloads *services.DownloadStore
	store     *proxy.Client
}

func run(args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return exitConfig, nil
	}

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
	if !json.Valid(auth) {
		return exitConfig, fmt.Errorf("credentials file %s is not JSON", cfg.CredentialsFile)
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()

	repo := storage.NewTaskRepository(db, log)
	// streaming clients have no overall timeout, only the context
	streaming := transport.NewHTTPClient(0)
	a := &app{
		cfg:   cfg,
		log:   log,
		store: proxy.NewClient(cfg.ProxyURL, auth, transport.NewHTTPClient(cfg.RequestTimeout), log),
	}
	a.uploads = services.NewUploadManager(services.UploadConfig{
		MaxConcurrent: cfg.MaxConcurrent,
		ChunkSize:     cfg.ChunkSize,
		SessionTTL:    cfg.UploadSessionTTL,
	}, a.store, transport.NewSessionUploader(streaming, log), repo, log)
	a.downloads = services.NewDownloadStore(services.DownloadConfig{
		MaxConcurrent: cfg.MaxConcurrent,
		SignedURLTTL:  cfg.SignedURLTTL,
	}, a.store, transport.NewRangeFetcher(streaming, log), repo, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, load := range []func(context.Context) error{a.uploads.Load, a.downloads.Load} {
		if err := load(ctx); err != nil {
			return exitRuntime, fmt.Errorf("loading tasks: %w", err)
		}
	}
	defer a.shutdown()

	if err := a.dispatch(ctx, args[0], args[1:]); err != nil {
		if goerrors.Is(err, flag.ErrHelp) {
			return exitConfig, nil
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "upload":
		return a.upload(ctx, args)
	case "download":
		return a.download(ctx, args)
	case "run":
		return a.resumeAndDrain(ctx)
	case "list":
		a.list(os.Stdout)
		return nil
	case "retry", "cancel", "remove":
		if len(args) != 1 {
			return fmt.Errorf("%s takes exactly one task id", cmd)
		}
		return a.control(cmd, args[0])
	case "clear":
		n := a.uploads.ClearCompleted() + a.downloads.ClearCompleted()
		fmt.Printf("%d completed task(s) removed\n", n)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// drain runs both schedulers under a supervisor until no task is pending or
// in flight. An interrupt stops the runners; their tasks are kept as PAUSED.
func (a *app) drain(ctx context.Context) error {
	unsubscribe := a.printProgress(os.Stdout)
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	sup := workers.NewSupervisor(a.cfg.RestartInterval, a.log)
	sup.Add(
		workers.NewTransferScheduler(a.uploads, a.cfg.SchedulerTick, a.log),
		workers.NewTransferScheduler(a.downloads, a.cfg.SchedulerTick, a.log),
	)
	g.Go(func() error {
		sup.Run(runCtx)
		return nil
	})

	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: observability.Handler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			a.log.Info("Serving metrics", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		if err := a.uploads.Wait(runCtx); err != nil {
			return nil
		}
		if err := a.downloads.Wait(runCtx); err != nil {
			return nil
		}
		a.log.Info("Both queues drained")
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		fmt.Println("Interrupted, running transfers are paused")
	}
	return err
}

func (a *app) shutdown() {
	a.uploads.Close()
	a.downloads.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.uploads.Persist(ctx); err != nil {
		a.log.Error("Failed to persist uploads", "error", err)
	}
	if err := a.downloads.Persist(ctx); err != nil {
		a.log.Error("Failed to persist downloads", "error", err)
	}
}
