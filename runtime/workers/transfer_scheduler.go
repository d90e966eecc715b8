package workers

import (
	"context"
	"log/slog"
	"time"

	"storage-browser/contract"
)

const DefaultSchedulerTick = time.Second

// TransferScheduler admits the pending tasks of one queue. It runs on every
// tick and as soon as the queue signals a change (new task, resume, a slot
// freed by a finished transfer).
type TransferScheduler struct {
	queue contract.TransferQueue
	tick  time.Duration
	log   *slog.Logger
}

func NewTransferScheduler(queue contract.TransferQueue, tick time.Duration, log *slog.Logger) *TransferScheduler {
	if tick <= 0 {
		tick = DefaultSchedulerTick
	}
	return &TransferScheduler{queue: queue, tick: tick, log: log.With("kind", queue.Kind())}
}

func (s *TransferScheduler) Name() string {
	return "TransferScheduler(" + string(s.queue.Kind()) + ")"
}

func (s *TransferScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	wake := s.queue.Wake()

	s.schedule(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.schedule(ctx)
		case <-wake:
			s.schedule(ctx)
		}
	}
}

func (s *TransferScheduler) schedule(ctx context.Context) {
	started := s.queue.Schedule(ctx)
	for _, task := range started {
		s.log.Debug("Transfer admitted", "task_id", task.ID, "file", task.File.Name, "priority", task.Priority)
	}
}
