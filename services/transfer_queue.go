package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"storage-browser/contract"
	"storage-browser/domain/progress"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/observability"
)

// DefaultMaxConcurrent is the admission cap of one queue.
const DefaultMaxConcurrent = 3

// Causes attached to a runner context when a control operation stops it.
// The control operation has already set the status, so the runner must not
// settle the task again.
var (
	errStopPaused    = fmt.Errorf("paused by user")
	errStopCancelled = fmt.Errorf("cancelled by user")
	errStopRemoved   = fmt.Errorf("removed by user")
	errStopClosed    = fmt.Errorf("queue closed")
)

// Event is delivered to subscribers after every change of a task.
type Event struct {
	Task    transfer.Task
	Removed bool
}

type Listener func(Event)

// pipeline drives one admitted task until it completes or fails. It only
// changes the task through the queue's update/touch methods.
type pipeline func(ctx context.Context, id string, tracker *progress.Tracker) error

type activeRun struct {
	cancel  context.CancelCauseFunc
	tracker *progress.Tracker
	// onExit runs once the pipeline has returned, set when the task is
	// removed while running.
	onExit func()
}

// transferQueue is the scheduler shared by uploads and downloads. One mutex
// guards the task map, the active set and the trackers; every admission
// decision and every merge happens under it.
type transferQueue struct {
	kind          transfer.Kind
	maxConcurrent int
	repo          contract.TaskRepository
	log           *slog.Logger
	now           func() time.Time
	run           pipeline
	// discard drops the local leftovers of a removed task, nil when there
	// are none.
	discard func(task transfer.Task)

	mu           sync.Mutex
	tasks        map[string]transfer.Task
	active       map[string]*activeRun
	seq          uint64
	listeners    map[int]Listener
	nextListener int
	changed      chan struct{}
	closed       bool

	wake chan struct{}
	wg   sync.WaitGroup
}

func newTransferQueue(kind transfer.Kind, maxConcurrent int, repo contract.TaskRepository, now func() time.Time, log *slog.Logger) *transferQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if now == nil {
		now = time.Now
	}
	return &transferQueue{
		kind:          kind,
		maxConcurrent: maxConcurrent,
		repo:          repo,
		log:           log.With("kind", string(kind)),
		now:           now,
		tasks:         make(map[string]transfer.Task),
		active:        make(map[string]*activeRun),
		listeners:     make(map[int]Listener),
		changed:       make(chan struct{}),
		wake:          make(chan struct{}, 1),
	}
}

func (q *transferQueue) Kind() transfer.Kind { return q.kind }

// Wake signals that the pending or active set changed. The scheduler worker
// selects on it next to its ticker.
func (q *transferQueue) Wake() <-chan struct{} { return q.wake }

func (q *transferQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// add registers a task built by newTask with the next insertion sequence.
func (q *transferQueue) add(newTask func(seq uint64, now time.Time) (transfer.Task, error)) (transfer.Task, error) {
	q.mu.Lock()
	task, err := newTask(q.seq+1, q.now())
	if err != nil {
		q.mu.Unlock()
		return transfer.Task{}, err
	}
	q.seq++
	q.tasks[task.ID] = task
	q.persistLocked(task)
	notify := q.changedLocked(Event{Task: task})
	q.mu.Unlock()

	notify()
	q.signal()
	q.log.Info("Transfer queued", "task_id", task.ID, "file", task.File.Name, "priority", task.Priority)
	return task, nil
}

func (q *transferQueue) Get(id string) (transfer.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[id]
	if !ok {
		return transfer.Task{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	return task, nil
}

// List returns every task in admission order: priority, then insertion.
func (q *transferQueue) List() []transfer.Task {
	q.mu.Lock()
	tasks := lo.Values(q.tasks)
	q.mu.Unlock()
	sortByAdmission(tasks)
	return tasks
}

func sortByAdmission(tasks []transfer.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].Seq < tasks[j].Seq
	})
}

// Schedule admits up to maxConcurrent-len(active) pending tasks, lowest
// priority value first, and starts their pipelines under ctx.
func (q *transferQueue) Schedule(ctx context.Context) []transfer.Task {
	q.mu.Lock()
	if q.closed || ctx.Err() != nil {
		q.mu.Unlock()
		return nil
	}
	slots := q.maxConcurrent - len(q.active)
	if slots <= 0 {
		q.mu.Unlock()
		return nil
	}

	pending := lo.Filter(lo.Values(q.tasks), func(t transfer.Task, _ int) bool {
		_, running := q.active[t.ID]
		return t.Status == transfer.StatusPending && !running
	})
	sortByAdmission(pending)
	if len(pending) > slots {
		pending = pending[:slots]
	}
	for _, task := range pending {
		q.launchLocked(ctx, task)
	}
	observability.SetActiveTransfers(string(q.kind), len(q.active))
	q.mu.Unlock()

	for _, task := range pending {
		q.log.Info("Transfer admitted", "task_id", task.ID, "priority", task.Priority, "offset", task.TransferredBytes)
	}
	return pending
}

func (q *transferQueue) launchLocked(ctx context.Context, task transfer.Task) {
	runCtx, cancel := context.WithCancelCause(ctx)
	tracker := progress.NewTrackerWithClock(task.TransferredBytes, q.now)
	q.active[task.ID] = &activeRun{cancel: cancel, tracker: tracker}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer cancel(nil)
		err := q.safeRun(runCtx, task.ID, tracker)
		q.settle(runCtx, task.ID, err)
	}()
}

// safeRun keeps a panicking pipeline from taking the process down; the
// panic is recorded on the task like any other failure.
func (q *transferQueue) safeRun(ctx context.Context, id string, tracker *progress.Tracker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("Transfer pipeline panicked", "task_id", id, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	return q.run(ctx, id, tracker)
}

// settle converts the pipeline outcome into the final task state and frees
// the slot. A single failure never reaches the scheduler.
func (q *transferQueue) settle(ctx context.Context, id string, err error) {
	q.mu.Lock()
	run := q.active[id]
	delete(q.active, id)
	observability.SetActiveTransfers(string(q.kind), len(q.active))

	task, ok := q.tasks[id]
	if !ok {
		notify := q.changedLocked()
		q.mu.Unlock()
		if run != nil && run.onExit != nil {
			run.onExit()
		}
		notify()
		q.signal()
		return
	}

	var target transfer.Status
	var message string
	switch {
	case err == nil:
	case ctx.Err() != nil:
		if cause := context.Cause(ctx); isUserStop(cause) {
			break
		}
		// stopped by shutdown: keep the bytes, resume later
		if task.Status.IsInFlight() || task.Status == transfer.StatusPending {
			target = transfer.StatusPaused
		}
	case goerrors.Is(err, errors.ErrSessionExpired), goerrors.Is(err, errors.ErrURLExpired):
		target, message = transfer.StatusExpired, err.Error()
	case goerrors.Is(err, errors.ErrChecksumMismatch) && q.kind == transfer.KindUpload:
		target, message = transfer.StatusVerificationFailed, err.Error()
	default:
		target, message = transfer.StatusFailed, err.Error()
	}

	if target != "" {
		next, applyErr := transfer.With(task, transfer.Patch{Status: &target, Error: &message}, q.now())
		if applyErr != nil {
			q.log.Warn("Could not settle transfer", "task_id", id, "status", task.Status, "target", target, "error", applyErr)
		} else {
			task = next
			q.tasks[id] = task
		}
	}
	q.persistLocked(task)
	notify := q.changedLocked(Event{Task: task})
	q.mu.Unlock()

	notify()
	q.signal()

	if task.Status.IsTerminal() || task.Status == transfer.StatusPaused {
		observability.RecordTransfer(string(q.kind), string(task.Status))
	}
	switch {
	case err == nil:
		q.log.Info("Transfer finished", "task_id", id, "status", task.Status, "bytes", task.TransferredBytes)
	case ctx.Err() != nil:
		q.log.Info("Transfer stopped", "task_id", id, "status", task.Status, "reason", context.Cause(ctx))
	default:
		q.log.Warn("Transfer failed", "task_id", id, "status", task.Status, "error", err)
	}
}

func isUserStop(cause error) bool {
	return goerrors.Is(cause, errStopPaused) || goerrors.Is(cause, errStopCancelled) || goerrors.Is(cause, errStopRemoved)
}

// update applies a patch on behalf of the runner owning ctx, then persists
// and notifies. Once the runner is stopped its patches are refused, so a
// paused or retried task never sees a late write from its old runner.
func (q *transferQueue) update(ctx context.Context, id string, p transfer.Patch) (transfer.Task, error) {
	return q.apply(ctx, id, p, true)
}

// touch is update without persistence or notification, for per-write byte
// counts; flush publishes the result.
func (q *transferQueue) touch(ctx context.Context, id string, p transfer.Patch) (transfer.Task, error) {
	return q.apply(ctx, id, p, false)
}

func (q *transferQueue) apply(ctx context.Context, id string, p transfer.Patch, publish bool) (transfer.Task, error) {
	q.mu.Lock()
	if ctx.Err() != nil {
		q.mu.Unlock()
		return transfer.Task{}, context.Cause(ctx)
	}
	task, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return transfer.Task{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	next, err := transfer.With(task, p, q.now())
	if err != nil {
		q.mu.Unlock()
		return task, err
	}
	q.tasks[id] = next
	if !publish {
		q.mu.Unlock()
		return next, nil
	}
	q.persistLocked(next)
	notify := q.changedLocked(Event{Task: next})
	q.mu.Unlock()

	notify()
	return next, nil
}

// flush persists and publishes the current state of a task.
func (q *transferQueue) flush(id string) {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	q.persistLocked(task)
	notify := q.changedLocked(Event{Task: task})
	q.mu.Unlock()
	notify()
}

// control applies a user operation. stop, when set, is the cause given to
// the task's runner if one is active.
func (q *transferQueue) control(id string, p transfer.Patch, stop error) (transfer.Task, error) {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return transfer.Task{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	next, err := transfer.With(task, p, q.now())
	if err != nil {
		q.mu.Unlock()
		return task, err
	}
	if run, running := q.active[id]; running && stop != nil {
		run.cancel(stop)
	}
	q.tasks[id] = next
	q.persistLocked(next)
	notify := q.changedLocked(Event{Task: next})
	q.mu.Unlock()

	notify()
	q.signal()
	return next, nil
}

// Pause stops the runner and keeps the transferred bytes. Pausing a paused
// task changes nothing.
func (q *transferQueue) Pause(id string) (transfer.Task, error) {
	task, err := q.Get(id)
	if err != nil || task.Status == transfer.StatusPaused {
		return task, err
	}
	q.log.Info("Pausing transfer", "task_id", id, "bytes", task.TransferredBytes)
	return q.control(id, transfer.Patch{Status: lo.ToPtr(transfer.StatusPaused)}, errStopPaused)
}

// Resume puts a paused task back in the queue; it continues from its
// transferred bytes.
func (q *transferQueue) Resume(id string) (transfer.Task, error) {
	task, err := q.Get(id)
	if err != nil || task.Status == transfer.StatusPending {
		return task, err
	}
	if task.Status != transfer.StatusPaused {
		return task, fmt.Errorf("%w: only paused tasks resume, %s is %s", errors.ErrIllegalTransition, id, task.Status)
	}
	return q.control(id, transfer.Patch{Status: lo.ToPtr(transfer.StatusPending)}, nil)
}

// Retry restarts a stopped task from scratch: bytes, signed URL, upload
// session and error are reset. Running and completed tasks are refused.
func (q *transferQueue) Retry(id string) (transfer.Task, error) {
	task, err := q.Get(id)
	if err != nil {
		return task, err
	}
	if task.Status.IsInFlight() {
		return task, fmt.Errorf("%w: %s is still %s", errors.ErrIllegalTransition, id, task.Status)
	}

	var never time.Time
	p := transfer.Patch{
		Status:             lo.ToPtr(transfer.StatusPending),
		TransferredBytes:   lo.ToPtr(int64(0)),
		SignedURL:          lo.ToPtr(""),
		SignedURLExpiresAt: &never,
		UploadURI:          lo.ToPtr(""),
		UploadURIExpiresAt: &never,
		Error:              lo.ToPtr(""),
	}
	if q.kind == transfer.KindUpload {
		// a new session needs fresh digests and a fresh object name
		p.CRC32C = lo.ToPtr("")
		p.XXHash64 = lo.ToPtr("")
		p.ObjectName = lo.ToPtr("")
	}
	q.log.Info("Retrying transfer", "task_id", id, "previous_status", task.Status)
	return q.control(id, p, nil)
}

// Cancel stops the runner and marks the task CANCELLED. Partial bytes are
// kept until the task is removed.
func (q *transferQueue) Cancel(id string) (transfer.Task, error) {
	return q.control(id, transfer.Patch{Status: lo.ToPtr(transfer.StatusCancelled)}, errStopCancelled)
}

func (q *transferQueue) SetPriority(id string, priority int) (transfer.Task, error) {
	if priority < 0 {
		return transfer.Task{}, fmt.Errorf("%w: negative priority %d", errors.ErrInvalidRequest, priority)
	}
	return q.control(id, transfer.Patch{Priority: &priority}, nil)
}

// Remove stops the runner and forgets the task and its tracker. Partial
// local data is discarded once the runner has exited.
func (q *transferQueue) Remove(id string) error {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	notify := q.removeLocked(task)
	q.mu.Unlock()

	notify()
	q.signal()
	q.log.Info("Transfer removed", "task_id", id)
	return nil
}

func (q *transferQueue) removeLocked(task transfer.Task) func() {
	cleanup := func() {}
	if q.discard != nil {
		cleanup = func() { q.discard(task) }
	}
	if run, running := q.active[task.ID]; running {
		run.cancel(errStopRemoved)
		run.onExit, cleanup = cleanup, func() {}
	}
	delete(q.tasks, task.ID)
	if err := q.repo.Delete(q.kind, task.ID); err != nil {
		q.log.Error("Failed to delete transfer", "task_id", task.ID, "error", err)
	}
	notify := q.changedLocked(Event{Task: task, Removed: true})
	return func() {
		cleanup()
		notify()
	}
}

// ClearCompleted removes every COMPLETED task and returns how many went.
func (q *transferQueue) ClearCompleted() int {
	q.mu.Lock()
	var notifies []func()
	for _, task := range q.tasks {
		if task.Status == transfer.StatusCompleted {
			notifies = append(notifies, q.removeLocked(task))
		}
	}
	q.mu.Unlock()

	for _, notify := range notifies {
		notify()
	}
	return len(notifies)
}

// Progress returns live throughput for an active task, or the stored byte
// count with no speed for the others.
func (q *transferQueue) Progress(id string) (progress.Stats, error) {
	q.mu.Lock()
	task, ok := q.tasks[id]
	run, running := q.active[id]
	q.mu.Unlock()

	if !ok {
		return progress.Stats{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	if running {
		return run.tracker.Snapshot(task.File.Size), nil
	}
	stats := progress.Stats{BytesDone: task.TransferredBytes, Total: task.File.Size}
	if task.File.Size > 0 {
		stats.Percent = float64(task.TransferredBytes) / float64(task.File.Size) * 100
	}
	return stats, nil
}

// Subscribe registers a listener called after every task change, outside
// the queue lock. The returned function unsubscribes.
func (q *transferQueue) Subscribe(l Listener) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextListener
	q.nextListener++
	q.listeners[id] = l
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.listeners, id)
	}
}

// changedLocked wakes waiters and returns the listener calls to run once
// the lock is released.
func (q *transferQueue) changedLocked(events ...Event) func() {
	close(q.changed)
	q.changed = make(chan struct{})

	listeners := lo.Values(q.listeners)
	return func() {
		for _, event := range events {
			for _, l := range listeners {
				l(event)
			}
		}
	}
}

func (q *transferQueue) persistLocked(task transfer.Task) {
	if err := q.repo.Save(task); err != nil {
		q.log.Error("Failed to persist transfer", "task_id", task.ID, "status", task.Status, "error", err)
	}
}

// Persist writes the whole collection.
func (q *transferQueue) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tasks := q.List()
	if err := q.repo.SaveAll(tasks); err != nil {
		return fmt.Errorf("persisting %s tasks: %w", q.kind, err)
	}
	return nil
}

// Load rehydrates the stored collection. Nothing survives a restart in
// flight: those tasks come back PAUSED.
func (q *transferQueue) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, err := q.repo.List(q.kind)
	if err != nil {
		return fmt.Errorf("loading %s tasks: %w", q.kind, err)
	}

	q.mu.Lock()
	var rehydrated []transfer.Task
	for _, task := range stored {
		if _, known := q.tasks[task.ID]; known {
			continue
		}
		if task.Status.IsInFlight() {
			paused, err := transfer.With(task, transfer.Patch{Status: lo.ToPtr(transfer.StatusPaused)}, q.now())
			if err != nil {
				q.log.Warn("Could not rehydrate transfer", "task_id", task.ID, "status", task.Status, "error", err)
				continue
			}
			task = paused
			rehydrated = append(rehydrated, task)
		}
		q.tasks[task.ID] = task
		q.seq = max(q.seq, task.Seq)
	}
	if err := q.repo.SaveAll(rehydrated); err != nil {
		q.log.Error("Failed to persist rehydrated transfers", "error", err)
	}
	notify := q.changedLocked()
	q.mu.Unlock()

	notify()
	q.signal()
	q.log.Info("Transfers loaded", "count", len(stored), "paused", len(rehydrated))
	return nil
}

// Wait blocks until none of the given tasks (all tasks when ids is empty)
// is pending or running.
func (q *transferQueue) Wait(ctx context.Context, ids ...string) error {
	for {
		q.mu.Lock()
		busy := false
		if len(ids) == 0 {
			busy = len(q.active) > 0 || lo.SomeBy(lo.Values(q.tasks), func(t transfer.Task) bool {
				return t.Status == transfer.StatusPending || t.Status.IsInFlight()
			})
		}
		for _, id := range ids {
			task, ok := q.tasks[id]
			_, running := q.active[id]
			if running || (ok && (task.Status == transfer.StatusPending || task.Status.IsInFlight())) {
				busy = true
				break
			}
		}
		changed := q.changed
		q.mu.Unlock()

		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close stops every runner and waits for them. Stopped tasks end PAUSED.
func (q *transferQueue) Close() {
	q.mu.Lock()
	q.closed = true
	for _, run := range q.active {
		run.cancel(errStopClosed)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
