package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"storage-browser/domain/transfer"
)

// TaskRepository persists transfer tasks in BadgerDB, one key per task:
// transfer:<kind>:<id>.
type TaskRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTaskRepository(db *badger.DB, log *slog.Logger) *TaskRepository {
	return &TaskRepository{db: db, log: log}
}

func taskKey(kind transfer.Kind, id string) []byte {
	return []byte(fmt.Sprintf("transfer:%s:%s", kind, id))
}

func kindPrefix(kind transfer.Kind) []byte {
	return []byte(fmt.Sprintf("transfer:%s:", kind))
}

// Save upserts a single task.
func (r *TaskRepository) Save(task transfer.Task) error {
	return r.SaveAll([]transfer.Task{task})
}

// SaveAll upserts tasks in a single transaction, so a snapshot is either
// fully written or not at all.
func (r *TaskRepository) SaveAll(tasks []transfer.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.Update(func(txn *badger.Txn) error {
		for _, task := range tasks {
			data, err := json.Marshal(task)
			if err != nil {
				return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
			}
			if err := txn.Set(taskKey(task.Kind, task.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a task. Deleting an unknown task is not an error.
func (r *TaskRepository) Delete(kind transfer.Kind, id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(taskKey(kind, id))
	})
}

// List returns every stored task of a kind, in admission order.
func (r *TaskRepository) List(kind transfer.Kind) ([]transfer.Task, error) {
	var tasks []transfer.Task
	prefix := kindPrefix(kind)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var task transfer.Task
				if err := json.Unmarshal(v, &task); err != nil {
					// A corrupt entry must not hide the rest of the queue
					r.log.Warn("Skipping unreadable task", "key", string(item.Key()), "error", err)
					return nil
				}
				tasks = append(tasks, task)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing %s tasks: %w", kind, err)
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Seq < tasks[j].Seq })
	return tasks, nil
}
