package repositories

import (
	"encoding/csv"
	goerrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"

	"storage-browser/domain"
	"storage-browser/errors"
)

var recordHeader = []string{"id", "path", "md5Hash", "sizeBytes", "deletedAt", "mimeType"}

// RecordRepository keeps the metadata index in memory and mirrors it to a CSV
// file. Every change rewrites the whole file through a temporary file and a
// rename, so a reader never sees a half written index.
type RecordRepository struct {
	mu      sync.RWMutex
	path    string
	records []domain.Record
	log     *slog.Logger
}

// NewRecordRepository loads the CSV file at path. A missing file is an empty
// index.
func NewRecordRepository(path string, log *slog.Logger) (*RecordRepository, error) {
	r := &RecordRepository{path: path, log: log}
	f, err := os.Open(path)
	if goerrors.Is(err, fs.ErrNotExist) {
		log.Info("No record file yet, starting empty", "path", path)
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if r.records, err = readRecords(f); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	log.Info("Records loaded", "path", path, "count", len(r.records))
	return r, nil
}

func (r *RecordRepository) All() ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Record(nil), r.records...), nil
}

func (r *RecordRepository) Get(id string) (domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := lo.Find(r.records, func(rec domain.Record) bool { return rec.ID == id })
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: %s", errors.ErrRecordNotFound, id)
	}
	return record, nil
}

// ReplaceAll swaps the whole index.
func (r *RecordRepository) ReplaceAll(records []domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := append([]domain.Record(nil), records...)
	if err := r.writeLocked(next); err != nil {
		return err
	}
	r.records = next
	return nil
}

// Update overwrites the record with the same id.
func (r *RecordRepository) Update(record domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(r.records, func(rec domain.Record) bool { return rec.ID == record.ID })
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrRecordNotFound, record.ID)
	}
	next := append([]domain.Record(nil), r.records...)
	next[idx] = record
	if err := r.writeLocked(next); err != nil {
		return err
	}
	r.records = next
	return nil
}

func (r *RecordRepository) writeLocked(records []domain.Record) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	r.log.Debug("Records written", "path", r.path, "count", len(records))
	return nil
}

func readRecords(rd io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(recordHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func writeRecords(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := cw.Write(toRow(record)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fromRow(row []string) (domain.Record, error) {
	size, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("sizeBytes %q: %w", row[3], err)
	}
	record := domain.Record{ID: row[0], Path: row[1], MD5Hash: row[2], SizeBytes: size, MimeType: row[5]}
	if row[4] != "" {
		deletedAt, err := time.Parse(time.RFC3339Nano, row[4])
		if err != nil {
			return domain.Record{}, fmt.Errorf("deletedAt %q: %w", row[4], err)
		}
		record.DeletedAt = &deletedAt
	}
	return record, nil
}

func toRow(r domain.Record) []string {
	deletedAt := ""
	if r.DeletedAt != nil {
		deletedAt = r.DeletedAt.UTC().Format(time.RFC3339Nano)
	}
	return []string{r.ID, r.Path, r.MD5Hash, strconv.FormatInt(r.SizeBytes, 10), deletedAt, r.MimeType}
}
