package repositories

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"storage-browser/domain"
	"storage-browser/errors"
)

func Test_Records_Missing_File_Is_Empty(t *testing.T) {
	req := require.New(t)
	repo, err := NewRecordRepository(filepath.Join(t.TempDir(), "records.csv"), logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)

	all, err := repo.All()
	req.NoError(err)
	req.Empty(all)
}

func Test_Records_Survive_Reload(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "index", "records.csv")
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	deletedAt := time.Date(2024, 3, 2, 10, 4, 5, 0, time.UTC)
	records := []domain.Record{
		{ID: "1", Path: "docs/report.pdf", MD5Hash: "XUFAKrxLKna5cZ2REBfFkg==", SizeBytes: 1024, MimeType: "application/pdf"},
		{ID: "2", Path: "docs/with, comma \"quoted\".txt", SizeBytes: 3, DeletedAt: &deletedAt},
	}

	repo, err := NewRecordRepository(path, log)
	req.NoError(err)
	req.NoError(repo.ReplaceAll(records))

	reloaded, err := NewRecordRepository(path, log)
	req.NoError(err)
	all, err := reloaded.All()
	req.NoError(err)
	req.Equal(records, all)
}

func Test_Records_File_Layout(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "records.csv")
	repo, err := NewRecordRepository(path, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	req.NoError(repo.ReplaceAll([]domain.Record{{ID: "1", Path: "a.txt", SizeBytes: 7, MimeType: "text/plain"}}))

	content, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("id,path,md5Hash,sizeBytes,deletedAt,mimeType\n1,a.txt,,7,,text/plain\n", string(content))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	req.NoError(err)
	req.Empty(leftovers)
}

func Test_Records_Update_And_Get(t *testing.T) {
	req := require.New(t)
	repo, err := NewRecordRepository(filepath.Join(t.TempDir(), "records.csv"), logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	req.NoError(repo.ReplaceAll([]domain.Record{{ID: "1", Path: "a.txt"}, {ID: "2", Path: "b.txt"}}))

	req.NoError(repo.Update(domain.Record{ID: "2", Path: "docs/b.txt", DeletedAt: lo.ToPtr(time.Now().UTC())}))
	got, err := repo.Get("2")
	req.NoError(err)
	req.Equal("docs/b.txt", got.Path)
	req.True(got.IsDeleted())

	_, err = repo.Get("3")
	req.ErrorIs(err, errors.ErrRecordNotFound)
	req.ErrorIs(repo.Update(domain.Record{ID: "3"}), errors.ErrRecordNotFound)
}

func Test_Records_Rejects_Malformed_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "records.csv")
	req.NoError(os.WriteFile(path, []byte("id,path,md5Hash,sizeBytes,deletedAt,mimeType\n1,a.txt,,seven,,\n"), 0o644))

	_, err := NewRecordRepository(path, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.ErrorContains(err, "line 2")
}
