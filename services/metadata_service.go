package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"storage-browser/contract"
	"storage-browser/domain"
	"storage-browser/domain/entitypath"
	"storage-browser/domain/mimetypes"
	"storage-browser/errors"
)

type MetadataConfig struct {
	Bucket    string
	SessionID string
	Now       func() time.Time
}

// MetadataService serves the record index of one session's bucket prefix.
type MetadataService struct {
	bucket    string
	sessionID string
	now       func() time.Time
	store     contract.ObjectStore
	repo      contract.RecordRepository
	log       *slog.Logger
}

func NewMetadataService(cfg MetadataConfig, store contract.ObjectStore, repo contract.RecordRepository, log *slog.Logger) *MetadataService {
	return &MetadataService{
		bucket:    cfg.Bucket,
		sessionID: cfg.SessionID,
		now:       lo.Ternary(cfg.Now != nil, cfg.Now, time.Now),
		store:     store,
		repo:      repo,
		log:       log,
	}
}

// List returns the direct children of a mount-relative folder. Folders only
// known through deeper records are synthesized with the folder mime type and no id.
// Soft-deleted records stay in the listing.
func (s *MetadataService) List(parent string) ([]domain.Record, error) {
	segments, err := entitypath.ParseMount(parent)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	depth := len(segments)
	children := make([]domain.Record, 0)
	folders := make(map[string]bool)
	for _, record := range records {
		parts := strings.Split(record.Path, "/")
		if len(parts) <= depth || !slices.Equal(parts[:depth], segments) {
			continue
		}
		if len(parts) == depth+1 {
			children = append(children, record)
			continue
		}
		folder := strings.Join(parts[:depth+1], "/")
		if !record.IsDeleted() && !folders[folder] {
			folders[folder] = true
			children = append(children, domain.Record{Path: folder, MimeType: mimetypes.Folder})
		}
	}
	slices.SortFunc(children, func(a, b domain.Record) int { return strings.Compare(a.Path, b.Path) })
	return children, nil
}

// Generate rebuilds the index from the objects under the session prefix.
// A record's id is derived from its object name, so a moved record keeps its
// path across regenerations. Records whose object is gone are soft-deleted;
// those whose object came back are revived.
func (s *MetadataService) Generate(ctx context.Context) (domain.GenerateReport, error) {
	var report domain.GenerateReport
	objects, err := s.store.List(ctx, s.bucket, s.sessionID+"/")
	if err != nil {
		return report, fmt.Errorf("listing %s: %w", s.bucket, err)
	}
	existing, err := s.repo.All()
	if err != nil {
		return report, err
	}

	byID := lo.KeyBy(existing, func(r domain.Record) string { return r.ID })
	seen := make(map[string]bool, len(objects))
	now := s.now().UTC()
	next := make([]domain.Record, 0, len(existing)+len(objects))

	for _, obj := range objects {
		id := s.recordID(obj.Name)
		if seen[id] {
			continue
		}
		seen[id] = true
		record, known := byID[id]
		switch {
		case !known:
			record = domain.Record{ID: id, Path: s.recordPath(obj)}
			report.Added++
		case record.IsDeleted():
			record.DeletedAt = nil
			report.Revived++
		default:
			report.Updated++
		}
		record.MD5Hash = obj.MD5Hash
		record.SizeBytes = obj.Size
		record.MimeType = mimetypes.Normalize(obj.ContentType, record.Path)
		byID[id] = record
	}

	for _, record := range existing {
		if !seen[record.ID] && !record.IsDeleted() {
			record.DeletedAt = lo.ToPtr(now)
			byID[record.ID] = record
			report.Deleted++
		}
	}
	for _, record := range byID {
		next = append(next, record)
	}
	slices.SortFunc(next, func(a, b domain.Record) int { return strings.Compare(a.Path, b.Path) })

	if err := s.repo.ReplaceAll(next); err != nil {
		return report, err
	}
	s.log.Info("Metadata index generated", "bucket", s.bucket, "objects", len(objects),
		"added", report.Added, "updated", report.Updated, "deleted", report.Deleted, "revived", report.Revived)
	return report, nil
}

// Move changes the path of a record. The destination must be a non-root
// mount path not used by another live record.
func (s *MetadataService) Move(id, newPath string) (domain.Record, error) {
	segments, err := entitypath.ParseMount(newPath)
	if err != nil {
		return domain.Record{}, err
	}
	if len(segments) == 0 {
		return domain.Record{}, fmt.Errorf("%w: cannot move %s to the root", errors.ErrRootPath, id)
	}
	record, err := s.repo.Get(id)
	if err != nil {
		return domain.Record{}, err
	}
	path := strings.Join(segments, "/")
	all, err := s.repo.All()
	if err != nil {
		return domain.Record{}, err
	}
	if lo.SomeBy(all, func(r domain.Record) bool { return r.ID != id && r.Path == path && !r.IsDeleted() }) {
		return domain.Record{}, fmt.Errorf("%w: %s is already taken", errors.ErrInvalidMove, path)
	}

	record.Path = path
	if err := s.repo.Update(record); err != nil {
		return domain.Record{}, err
	}
	s.log.Info("Record moved", "id", id, "path", path)
	return record, nil
}

func (s *MetadataService) recordID(objectName string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gs://"+s.bucket+"/"+objectName)).String()
}

// recordPath places an object where its uploader put it: the target folder
// and original name carried as custom metadata. Objects without them land at
// their name relative to the session prefix.
func (s *MetadataService) recordPath(obj domain.ObjectMetadata) string {
	name := obj.Metadata[domain.MetaOriginalName]
	if target, err := entitypath.FromString(obj.Metadata[domain.MetaPath]); err == nil && name != "" {
		if p, err := target.Join(name); err == nil {
			return p.MountPath()
		}
	}
	return strings.TrimPrefix(obj.Name, s.sessionID+"/")
}
