package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"storage-browser/domain"
	"storage-browser/domain/entitypath"
	"storage-browser/domain/progress"
	"storage-browser/domain/transfer"
	"storage-browser/errors"
	"storage-browser/services"
)

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	target := fs.String("target", "", "mount path of the destination folder, empty for the session root")
	priority := fs.Int("priority", 0, "lower values are admitted first")
	contentType := fs.String("type", "", "content type, sniffed when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("upload needs at least one file")
	}
	folder, err := entitypath.FromRoute(a.cfg.SessionID, *target)
	if err != nil {
		return err
	}

	for _, name := range fs.Args() {
		abs, err := filepath.Abs(name)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", name)
		}
		task, err := a.uploads.Enqueue(transfer.UploadRequest{
			SessionID:  a.cfg.SessionID,
			Bucket:     a.cfg.Bucket,
			TargetPath: folder.String(),
			Priority:   *priority,
			File: transfer.File{
				Name:         info.Name(),
				Size:         info.Size(),
				Type:         *contentType,
				LastModified: info.ModTime(),
				Path:         abs,
			},
		})
		if err != nil {
			return fmt.Errorf("queueing %s: %w", name, err)
		}
		fmt.Printf("queued upload %s of %s\n", shortID(task.ID), name)
	}
	return a.drain(ctx)
}

func (a *app) download(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	dest := fs.String("dest", ".", "local destination folder")
	priority := fs.Int("priority", 0, "lower values are admitted first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("download needs at least one object name")
	}
	dir, err := filepath.Abs(*dest)
	if err != nil {
		return err
	}

	for _, objectName := range fs.Args() {
		meta, err := a.store.Metadata(ctx, domain.ObjectRef{Bucket: a.cfg.Bucket, Name: objectName})
		if err != nil {
			return fmt.Errorf("looking up %s: %w", objectName, err)
		}
		name := filepath.Base(lo.CoalesceOrEmpty(meta.Metadata[domain.MetaOriginalName], path.Base(objectName)))
		task, err := a.downloads.Enqueue(transfer.DownloadRequest{
			SessionID:  a.cfg.SessionID,
			Bucket:     a.cfg.Bucket,
			ObjectName: objectName,
			SourcePath: meta.Metadata[domain.MetaPath],
			Priority:   *priority,
			File: transfer.File{
				Name:         name,
				Size:         meta.Size,
				Type:         meta.ContentType,
				LastModified: meta.Updated,
				Path:         filepath.Join(dir, name),
			},
		})
		if err != nil {
			return fmt.Errorf("queueing %s: %w", objectName, err)
		}
		fmt.Printf("queued download %s of %s\n", shortID(task.ID), objectName)
	}
	return a.drain(ctx)
}

func (a *app) resumeAndDrain(ctx context.Context) error {
	resumed := 0
	for _, q := range []interface {
		List() []transfer.Task
		Resume(id string) (transfer.Task, error)
	}{a.uploads, a.downloads} {
		for _, task := range q.List() {
			if task.Status != transfer.StatusPaused {
				continue
			}
			if _, err := q.Resume(task.ID); err != nil {
				return err
			}
			resumed++
		}
	}
	fmt.Printf("%d paused task(s) resumed\n", resumed)
	return a.drain(ctx)
}

func (a *app) control(cmd, id string) error {
	task, err := a.find(id)
	if err != nil {
		return err
	}
	q := a.queueOf(task.Kind)
	switch cmd {
	case "retry":
		if _, err := q.Retry(task.ID); err != nil {
			return err
		}
		fmt.Printf("%s queued again, start it with: transfer run\n", shortID(task.ID))
	case "cancel":
		if _, err := q.Cancel(task.ID); err != nil {
			return err
		}
		fmt.Printf("%s cancelled\n", shortID(task.ID))
	case "remove":
		if err := q.Remove(task.ID); err != nil {
			return err
		}
		fmt.Printf("%s removed\n", shortID(task.ID))
	}
	return nil
}

type taskQueue interface {
	Retry(id string) (transfer.Task, error)
	Cancel(id string) (transfer.Task, error)
	Remove(id string) error
}

func (a *app) queueOf(kind transfer.Kind) taskQueue {
	if kind == transfer.KindDownload {
		return a.downloads
	}
	return a.uploads
}

// find accepts a full id or an unambiguous prefix, as printed by list.
func (a *app) find(id string) (transfer.Task, error) {
	all := append(a.uploads.List(), a.downloads.List()...)
	if task, ok := lo.Find(all, func(t transfer.Task) bool { return t.ID == id }); ok {
		return task, nil
	}
	matches := lo.Filter(all, func(t transfer.Task, _ int) bool { return len(id) >= 4 && len(t.ID) >= len(id) && t.ID[:len(id)] == id })
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return transfer.Task{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	default:
		return transfer.Task{}, fmt.Errorf("%w: %s is ambiguous", errors.ErrInvalidRequest, id)
	}
}

func (a *app) list(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Kind", "Status", "Priority", "File", "Progress", "Error"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, task := range append(a.uploads.List(), a.downloads.List()...) {
		table.Append([]string{
			shortID(task.ID),
			string(task.Kind),
			statusColor(task.Status).Render(string(task.Status)),
			strconv.Itoa(task.Priority),
			task.File.Name,
			fmt.Sprintf("%s / %s", humanize.IBytes(uint64(task.TransferredBytes)), humanize.IBytes(uint64(task.File.Size))),
			task.Error,
		})
	}
	table.Render()
}

// printProgress prints one line per task change of both queues.
func (a *app) printProgress(w io.Writer) func() {
	printEvent := func(e services.Event) {
		task := e.Task
		if e.Removed {
			return
		}
		line := fmt.Sprintf("%-8s %-8s %s %s", shortID(task.ID), task.Kind,
			statusColor(task.Status).Render(fmt.Sprintf("%-19s", task.Status)), task.File.Name)
		if task.Status.IsInFlight() {
			if stats, err := a.progressOf(task); err == nil && stats.Total > 0 {
				line += fmt.Sprintf("  %5.1f%%", stats.Percent)
				if stats.Speed > 0 {
					line += fmt.Sprintf("  %s/s", humanize.IBytes(uint64(stats.Speed)))
				}
			}
		}
		if task.Error != "" {
			line += "  " + color.Red.Render(task.Error)
		}
		fmt.Fprintln(w, line)
	}
	stopUploads := a.uploads.Subscribe(printEvent)
	stopDownloads := a.downloads.Subscribe(printEvent)
	return func() {
		stopUploads()
		stopDownloads()
	}
}

// progressOf reads the live tracker, which counts hashed bytes while an
// upload is CALCULATING.
func (a *app) progressOf(task transfer.Task) (progress.Stats, error) {
	if task.Kind == transfer.KindDownload {
		return a.downloads.Progress(task.ID)
	}
	return a.uploads.Progress(task.ID)
}

func statusColor(s transfer.Status) color.Color {
	switch s {
	case transfer.StatusCompleted:
		return color.Green
	case transfer.StatusFailed, transfer.StatusVerificationFailed:
		return color.Red
	case transfer.StatusExpired, transfer.StatusCancelled:
		return color.Yellow
	case transfer.StatusPaused, transfer.StatusPending:
		return color.Gray
	default:
		return color.Cyan
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
