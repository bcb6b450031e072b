package ui

import (
	"log/slog"
	"time"

	"github.com/bamsammich/dirmirror/internal/event"
	"github.com/bamsammich/dirmirror/internal/stats"
)

// AuditLog turns engine events into log records: one per mutation and one
// at each cycle boundary.
type AuditLog struct {
	log *slog.Logger
}

// NewAuditLog creates an AuditLog writing to logger.
func NewAuditLog(logger *slog.Logger) *AuditLog {
	return &AuditLog{log: logger}
}

// Record logs ev.
func (a *AuditLog) Record(ev event.Event) {
	log := a.log
	if ev.DryRun {
		log = log.With("dry_run", true)
	}

	switch ev.Type {
	case event.CycleStarted:
		log.Info("starting synchronization",
			"cycle", ev.Cycle,
			"source", ev.Src,
			"destination", ev.Dst,
		)
	case event.CycleCompleted:
		log.Info("synchronization complete",
			"cycle", ev.Cycle,
			"duration", ev.Elapsed.Round(time.Millisecond),
			"summary", ev.Stats.String(),
			"sleeping", int64(ev.Interval.Seconds()),
		)
	case event.CycleFailed:
		log.Error("synchronization failed",
			"cycle", ev.Cycle,
			"error", ev.Error,
			"duration", ev.Elapsed.Round(time.Millisecond),
			"sleeping", int64(ev.Interval.Seconds()),
		)
	case event.DirCreated:
		log.Info("creating directory", "path", ev.Dst)
	case event.FileCopied:
		log.Info("copying file", leafAttrs(ev)...)
	case event.FileOverwritten:
		log.Info("overwriting file", leafAttrs(ev)...)
	case event.FileUnchanged:
		log.Debug("file unchanged", "path", ev.Dst)
	case event.DirDeleted:
		log.Info("deleting directory", "path", ev.Dst)
	case event.FileDeleted:
		log.Info("deleting file", "path", ev.Dst, "kind", ev.Kind)
	case event.EntryReplaced:
		log.Info("replacing entry", "path", ev.Dst, "from", ev.PrevKind, "to", ev.Kind)
	case event.EntrySkipped:
		log.Warn("skipping special file", "path", ev.Src, "kind", ev.Kind)
	}
}

func leafAttrs(ev event.Event) []any {
	attrs := []any{"src", ev.Src, "dst", ev.Dst, "size", stats.FormatBytes(ev.Size)}
	if ev.Kind != "" && ev.Kind != "file" {
		attrs = append(attrs, "kind", ev.Kind)
	}
	return attrs
}
