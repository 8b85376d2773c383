package memory

import (
	"context"
	"sync"
	"time"

	"github.com/k3ss/backend/internal/logger"
)

// stream operations the archiver needs, satisfied by *StreamStore
type archiveSource interface {
	DirtyProjects(ctx context.Context) ([]string, error)
	MarkDirty(ctx context.Context, project string) error
	ClearDirty(ctx context.Context, project string) error
	Cursor(ctx context.Context, project string) (string, error)
	SetCursor(ctx context.Context, project, id string) error
	RangeAfter(ctx context.Context, project, lastID string) ([]Entry, error)
}

// handles periodic persistence of new stream entries from Redis to SQLite
type Archiver struct {
	source   archiveSource
	backup   Backup
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// creates a new archiver that periodically copies stream entries to the backup
func NewArchiver(source archiveSource, backup Backup, interval time.Duration) *Archiver {
	return &Archiver{
		source:   source,
		backup:   backup,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// begins the background archive loop
func (a *Archiver) Start() {
	a.wg.Add(1)
	go a.run()
	logger.Info("memory archiver started", "interval", a.interval.String())
}

// gracefully stops the archiver and archives any remaining entries
func (a *Archiver) Stop() {
	close(a.stopCh)
	a.wg.Wait()
	logger.Info("memory archiver stopped")
}

func (a *Archiver) run() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.archive()
		case <-a.stopCh:
			// final pass before stopping
			logger.Info("archiving remaining entries before shutdown")
			a.archive()
			return
		}
	}
}

func (a *Archiver) archive() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	projects, err := a.source.DirtyProjects(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to list dirty projects")
		return
	}

	if len(projects) == 0 {
		return
	}

	logger.Debug("archiving projects", "count", len(projects))

	for _, project := range projects {
		if err := a.ArchiveProject(ctx, project); err != nil {
			// project stays dirty, retried next tick
			logger.ErrorErr(err, "failed to archive project", "project", project)
		}
	}
}

// copies all entries past the archive cursor into the backup and advances
// the cursor. The dirty flag comes off before the drain: a write landing
// mid-drain re-marks the project and is picked up next tick, and the cursor
// keeps re-scans idempotent.
func (a *Archiver) ArchiveProject(ctx context.Context, project string) error {
	if err := a.source.ClearDirty(ctx, project); err != nil {
		return err
	}

	if err := a.drain(ctx, project); err != nil {
		// re-mark so the next tick retries from the cursor
		if markErr := a.source.MarkDirty(ctx, project); markErr != nil {
			logger.ErrorErr(markErr, "failed to re-mark project dirty", "project", project)
		}

		return err
	}

	return nil
}

func (a *Archiver) drain(ctx context.Context, project string) error {
	cursor, err := a.source.Cursor(ctx, project)
	if err != nil {
		return err
	}

	entries, err := a.source.RangeAfter(ctx, project, cursor)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := a.backup.Insert(ctx, entry); err != nil {
			// cursor stays behind the failed entry so it is retried
			return err
		}

		if err := a.source.SetCursor(ctx, project, entry.ID); err != nil {
			return err
		}
	}

	if len(entries) > 0 {
		logger.Debug("archived entries to sqlite", "project", project, "count", len(entries))
	}

	return nil
}
