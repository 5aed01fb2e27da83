package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmorel/cleansync/internal/model"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
)

const (
	archiveDir  = "archive"
	rejectedDir = "rejected"
)

// Daemon runs the inbox ingest loop.
type Daemon struct {
	svc     *syncsvc.Service
	inbox   string
	watcher *Watcher
	logger  *log.Logger

	// Stats
	ingested int
	rejected int
}

// New creates a Daemon ingesting from inbox through svc.
// If logger is nil, a default logger writing to stderr is used.
func New(svc *syncsvc.Service, inbox string, logger *log.Logger) (*Daemon, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	for _, dir := range []string{inbox, filepath.Join(inbox, archiveDir), filepath.Join(inbox, rejectedDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create inbox directory %s: %w", dir, err)
		}
	}

	watcher, err := NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Daemon{
		svc:     svc,
		inbox:   inbox,
		watcher: watcher,
		logger:  logger,
	}, nil
}

// Start runs the ingest loop until ctx is cancelled. Files already sitting
// in the inbox are swept first, then the watcher takes over.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.Sweep(ctx); err != nil {
		return err
	}

	if err := d.watcher.Start(d.inbox); err != nil {
		return err
	}
	defer d.watcher.Stop()

	d.logger.Printf("Watching inbox: %s", d.inbox)

	for {
		select {
		case <-ctx.Done():
			d.logger.Printf("Daemon stopping: ingested=%d rejected=%d", d.ingested, d.rejected)
			return nil

		case event, ok := <-d.watcher.Events():
			if !ok {
				return nil
			}
			d.ingest(ctx, event.Path)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return nil
			}
			d.logger.Printf("WARNING: watch error: %v", err)
		}
	}
}

// Sweep processes every task file currently in the inbox. Individual file
// failures are logged and the sweep continues.
func (d *Daemon) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(d.inbox)
	if err != nil {
		return fmt.Errorf("failed to read inbox directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		d.ingest(ctx, filepath.Join(d.inbox, entry.Name()))
	}

	return nil
}

// ingest validates one inbox file and applies it through the sync service.
// Good files are archived, bad ones moved to rejected/ so a stuck capture
// device doesn't wedge the loop.
func (d *Daemon) ingest(ctx context.Context, path string) {
	task, err := model.ReadTaskFile(path)
	if err != nil {
		d.logger.Printf("WARNING: rejecting inbox file %s: %v", filepath.Base(path), err)
		d.move(path, rejectedDir)
		d.rejected++
		return
	}

	if err := d.svc.UpsertTask(ctx, *task); err != nil {
		d.logger.Printf("WARNING: rejecting inbox task %s: %v", task.ID, err)
		d.move(path, rejectedDir)
		d.rejected++
		return
	}

	d.logger.Printf("Ingested task %s (%s in %s)", task.ID, task.Date, task.Area)
	d.move(path, archiveDir)
	d.ingested++
}

// move relocates an inbox file into the named subdirectory.
func (d *Daemon) move(path, sub string) {
	dest := filepath.Join(d.inbox, sub, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		d.logger.Printf("WARNING: failed to move %s to %s: %v", path, sub, err)
	}
}

// Stats returns how many files were ingested and rejected so far.
func (d *Daemon) Stats() (ingested, rejected int) {
	return d.ingested, d.rejected
}
