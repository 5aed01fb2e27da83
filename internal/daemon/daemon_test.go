package daemon

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmorel/cleansync/internal/cache"
	"github.com/tmorel/cleansync/internal/model"
	"github.com/tmorel/cleansync/internal/remote"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
)

func setupDaemon(t *testing.T) (*Daemon, *syncsvc.Service, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := cache.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc := syncsvc.New(syncsvc.Config{
		Cache:  store,
		Remote: remote.Disabled{},
		Logger: log.New(os.Stderr, "[test] ", 0),
	})

	inbox := filepath.Join(dir, "inbox")
	d, err := New(svc, inbox, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}

	return d, svc, inbox
}

func TestNewCreatesInboxLayout(t *testing.T) {
	_, _, inbox := setupDaemon(t)

	for _, sub := range []string{"", archiveDir, rejectedDir} {
		if info, err := os.Stat(filepath.Join(inbox, sub)); err != nil || !info.IsDir() {
			t.Errorf("inbox subdirectory %q missing: %v", sub, err)
		}
	}
}

func TestSweepIngestsValidFile(t *testing.T) {
	d, svc, inbox := setupDaemon(t)

	task := model.Task{
		ID:             model.NewTaskID(),
		Date:           "2024-03-12",
		Area:           "Lobby",
		Category:       "Indoor",
		JobDescription: "Mop floor",
		Assignee:       "Maria",
		Status:         model.StatusCompleted,
	}
	if err := model.WriteTaskFile(inbox, &task); err != nil {
		t.Fatalf("failed to write inbox file: %v", err)
	}

	if err := d.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	got := svc.TasksSnapshot()
	if len(got) != 1 || got[0].ID != task.ID {
		t.Fatalf("task not ingested: %+v", got)
	}

	// The processed file moves to archive/ and leaves the inbox root.
	archived, err := os.ReadDir(filepath.Join(inbox, archiveDir))
	if err != nil || len(archived) != 1 {
		t.Errorf("archive has %d files (err=%v), want 1", len(archived), err)
	}
	if _, err := os.Stat(filepath.Join(inbox, task.Filename())); !os.IsNotExist(err) {
		t.Error("ingested file still in inbox root")
	}

	ingested, rejected := d.Stats()
	if ingested != 1 || rejected != 0 {
		t.Errorf("Stats = (%d, %d), want (1, 0)", ingested, rejected)
	}
}

func TestSweepRejectsMalformedFile(t *testing.T) {
	d, svc, inbox := setupDaemon(t)

	bad := filepath.Join(inbox, "garbled.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write bad file: %v", err)
	}

	if err := d.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if len(svc.TasksSnapshot()) != 0 {
		t.Error("malformed file produced a task")
	}

	rejectedFiles, err := os.ReadDir(filepath.Join(inbox, rejectedDir))
	if err != nil || len(rejectedFiles) != 1 {
		t.Errorf("rejected/ has %d files (err=%v), want 1", len(rejectedFiles), err)
	}

	ingested, rejected := d.Stats()
	if ingested != 0 || rejected != 1 {
		t.Errorf("Stats = (%d, %d), want (0, 1)", ingested, rejected)
	}
}

func TestSweepRejectsInvalidTask(t *testing.T) {
	d, svc, inbox := setupDaemon(t)

	// Well-formed JSON, but the record fails validation (no date).
	invalid := filepath.Join(inbox, "incomplete.json")
	if err := os.WriteFile(invalid, []byte(`{"id":"t-1","area":"Lobby"}`), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := d.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if len(svc.TasksSnapshot()) != 0 {
		t.Error("invalid record produced a task")
	}
	_, rejected := d.Stats()
	if rejected != 1 {
		t.Errorf("rejected = %d, want 1", rejected)
	}
}

func TestSweepSkipsNonTaskFiles(t *testing.T) {
	d, _, inbox := setupDaemon(t)

	if err := os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("not a task"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := d.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	ingested, rejected := d.Stats()
	if ingested != 0 || rejected != 0 {
		t.Errorf("Stats = (%d, %d), want (0, 0)", ingested, rejected)
	}
	if _, err := os.Stat(filepath.Join(inbox, "notes.txt")); err != nil {
		t.Errorf("non-task file was moved: %v", err)
	}
}
