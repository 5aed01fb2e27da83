// Package cache provides the durable local replica of the task and area
// collections, backed by embedded SQLite.
//
// The cache is a snapshot store, not a query engine: the synchronization
// layer overwrites whole collections after every successful remote read and
// after every local mutation, and reads them back only when the remote is
// unreachable. Each collection has its own table and its own typed
// accessors; there is no string-keyed generic slot, so a typo cannot
// corrupt the wrong collection.
//
// The database runs in embedded mode (ncruces/go-sqlite3) with WAL so the
// CLI, inbox daemon, and dashboard can share one file.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/tmorel/cleansync/internal/model"
)

// DB wraps the embedded SQLite connection holding the two collection
// snapshots.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a new cache database at the specified path.
//
// If the database doesn't exist, it is created along with the schema.
// The caller MUST call Close() when done.
//
// Example:
//
//	store, err := cache.Open(".cleansync/cache.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, path: path}

	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection after checkpointing the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}

	db.conn = nil
	return nil
}

// Path returns the filesystem location of the cache database.
func (db *DB) Path() string {
	return db.path
}

// initSchema creates the snapshot tables if they don't exist. Idempotent.
func (db *DB) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		area TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL,
		assignee TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		photo_before TEXT NOT NULL DEFAULT '',
		photo_progress TEXT NOT NULL DEFAULT '',
		photo_after TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS areas (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);
	CREATE INDEX IF NOT EXISTS idx_tasks_area ON tasks(area);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// ReplaceTasks overwrites the task snapshot with the given collection.
// The replacement is transactional: readers never observe a half-written
// snapshot.
func (db *DB) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear task snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (
			id, date, area, category, job_description, assignee,
			status, remarks, photo_before, photo_progress, photo_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare task insert: %w", err)
	}
	defer stmt.Close()

	for i := range tasks {
		t := &tasks[i]
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Date, t.Area, t.Category, t.JobDescription, t.Assignee,
			string(t.Status), t.Remarks, t.PhotoBefore, t.PhotoProgress, t.PhotoAfter,
		)
		if err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task snapshot: %w", err)
	}
	return nil
}

// Tasks reads the task snapshot back. A missing table or empty snapshot
// yields an empty slice, not an error.
func (db *DB) Tasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, date, area, category, job_description, assignee,
		       status, remarks, photo_before, photo_progress, photo_after
		FROM tasks
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read task snapshot: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var status string
		err := rows.Scan(
			&t.ID, &t.Date, &t.Area, &t.Category, &t.JobDescription, &t.Assignee,
			&status, &t.Remarks, &t.PhotoBefore, &t.PhotoProgress, &t.PhotoAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = model.Status(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// ReplaceAreas overwrites the area snapshot with the given collection.
func (db *DB) ReplaceAreas(ctx context.Context, areas []model.Area) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM areas"); err != nil {
		return fmt.Errorf("failed to clear area snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO areas (name, category) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare area insert: %w", err)
	}
	defer stmt.Close()

	for i := range areas {
		a := &areas[i]
		if _, err := stmt.ExecContext(ctx, a.Name, a.Category); err != nil {
			return fmt.Errorf("failed to write area %s: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit area snapshot: %w", err)
	}
	return nil
}

// Areas reads the area snapshot back.
func (db *DB) Areas(ctx context.Context) ([]model.Area, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT name, category FROM areas ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to read area snapshot: %w", err)
	}
	defer rows.Close()

	var areas []model.Area
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.Name, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating areas: %w", err)
	}

	return areas, nil
}

// TaskCount returns the number of tasks in the snapshot.
func (db *DB) TaskCount(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// AreaCount returns the number of areas in the snapshot.
func (db *DB) AreaCount(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM areas").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count areas: %w", err)
	}
	return count, nil
}
