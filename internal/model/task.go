// Package model provides the record types shared by the cache, remote
// gateway, and synchronization layers.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical calendar-date format for task records.
// Lexicographic order on this format matches chronological order, which
// the period filter relies on for window comparisons.
const DateLayout = "2006-01-02"

// Status describes where a cleaning job is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusInspected  Status = "inspected"
)

// Statuses lists all valid status values in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusInspected}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusInspected:
		return true
	}
	return false
}

// Task is a single cleaning-job record.
//
// Tasks are replaced whole on every change, keyed by ID; no field is ever
// mutated in place. Area references an Area by name, but referential
// integrity is not enforced at write time: deleting an area leaves
// dependent tasks carrying the old name.
type Task struct {
	ID string `json:"id" yaml:"id"`

	// Date is the calendar date of the job in YYYY-MM-DD form,
	// with no time component.
	Date string `json:"date" yaml:"date"`

	Area           string `json:"area" yaml:"area"`
	Category       string `json:"category,omitempty" yaml:"category,omitempty"`
	JobDescription string `json:"job_description" yaml:"job_description"`
	Assignee       string `json:"assignee" yaml:"assignee"`
	Status         Status `json:"status" yaml:"status"`
	Remarks        string `json:"remarks,omitempty" yaml:"remarks,omitempty"`

	// Photo payloads are embedded base64 image data captured before,
	// during, and after the job. All optional.
	PhotoBefore   string `json:"photo_before,omitempty" yaml:"photo_before,omitempty"`
	PhotoProgress string `json:"photo_progress,omitempty" yaml:"photo_progress,omitempty"`
	PhotoAfter    string `json:"photo_after,omitempty" yaml:"photo_after,omitempty"`
}

// NewTaskID returns a fresh opaque task identifier.
func NewTaskID() string {
	return uuid.NewString()
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Date == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("date must be a valid YYYY-MM-DD date (got %q)", t.Date)
	}
	if t.Area == "" {
		return fmt.Errorf("area is required")
	}
	if t.JobDescription == "" {
		return fmt.Errorf("job description is required")
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (t *Task) SetDefaults() {
	if t.ID == "" {
		t.ID = NewTaskID()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Date == "" {
		t.Date = time.Now().Format(DateLayout)
	}
}

// Filename returns the canonical inbox filename for this task: {id}.json
func (t *Task) Filename() string {
	return fmt.Sprintf("%s.json", t.ID)
}

// ReadTaskFile reads and parses a task JSON file from the given path.
// Returns the parsed Task or an error if reading/parsing fails.
func ReadTaskFile(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	task.SetDefaults()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}

	return &task, nil
}

// WriteTaskFile writes a Task to dir as pretty-printed JSON.
func WriteTaskFile(dir string, task *Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid task: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}

	path := filepath.Join(dir, task.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task file %s: %w", path, err)
	}

	return nil
}
