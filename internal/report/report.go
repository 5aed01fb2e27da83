// Package report derives summary statistics and exports from a filtered
// task subset. Everything here is a plain reduction over its input; no
// storage tier is consulted.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/tmorel/cleansync/internal/model"
)

// Stats summarizes a task subset.
type Stats struct {
	Total      int
	ByStatus   map[model.Status]int
	ByArea     map[string]int
	Completed  int // completed + inspected
	Completion float64
}

// Summarize computes Stats over the given tasks.
func Summarize(tasks []model.Task) Stats {
	stats := Stats{
		Total:    len(tasks),
		ByStatus: make(map[model.Status]int),
		ByArea:   make(map[string]int),
	}

	for i := range tasks {
		t := &tasks[i]
		stats.ByStatus[t.Status]++
		stats.ByArea[t.Area]++
		if t.Status == model.StatusCompleted || t.Status == model.StatusInspected {
			stats.Completed++
		}
	}

	if stats.Total > 0 {
		stats.Completion = float64(stats.Completed) / float64(stats.Total)
	}

	return stats
}

// AreaNames returns the area keys of ByArea in sorted order, for stable
// display.
func (s Stats) AreaNames() []string {
	names := make([]string, 0, len(s.ByArea))
	for name := range s.ByArea {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// csvHeader is the column layout of an exported report. Photo payloads are
// deliberately omitted; embedded base64 has no business in a spreadsheet.
var csvHeader = []string{"id", "date", "area", "category", "job_description", "assignee", "status", "remarks"}

// WriteCSV writes the tasks to w in CSV form.
func WriteCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		row := []string{t.ID, t.Date, t.Area, t.Category, t.JobDescription, t.Assignee, string(t.Status), t.Remarks}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for task %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
