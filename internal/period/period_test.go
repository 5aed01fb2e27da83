package period

import (
	"fmt"
	"testing"
	"time"

	"github.com/tmorel/cleansync/internal/model"
)

// taskOn builds a minimal valid task dated on the given day.
func taskOn(date string) model.Task {
	return model.Task{
		ID:             "task-" + date,
		Date:           date,
		Area:           "Lobby",
		JobDescription: "Mop floor",
		Status:         model.StatusPending,
	}
}

func dates(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Date)
	}
	return out
}

func TestParse(t *testing.T) {
	for _, p := range Periods {
		got, err := Parse(string(p))
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", p, err)
		}
		if got != p {
			t.Errorf("Parse(%q) = %q", p, got)
		}
	}

	if _, err := Parse("fortnightly"); err == nil {
		t.Error("Parse accepted an unknown period")
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		ref       string
		wantStart string
		wantEnd   string
	}{
		{"2024-03-10", "2024-03-10", "2024-03-16"}, // Sunday: week starts on ref itself
		{"2024-03-12", "2024-03-10", "2024-03-16"}, // Tuesday
		{"2024-03-16", "2024-03-10", "2024-03-16"}, // Saturday: week ends on ref itself
		{"2024-03-17", "2024-03-17", "2024-03-23"}, // next Sunday rolls the window
		{"2024-01-01", "2023-12-31", "2024-01-06"}, // window crosses a year boundary
		{"2024-03-01", "2024-02-25", "2024-03-02"}, // window crosses a month boundary
	}

	for _, tt := range tests {
		ref, err := time.Parse(model.DateLayout, tt.ref)
		if err != nil {
			t.Fatalf("bad test ref %q: %v", tt.ref, err)
		}

		start, end := WeekBounds(ref)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("WeekBounds(%s) = [%s, %s], want [%s, %s]",
				tt.ref, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

// The weekly window is always a 7-day span running Sunday through Saturday,
// whatever weekday the reference falls on.
func TestWeekBoundsAlwaysSundayToSaturday(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		start, end := WeekBounds(day)

		startDay, err := time.Parse(model.DateLayout, start)
		if err != nil {
			t.Fatalf("bad start %q: %v", start, err)
		}
		endDay, err := time.Parse(model.DateLayout, end)
		if err != nil {
			t.Fatalf("bad end %q: %v", end, err)
		}

		if startDay.Weekday() != time.Sunday {
			t.Fatalf("WeekBounds(%s) start %s is %s, want Sunday",
				day.Format(model.DateLayout), start, startDay.Weekday())
		}
		if endDay.Weekday() != time.Saturday {
			t.Fatalf("WeekBounds(%s) end %s is %s, want Saturday",
				day.Format(model.DateLayout), end, endDay.Weekday())
		}
		if endDay.Sub(startDay) != 6*24*time.Hour {
			t.Fatalf("WeekBounds(%s) span is not 7 days: [%s, %s]",
				day.Format(model.DateLayout), start, end)
		}

		day = day.AddDate(0, 0, 1)
	}
}

func TestFilterDaily(t *testing.T) {
	tasks := []model.Task{
		taskOn("2024-03-11"),
		taskOn("2024-03-12"),
		taskOn("2024-03-12"),
		taskOn("2024-03-13"),
	}

	got, err := Filter(tasks, Daily, "2024-03-12")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("daily filter returned %d tasks, want 2: %v", len(got), dates(got))
	}
	for _, task := range got {
		if task.Date != "2024-03-12" {
			t.Errorf("daily filter returned task dated %s", task.Date)
		}
	}
}

// Tasks dated Sunday 2024-03-10 through Saturday 2024-03-16 are exactly the
// weekly window around Tuesday 2024-03-12; the following Sunday is excluded.
func TestFilterWeeklyScenario(t *testing.T) {
	var tasks []model.Task
	for day := 10; day <= 17; day++ {
		tasks = append(tasks, taskOn(fmt.Sprintf("2024-03-%02d", day)))
	}

	got, err := Filter(tasks, Weekly, "2024-03-12")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	if len(got) != 7 {
		t.Fatalf("weekly filter returned %d tasks, want 7: %v", len(got), dates(got))
	}
	for _, task := range got {
		if task.Date == "2024-03-17" {
			t.Error("weekly filter included the following Sunday")
		}
	}
}

func TestFilterMonthlyYearlyAll(t *testing.T) {
	tasks := []model.Task{
		taskOn("2024-02-29"),
		taskOn("2024-03-01"),
		taskOn("2024-03-31"),
		taskOn("2023-03-15"),
	}

	monthly, err := Filter(tasks, Monthly, "2024-03-12")
	if err != nil {
		t.Fatalf("monthly filter failed: %v", err)
	}
	if len(monthly) != 2 {
		t.Errorf("monthly filter returned %v, want the two 2024-03 tasks", dates(monthly))
	}

	yearly, err := Filter(tasks, Yearly, "2024-03-12")
	if err != nil {
		t.Fatalf("yearly filter failed: %v", err)
	}
	if len(yearly) != 3 {
		t.Errorf("yearly filter returned %v, want the three 2024 tasks", dates(yearly))
	}

	all, err := Filter(tasks, All, "2024-03-12")
	if err != nil {
		t.Fatalf("all filter failed: %v", err)
	}
	if len(all) != len(tasks) {
		t.Errorf("all filter returned %d tasks, want %d", len(all), len(tasks))
	}
}

// Each period's result is a subset of the next wider one. The weekly link
// only holds when the reference's week lies inside the reference month: a
// Sunday-start week straddling a month (or year) boundary legitimately
// contains dates the monthly window excludes, so the refs here are chosen
// with their whole week in-month. TestFilterWeeklyAcrossBoundaries pins
// down what weekly returns on the straddling refs.
func TestFilterSubsetChain(t *testing.T) {
	var tasks []model.Task
	day := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		tasks = append(tasks, taskOn(day.Format(model.DateLayout)))
		day = day.AddDate(0, 0, 1)
	}

	refs := []string{"2023-12-15", "2024-01-17", "2024-02-15", "2024-03-10"}
	chain := []Period{Daily, Weekly, Monthly, Yearly, All}

	for _, ref := range refs {
		var prev []model.Task
		for i, p := range chain {
			got, err := Filter(tasks, p, ref)
			if err != nil {
				t.Fatalf("Filter(%s, %s) failed: %v", p, ref, err)
			}
			if i > 0 && !isSubset(prev, got) {
				t.Errorf("%s(%s) is not a subset of %s(%s)", chain[i-1], ref, p, ref)
			}
			prev = got
		}
	}
}

// A week straddling the month (here also the year) boundary keeps all seven
// of its days: the window is anchored to the reference's Sunday, not
// clipped to the reference's month or year.
func TestFilterWeeklyAcrossBoundaries(t *testing.T) {
	var tasks []model.Task
	day := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		tasks = append(tasks, taskOn(day.Format(model.DateLayout)))
		day = day.AddDate(0, 0, 1)
	}

	for _, ref := range []string{"2023-12-31", "2024-01-01"} {
		got, err := Filter(tasks, Weekly, ref)
		if err != nil {
			t.Fatalf("Filter(weekly, %s) failed: %v", ref, err)
		}

		want := map[string]bool{
			"2023-12-31": true, "2024-01-01": true, "2024-01-02": true,
			"2024-01-03": true, "2024-01-04": true, "2024-01-05": true,
			"2024-01-06": true,
		}
		if len(got) != len(want) {
			t.Fatalf("weekly(%s) returned %v, want the full 2023-12-31..2024-01-06 week", ref, dates(got))
		}
		for _, task := range got {
			if !want[task.Date] {
				t.Errorf("weekly(%s) included %s, outside the straddling week", ref, task.Date)
			}
		}
	}
}

func isSubset(sub, super []model.Task) bool {
	ids := make(map[string]bool, len(super))
	for _, t := range super {
		ids[t.ID] = true
	}
	for _, t := range sub {
		if !ids[t.ID] {
			return false
		}
	}
	return true
}

func TestFilterRejectsBadReference(t *testing.T) {
	if _, err := Filter(nil, Daily, "12/03/2024"); err == nil {
		t.Error("Filter accepted a non-canonical reference date")
	}
	if _, err := Filter(nil, Weekly, "not-a-date"); err == nil {
		t.Error("Filter accepted a nonsense reference date")
	}
}

func TestFilterSkipsMalformedTaskDates(t *testing.T) {
	tasks := []model.Task{
		taskOn("2024-03-12"),
		{ID: "bad", Date: "garbage", Area: "Lobby", JobDescription: "x", Status: model.StatusPending},
	}

	for _, p := range []Period{Weekly, Monthly, Yearly} {
		got, err := Filter(tasks, p, "2024-03-12")
		if err != nil {
			t.Fatalf("Filter(%s) failed: %v", p, err)
		}
		for _, task := range got {
			if task.ID == "bad" {
				t.Errorf("%s filter matched a malformed date", p)
			}
		}
	}
}
