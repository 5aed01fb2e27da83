package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/model"
	"github.com/tmorel/cleansync/internal/period"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
	"github.com/tmorel/cleansync/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage cleaning job records",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a cleaning job",
	Long: `Record a cleaning job against an area.

The record is applied locally right away and pushed to the remote store in
the background. With --interactive, a form prompts for each field.

Examples:
  cleansync task add --area Lobby --job "Mop and polish floor" --assignee Maria
  cleansync task add --interactive
  cleansync task add --area Parking --job "Sweep" --date yesterday --status completed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		app.svc.Load(ctx)

		task := model.Task{
			ID:             model.NewTaskID(),
			Area:           taskAddFlags.area,
			Category:       taskAddFlags.category,
			JobDescription: taskAddFlags.job,
			Assignee:       taskAddFlags.assignee,
			Status:         model.Status(taskAddFlags.status),
			Remarks:        taskAddFlags.remarks,
		}

		task.Date, err = resolveDate(taskAddFlags.date)
		if err != nil {
			return err
		}

		if taskAddFlags.interactive {
			if err := runTaskForm(app, &task); err != nil {
				return err
			}
		}

		// Inherit the area's category unless one was given explicitly.
		if task.Category == "" {
			for _, a := range app.svc.AreasSnapshot() {
				if a.Name == task.Area {
					task.Category = a.Category
					break
				}
			}
		}

		photos := []struct {
			path string
			dest *string
		}{
			{taskAddFlags.photoBefore, &task.PhotoBefore},
			{taskAddFlags.photoProgress, &task.PhotoProgress},
			{taskAddFlags.photoAfter, &task.PhotoAfter},
		}
		for _, p := range photos {
			if p.path == "" {
				continue
			}
			data, err := os.ReadFile(p.path)
			if err != nil {
				return fmt.Errorf("failed to read photo %s: %w", p.path, err)
			}
			*p.dest = base64.StdEncoding.EncodeToString(data)
		}

		task.SetDefaults()
		if err := app.svc.UpsertTask(ctx, task); err != nil {
			return err
		}

		fmt.Printf("%s Recorded task %s (%s in %s)\n", ui.RenderPass("✓"), task.ID, task.Date, task.Area)
		return nil
	},
}

var taskAddFlags struct {
	date          string
	area          string
	category      string
	job           string
	assignee      string
	status        string
	remarks       string
	photoBefore   string
	photoProgress string
	photoAfter    string
	interactive   bool
}

// runTaskForm collects task fields interactively. Area options come from
// the loaded area collection.
func runTaskForm(app *app, task *model.Task) error {
	areas := app.svc.AreasSnapshot()
	areaNames := make([]string, 0, len(areas))
	for _, a := range areas {
		areaNames = append(areaNames, a.Name)
	}

	statusNames := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		statusNames = append(statusNames, string(s))
	}

	status := string(task.Status)
	if status == "" {
		status = string(model.StatusPending)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Area").
				Options(huh.NewOptions(areaNames...)...).
				Value(&task.Area),
			huh.NewInput().
				Title("Job description").
				Value(&task.JobDescription),
			huh.NewInput().
				Title("Assignee").
				Value(&task.Assignee),
			huh.NewSelect[string]().
				Title("Status").
				Options(huh.NewOptions(statusNames...)...).
				Value(&status),
			huh.NewText().
				Title("Remarks").
				Value(&task.Remarks),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("form cancelled: %w", err)
	}

	task.Status = model.Status(status)
	return nil
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded jobs for a period",
	Long: `List job records whose date falls in the selected period window.

Periods: daily, weekly (Sunday through Saturday), monthly, yearly, all.
The window is anchored at --date (default: today).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		tasks, _ := app.svc.Load(cmd.Context())

		subset, err := filterForFlags(tasks, taskListFlags.period, taskListFlags.date)
		if err != nil {
			return err
		}

		if len(subset) == 0 {
			fmt.Println("No job records in this period.")
			return nil
		}

		fmt.Printf("%-36s  %-10s  %-14s  %-12s  %-11s  %s\n",
			"ID", "DATE", "AREA", "ASSIGNEE", "STATUS", "JOB")
		for _, t := range subset {
			fmt.Printf("%-36s  %-10s  %-14s  %-12s  %-11s  %s\n",
				t.ID, t.Date, t.Area, t.Assignee, renderStatus(t.Status), t.JobDescription)
		}
		fmt.Printf("\n%d record(s)\n", len(subset))
		return nil
	},
}

var taskListFlags struct {
	period string
	date   string
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		app.svc.Load(ctx)
		app.svc.DeleteTask(ctx, args[0])

		fmt.Printf("%s Deleted task %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set a job record's status",
	Long: fmt.Sprintf(`Set a job record's status.

Valid statuses: %s.

The record is replaced whole, as every mutation is.`, statusList()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskStatus(cmd, args[0], model.Status(args[1]))
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a job record completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskStatus(cmd, args[0], model.StatusCompleted)
	},
}

var taskInspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Mark a completed job record inspected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskStatus(cmd, args[0], model.StatusInspected)
	},
}

func setTaskStatus(cmd *cobra.Command, id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q (valid: %s)", status, statusList())
	}

	app, err := newApp(syncsvc.Hooks{})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	tasks, _ := app.svc.Load(ctx)

	for _, t := range tasks {
		if t.ID == id {
			t.Status = status
			if err := app.svc.UpsertTask(ctx, t); err != nil {
				return err
			}
			fmt.Printf("%s Task %s is now %s\n", ui.RenderPass("✓"), id, renderStatus(status))
			return nil
		}
	}

	return fmt.Errorf("no task with id %q", id)
}

// filterForFlags resolves the period/date flag pair and applies the filter.
func filterForFlags(tasks []model.Task, periodArg, dateArg string) ([]model.Task, error) {
	p, err := period.Parse(periodArg)
	if err != nil {
		return nil, err
	}

	ref, err := resolveDate(dateArg)
	if err != nil {
		return nil, err
	}

	return period.Filter(tasks, p, ref)
}

func renderStatus(s model.Status) string {
	switch s {
	case model.StatusCompleted, model.StatusInspected:
		return ui.RenderPass(string(s))
	case model.StatusInProgress:
		return ui.RenderWarn(string(s))
	default:
		return string(s)
	}
}

func statusList() string {
	names := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddFlags.date, "date", "", "job date (YYYY-MM-DD or natural language, default: today)")
	taskAddCmd.Flags().StringVar(&taskAddFlags.area, "area", "", "area name")
	taskAddCmd.Flags().StringVar(&taskAddFlags.category, "category", "", "category (default: the area's category)")
	taskAddCmd.Flags().StringVar(&taskAddFlags.job, "job", "", "job description")
	taskAddCmd.Flags().StringVar(&taskAddFlags.assignee, "assignee", "", "person assigned")
	taskAddCmd.Flags().StringVar(&taskAddFlags.status, "status", string(model.StatusPending), "status ("+statusList()+")")
	taskAddCmd.Flags().StringVar(&taskAddFlags.remarks, "remarks", "", "free-form remarks")
	taskAddCmd.Flags().StringVar(&taskAddFlags.photoBefore, "photo-before", "", "image file to embed as the before photo")
	taskAddCmd.Flags().StringVar(&taskAddFlags.photoProgress, "photo-progress", "", "image file to embed as the progress photo")
	taskAddCmd.Flags().StringVar(&taskAddFlags.photoAfter, "photo-after", "", "image file to embed as the after photo")
	taskAddCmd.Flags().BoolVarP(&taskAddFlags.interactive, "interactive", "i", false, "fill in the record with an interactive form")

	taskListCmd.Flags().StringVar(&taskListFlags.period, "period", string(period.All), "period window (daily, weekly, monthly, yearly, all)")
	taskListCmd.Flags().StringVar(&taskListFlags.date, "date", "", "reference date for the period window (default: today)")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskInspectCmd)
	rootCmd.AddCommand(taskCmd)
}
