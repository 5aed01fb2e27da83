package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/model"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
	"github.com/tmorel/cleansync/internal/ui"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Manage named areas",
}

var areaAddCmd = &cobra.Command{
	Use:   "add <name> <category>",
	Short: "Add a new area",
	Long: `Add a new area.

Area names are unique; adding a name that already exists is rejected here,
before the storage layers ever see it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		app.svc.Load(ctx)

		name, category := args[0], args[1]
		if app.svc.AreaExists(name) {
			return fmt.Errorf("area %q already exists", name)
		}

		if err := app.svc.UpsertArea(ctx, model.Area{Name: name, Category: category}); err != nil {
			return err
		}

		fmt.Printf("%s Added area %s (%s)\n", ui.RenderPass("✓"), name, category)
		return nil
	},
}

var areaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		areas := app.svc.LoadAreas(cmd.Context())
		if len(areas) == 0 {
			fmt.Println("No areas.")
			return nil
		}

		fmt.Printf("%-20s  %s\n", "NAME", "CATEGORY")
		for _, a := range areas {
			fmt.Printf("%-20s  %s\n", a.Name, a.Category)
		}
		return nil
	},
}

var areaRenameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name> <new-category>",
	Short: "Rename an area, cascading onto its job records",
	Long: `Rename an area and update its category.

Every job record referencing the old name is rewritten to the new name and
category in the same step. The remote store has no rename primitive, so it
sees a delete of the old name plus upserts of the new area and each
rewritten record.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		app.svc.Load(ctx)

		oldName := args[0]
		renamed := model.Area{Name: args[1], Category: args[2]}

		if oldName != renamed.Name && app.svc.AreaExists(renamed.Name) {
			return fmt.Errorf("area %q already exists", renamed.Name)
		}

		rewritten, err := app.svc.RenameArea(ctx, oldName, renamed)
		if err != nil {
			return err
		}

		fmt.Printf("%s Renamed %s to %s (%s), rewrote %d record(s)\n",
			ui.RenderPass("✓"), oldName, renamed.Name, renamed.Category, rewritten)
		return nil
	},
}

var areaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an area",
	Long: `Delete an area.

Job records referencing the area keep the old name; the tool accepts that
dangling reference rather than deleting history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		app.svc.Load(ctx)
		app.svc.DeleteArea(ctx, args[0])

		fmt.Printf("%s Deleted area %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

func init() {
	areaCmd.AddCommand(areaAddCmd)
	areaCmd.AddCommand(areaListCmd)
	areaCmd.AddCommand(areaRenameCmd)
	areaCmd.AddCommand(areaDeleteCmd)
	rootCmd.AddCommand(areaCmd)
}
