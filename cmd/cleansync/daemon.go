package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/daemon"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
	"github.com/tmorel/cleansync/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch the inbox directory and ingest dropped task files",
	Long: `Run the inbox ingest daemon in the foreground.

Task JSON files dropped into the inbox directory (inbox.dir in the config)
are validated, applied through the synchronization service, and moved to
archive/ on success or rejected/ on failure. Files already in the inbox are
swept at startup.

Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		app.svc.Load(ctx)

		d, err := daemon.New(app.svc, app.cfg.InboxDir, app.cfg.Logger("[daemon] "))
		if err != nil {
			return err
		}

		fmt.Printf("%s Watching inbox %s (Ctrl+C to stop)\n", ui.RenderAccent("👀"), app.cfg.InboxDir)

		if err := d.Start(ctx); err != nil {
			return err
		}

		ingested, rejected := d.Stats()
		fmt.Printf("%s Daemon stopped: ingested=%d rejected=%d\n", ui.RenderPass("✓"), ingested, rejected)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
