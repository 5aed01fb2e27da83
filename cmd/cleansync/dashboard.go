package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/config"
	"github.com/tmorel/cleansync/internal/daemon"
	"github.com/tmorel/cleansync/internal/dashboard"
	"github.com/tmorel/cleansync/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve a real-time WebSocket feed of record and sync activity",
	Long: `Start the WebSocket dashboard server and the inbox ingest daemon.

The dashboard broadcasts every local mutation, every collection load (with
the tier that answered: remote, cache, or seed), and the outcome of every
background remote propagation. This is the only place a propagation failure
is visible; mutations themselves never report it.

WebSocket messages:
  task_update   task upserted or deleted
  area_update   area upserted, deleted, or renamed
  propagation   background remote write finished (ok or failed)
  load          collection load resolved (remote, cache, or seed)
  stats         task statistics snapshot

Connect with a WebSocket client:
  ws://localhost:8080/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		port := cfg.DashboardPort
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		logger := cfg.Logger("[dashboard] ")
		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		handler := dashboard.NewHandler(server, logger)

		app, err := newApp(handler.Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := server.Start(); err != nil {
			return err
		}

		fmt.Printf("%s Dashboard on http://localhost:%d (ws://localhost:%d/ws)\n",
			ui.RenderAccent("📊"), port, port)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		tasks, _ := app.svc.Load(ctx)
		handler.BroadcastStats(tasks)

		d, err := daemon.New(app.svc, app.cfg.InboxDir, app.cfg.Logger("[daemon] "))
		if err != nil {
			_ = server.Stop()
			return err
		}

		if err := d.Start(ctx); err != nil {
			_ = server.Stop()
			return err
		}

		fmt.Println("\nShutting down dashboard server...")
		if err := server.Stop(); err != nil {
			return err
		}

		fmt.Printf("%s Dashboard stopped\n", ui.RenderPass("✓"))
		return nil
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	rootCmd.AddCommand(dashboardCmd)
}
