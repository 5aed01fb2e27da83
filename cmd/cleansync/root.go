package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/cache"
	"github.com/tmorel/cleansync/internal/config"
	"github.com/tmorel/cleansync/internal/model"
	"github.com/tmorel/cleansync/internal/remote"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cleansync",
	Short: "Local-first record keeper for recurring cleaning jobs",
	Long: `cleansync keeps records of recurring cleaning jobs tied to named areas.

Records live in an authoritative remote store when one is configured, with a
local SQLite cache that keeps every command working while the remote is
unreachable. Mutations apply locally first and propagate to the remote in
the background; a failed propagation never blocks or reverts your change.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cleansync.yaml)")
}

// app bundles the wired collaborators a command needs. Built per
// invocation; there are no package-level storage handles.
type app struct {
	cfg   *config.Config
	store *cache.DB
	svc   *syncsvc.Service
}

// newApp loads configuration and wires the cache, gateway, and sync
// service. hooks may be zero for commands with no observability surface.
func newApp(hooks syncsvc.Hooks) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, err
	}

	var gateway syncsvc.Gateway
	if cfg.RemoteURL != "" {
		gateway, err = remote.New(remote.Config{
			BaseURL: cfg.RemoteURL,
			Token:   cfg.RemoteToken,
			Timeout: cfg.RemoteTimeout,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	} else {
		gateway = remote.Disabled{}
	}

	var seedTasks []model.Task
	var seedAreas []model.Area
	if cfg.SeedFile != "" {
		seedTasks, seedAreas, err = model.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	svc := syncsvc.New(syncsvc.Config{
		Cache:     store,
		Remote:    gateway,
		Logger:    cfg.Logger("[sync] "),
		Hooks:     hooks,
		SeedTasks: seedTasks,
		SeedAreas: seedAreas,
	})

	return &app{cfg: cfg, store: store, svc: svc}, nil
}

// Close drains in-flight propagations and releases the cache. Best effort:
// a teardown that skips this simply drops whatever was in flight.
func (a *app) Close() {
	a.svc.Flush()
	if err := a.store.Close(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
}
