package remote

import (
	"context"
	"errors"

	"github.com/tmorel/cleansync/internal/model"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("no remote store configured")

// Disabled is a gateway stand-in for deployments with no remote store
// configured. Every call fails with ErrNotConfigured; the synchronization
// layer degrades around it, so the tool runs fully local.
type Disabled struct{}

func (Disabled) ListTasks(ctx context.Context) ([]model.Task, error) {
	return nil, ErrNotConfigured
}

func (Disabled) UpsertTask(ctx context.Context, task model.Task) error {
	return ErrNotConfigured
}

func (Disabled) DeleteTask(ctx context.Context, id string) error {
	return ErrNotConfigured
}

func (Disabled) ListAreas(ctx context.Context) ([]model.Area, error) {
	return nil, ErrNotConfigured
}

func (Disabled) UpsertArea(ctx context.Context, area model.Area) error {
	return ErrNotConfigured
}

func (Disabled) DeleteArea(ctx context.Context, name string) error {
	return ErrNotConfigured
}
