// Package sync keeps the in-memory task and area collections consistent
// with a durable local cache and a best-effort remote record store.
//
// The service owns the authoritative copies for the running session. Loads
// read through to the remote store and degrade to the local cache, then to
// built-in seeds; they never fail. Mutations apply locally first and
// propagate to the remote store from a detached goroutine whose outcome
// only surfaces through the log and the observability hooks. This is a
// deliberate availability-over-consistency tradeoff: a mutation issued
// while offline stands locally and its remote counterpart is simply lost
// until a later mutation for the same record succeeds.
package sync

import (
	"context"
	"log"
	"os"
	gosync "sync"

	"github.com/tmorel/cleansync/internal/model"
)

// Gateway is the remote record store consumed by the service. Each call is
// an independent network request that may fail; the service never retries.
type Gateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpsertTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListAreas(ctx context.Context) ([]model.Area, error)
	UpsertArea(ctx context.Context, area model.Area) error
	DeleteArea(ctx context.Context, name string) error
}

// Cache is the durable local replica consumed by the service. Snapshots
// are replaced whole, one slot per collection.
type Cache interface {
	Tasks(ctx context.Context) ([]model.Task, error)
	ReplaceTasks(ctx context.Context, tasks []model.Task) error
	Areas(ctx context.Context) ([]model.Area, error)
	ReplaceAreas(ctx context.Context, areas []model.Area) error
}

// Config wires the service's collaborators. Constructed once at startup and
// passed to New; the service holds no package-level state.
type Config struct {
	Cache  Cache
	Remote Gateway

	// Logger receives degradation and propagation reports. If nil, a
	// default logger writing to stderr is used.
	Logger *log.Logger

	// Hooks are optional observability callbacks.
	Hooks Hooks

	// SeedTasks and SeedAreas are returned by loads when both the remote
	// store and the cache come up empty. If nil, the built-in defaults
	// from the model package are used.
	SeedTasks []model.Task
	SeedAreas []model.Area
}

// Service orchestrates the two storage tiers. Safe for concurrent use: the
// CLI, inbox daemon, and dashboard may share one instance in-process, though
// the system as a whole assumes a single writer at a time.
type Service struct {
	cache  Cache
	remote Gateway
	logger *log.Logger
	hooks  Hooks

	seedTasks []model.Task
	seedAreas []model.Area

	mu    gosync.Mutex
	tasks []model.Task
	areas []model.Area

	propagations gosync.WaitGroup
}

// New creates a Service from the given wiring.
//
// Example:
//
//	store, err := cache.Open(".cleansync/cache.db")
//	if err != nil {
//	    return err
//	}
//	gateway, err := remote.New(remote.Config{BaseURL: cfg.RemoteURL})
//	if err != nil {
//	    return err
//	}
//	svc := sync.New(sync.Config{Cache: store, Remote: gateway})
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}

	seedTasks := cfg.SeedTasks
	if seedTasks == nil {
		seedTasks = model.SeedTasks()
	}
	seedAreas := cfg.SeedAreas
	if seedAreas == nil {
		seedAreas = model.SeedAreas()
	}

	return &Service{
		cache:     cfg.Cache,
		remote:    cfg.Remote,
		logger:    logger,
		hooks:     cfg.Hooks,
		seedTasks: seedTasks,
		seedAreas: seedAreas,
	}
}

// LoadTasks refreshes the in-memory task collection and returns it.
//
// A non-empty remote list is authoritative: it overwrites the cache snapshot
// so the most recent known-good remote state becomes the fallback for the
// next offline load. Remote failure and remote emptiness both degrade to
// the cache, then to the seed collection. Never returns an error.
func (s *Service) LoadTasks(ctx context.Context) []model.Task {
	remoteTasks, err := s.remote.ListTasks(ctx)
	switch {
	case err != nil:
		s.logger.Printf("remote task list unavailable, falling back to cache: %v", err)
	case len(remoteTasks) == 0:
		s.logger.Printf("remote task list empty, falling back to cache")
	default:
		if err := s.cache.ReplaceTasks(ctx, remoteTasks); err != nil {
			s.logger.Printf("WARNING: failed to refresh task cache: %v", err)
		}
		s.setTasks(remoteTasks)
		s.hooks.load(CollectionTasks, SourceRemote, len(remoteTasks))
		return s.TasksSnapshot()
	}

	cached, err := s.cache.Tasks(ctx)
	if err != nil {
		s.logger.Printf("WARNING: task cache unreadable, using seed collection: %v", err)
		cached = nil
	}

	source := SourceCache
	if len(cached) == 0 {
		cached = cloneTasks(s.seedTasks)
		source = SourceSeed
	}

	s.setTasks(cached)
	s.hooks.load(CollectionTasks, source, len(cached))
	return s.TasksSnapshot()
}

// LoadAreas refreshes the in-memory area collection and returns it.
// Same degradation ladder as LoadTasks.
func (s *Service) LoadAreas(ctx context.Context) []model.Area {
	remoteAreas, err := s.remote.ListAreas(ctx)
	switch {
	case err != nil:
		s.logger.Printf("remote area list unavailable, falling back to cache: %v", err)
	case len(remoteAreas) == 0:
		s.logger.Printf("remote area list empty, falling back to cache")
	default:
		if err := s.cache.ReplaceAreas(ctx, remoteAreas); err != nil {
			s.logger.Printf("WARNING: failed to refresh area cache: %v", err)
		}
		s.setAreas(remoteAreas)
		s.hooks.load(CollectionAreas, SourceRemote, len(remoteAreas))
		return s.AreasSnapshot()
	}

	cached, err := s.cache.Areas(ctx)
	if err != nil {
		s.logger.Printf("WARNING: area cache unreadable, using seed collection: %v", err)
		cached = nil
	}

	source := SourceCache
	if len(cached) == 0 {
		cached = cloneAreas(s.seedAreas)
		source = SourceSeed
	}

	s.setAreas(cached)
	s.hooks.load(CollectionAreas, source, len(cached))
	return s.AreasSnapshot()
}

// Load refreshes both collections. Called once at startup.
func (s *Service) Load(ctx context.Context) (tasks []model.Task, areas []model.Area) {
	return s.LoadTasks(ctx), s.LoadAreas(ctx)
}

// TasksSnapshot returns a copy of the in-memory task collection.
func (s *Service) TasksSnapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// AreasSnapshot returns a copy of the in-memory area collection.
func (s *Service) AreasSnapshot() []model.Area {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAreas(s.areas)
}

// AreaExists reports whether an area with the given name is present in the
// in-memory collection. Callers use this as the duplicate-name guard before
// inserting a new area; the storage tiers do not enforce it.
func (s *Service) AreaExists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.areas {
		if s.areas[i].Name == name {
			return true
		}
	}
	return false
}

// UpsertTask applies the task to the in-memory collection (insert if the ID
// is new, full replacement if it exists), persists the cache snapshot, and
// propagates to the remote store without blocking. The caller observes the
// local change synchronously; remote failure is logged, never reverted.
func (s *Service) UpsertTask(ctx context.Context, task model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		s.tasks = append(s.tasks, task)
	}
	snapshot := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.persistTasks(ctx, snapshot)
	s.hooks.mutation(CollectionTasks, OpUpsert, task.ID)

	s.detach(func(ctx context.Context) {
		err := s.remote.UpsertTask(ctx, task)
		s.reportPropagation(CollectionTasks, OpUpsert, task.ID, err)
	})

	return nil
}

// DeleteTask removes the task from the in-memory collection synchronously
// and attempts remote deletion without blocking. Deleting an unknown ID is
// a no-op locally and still propagated (remote deletion is idempotent).
func (s *Service) DeleteTask(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	snapshot := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.persistTasks(ctx, snapshot)
	s.hooks.mutation(CollectionTasks, OpDelete, id)

	s.detach(func(ctx context.Context) {
		err := s.remote.DeleteTask(ctx, id)
		s.reportPropagation(CollectionTasks, OpDelete, id, err)
	})
}

// UpsertArea applies the area to the in-memory collection and propagates it.
// Duplicate-name policing for brand-new areas is the caller's job, via
// AreaExists; an upsert under an existing name is a legitimate edit.
func (s *Service) UpsertArea(ctx context.Context, area model.Area) error {
	if err := area.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.areas {
		if s.areas[i].Name == area.Name {
			s.areas[i] = area
			replaced = true
			break
		}
	}
	if !replaced {
		s.areas = append(s.areas, area)
	}
	snapshot := cloneAreas(s.areas)
	s.mu.Unlock()

	s.persistAreas(ctx, snapshot)
	s.hooks.mutation(CollectionAreas, OpUpsert, area.Name)

	s.detach(func(ctx context.Context) {
		err := s.remote.UpsertArea(ctx, area)
		s.reportPropagation(CollectionAreas, OpUpsert, area.Name, err)
	})

	return nil
}

// DeleteArea removes the area from the in-memory collection and attempts
// remote deletion. Tasks still referencing the deleted name keep it; the
// system accepts that dangling reference rather than cascading deletes.
func (s *Service) DeleteArea(ctx context.Context, name string) {
	s.mu.Lock()
	kept := s.areas[:0]
	for _, a := range s.areas {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	s.areas = kept
	snapshot := cloneAreas(s.areas)
	s.mu.Unlock()

	s.persistAreas(ctx, snapshot)
	s.hooks.mutation(CollectionAreas, OpDelete, name)

	s.detach(func(ctx context.Context) {
		err := s.remote.DeleteArea(ctx, name)
		s.reportPropagation(CollectionAreas, OpDelete, name, err)
	})
}

// RenameArea replaces the area stored under oldName with renamed and
// cascades the new name and category onto every task that referenced
// oldName, all in the same synchronous step. Returns the number of tasks
// rewritten.
//
// The remote store has no atomic rename, so the remote tier sees a
// delete(oldName), an upsert(renamed), and one upsert per rewritten task,
// each fire-and-forget.
func (s *Service) RenameArea(ctx context.Context, oldName string, renamed model.Area) (int, error) {
	if err := renamed.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	found := false
	for i := range s.areas {
		if s.areas[i].Name == oldName {
			s.areas[i] = renamed
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return 0, &UnknownAreaError{Name: oldName}
	}

	var rewritten []model.Task
	for i := range s.tasks {
		if s.tasks[i].Area == oldName {
			s.tasks[i].Area = renamed.Name
			s.tasks[i].Category = renamed.Category
			rewritten = append(rewritten, s.tasks[i])
		}
	}

	taskSnapshot := cloneTasks(s.tasks)
	areaSnapshot := cloneAreas(s.areas)
	s.mu.Unlock()

	s.persistAreas(ctx, areaSnapshot)
	s.persistTasks(ctx, taskSnapshot)
	s.hooks.mutation(CollectionAreas, OpUpsert, renamed.Name)

	s.detach(func(ctx context.Context) {
		err := s.remote.DeleteArea(ctx, oldName)
		s.reportPropagation(CollectionAreas, OpDelete, oldName, err)

		err = s.remote.UpsertArea(ctx, renamed)
		s.reportPropagation(CollectionAreas, OpUpsert, renamed.Name, err)

		for _, t := range rewritten {
			err := s.remote.UpsertTask(ctx, t)
			s.reportPropagation(CollectionTasks, OpUpsert, t.ID, err)
		}
	})

	return len(rewritten), nil
}

// Flush blocks until all in-flight remote propagations have finished. Used
// by tests and graceful shutdown; mutations themselves never wait on it.
// A process teardown that skips Flush simply drops whatever is in flight.
func (s *Service) Flush() {
	s.propagations.Wait()
}

// detach runs fn on a background goroutine with a fresh context. The
// propagation deliberately outlives the caller's context: the mutation has
// already been applied locally, so cancelling the caller must not cancel
// the remote write.
func (s *Service) detach(fn func(ctx context.Context)) {
	s.propagations.Add(1)
	go func() {
		defer s.propagations.Done()
		fn(context.Background())
	}()
}

func (s *Service) reportPropagation(c Collection, op Op, key string, err error) {
	if err != nil {
		s.logger.Printf("WARNING: remote %s of %s %q failed (local change stands): %v", op, c, key, err)
	} else {
		s.logger.Printf("Propagated %s of %s %q", op, c, key)
	}
	s.hooks.propagate(c, op, key, err)
}

// persistTasks writes the task snapshot to the cache so the latest local
// state survives a restart while offline. Cache trouble is logged, never
// surfaced.
func (s *Service) persistTasks(ctx context.Context, tasks []model.Task) {
	if err := s.cache.ReplaceTasks(ctx, tasks); err != nil {
		s.logger.Printf("WARNING: failed to persist task snapshot: %v", err)
	}
}

func (s *Service) persistAreas(ctx context.Context, areas []model.Area) {
	if err := s.cache.ReplaceAreas(ctx, areas); err != nil {
		s.logger.Printf("WARNING: failed to persist area snapshot: %v", err)
	}
}

func (s *Service) setTasks(tasks []model.Task) {
	s.mu.Lock()
	s.tasks = cloneTasks(tasks)
	s.mu.Unlock()
}

func (s *Service) setAreas(areas []model.Area) {
	s.mu.Lock()
	s.areas = cloneAreas(areas)
	s.mu.Unlock()
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func cloneAreas(areas []model.Area) []model.Area {
	out := make([]model.Area, len(areas))
	copy(out, areas)
	return out
}
