package sync

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	gosync "sync"
	"testing"

	"github.com/tmorel/cleansync/internal/cache"
	"github.com/tmorel/cleansync/internal/model"
)

// fakeGateway is an in-memory remote store with a failure switch, so tests
// can flip between reachable and offline.
type fakeGateway struct {
	mu      gosync.Mutex
	tasks   map[string]model.Task
	areas   map[string]model.Area
	offline bool
	calls   int
}

var errOffline = errors.New("connection refused")

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tasks: make(map[string]model.Task),
		areas: make(map[string]model.Area),
	}
}

func (g *fakeGateway) setOffline(offline bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offline = offline
}

func (g *fakeGateway) check() error {
	g.calls++
	if g.offline {
		return errOffline
	}
	return nil
}

func (g *fakeGateway) ListTasks(ctx context.Context) ([]model.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (g *fakeGateway) UpsertTask(ctx context.Context, task model.Task) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return err
	}
	g.tasks[task.ID] = task
	return nil
}

func (g *fakeGateway) DeleteTask(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return err
	}
	delete(g.tasks, id)
	return nil
}

func (g *fakeGateway) ListAreas(ctx context.Context) ([]model.Area, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return nil, err
	}
	out := make([]model.Area, 0, len(g.areas))
	for _, a := range g.areas {
		out = append(out, a)
	}
	return out, nil
}

func (g *fakeGateway) UpsertArea(ctx context.Context, area model.Area) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return err
	}
	g.areas[area.Name] = area
	return nil
}

func (g *fakeGateway) DeleteArea(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(); err != nil {
		return err
	}
	delete(g.areas, name)
	return nil
}

func (g *fakeGateway) taskCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

func (g *fakeGateway) area(name string) (model.Area, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.areas[name]
	return a, ok
}

// setupService wires a Service against a real temporary cache database and
// a fake gateway; the cache tier is exercised for real, not mocked.
func setupService(t *testing.T, hooks Hooks) (*Service, *fakeGateway, *cache.DB) {
	t.Helper()

	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	gateway := newFakeGateway()
	svc := New(Config{
		Cache:  store,
		Remote: gateway,
		Logger: log.New(os.Stderr, "[test] ", 0),
		Hooks:  hooks,
	})

	return svc, gateway, store
}

func testTask(id, date, area string) model.Task {
	return model.Task{
		ID:             id,
		Date:           date,
		Area:           area,
		Category:       "Indoor",
		JobDescription: "Mop and polish floor",
		Assignee:       "Maria",
		Status:         model.StatusPending,
	}
}

func TestLoadPrefersRemoteAndRefreshesCache(t *testing.T) {
	svc, gateway, store := setupService(t, Hooks{})
	ctx := context.Background()

	gateway.tasks["task-1"] = testTask("task-1", "2024-03-12", "Lobby")

	tasks := svc.LoadTasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Fatalf("LoadTasks = %+v, want the remote task", tasks)
	}

	// The remote snapshot must now be the cache's fallback content.
	cached, err := store.Tasks(ctx)
	if err != nil {
		t.Fatalf("cache read failed: %v", err)
	}
	if len(cached) != 1 || cached[0].ID != "task-1" {
		t.Errorf("cache not refreshed from remote: %+v", cached)
	}
}

func TestLoadFallsBackToCacheWhenOffline(t *testing.T) {
	svc, gateway, store := setupService(t, Hooks{})
	ctx := context.Background()

	if err := store.ReplaceTasks(ctx, []model.Task{testTask("task-1", "2024-03-12", "Lobby")}); err != nil {
		t.Fatalf("failed to prime cache: %v", err)
	}
	gateway.setOffline(true)

	first := svc.LoadTasks(ctx)
	if len(first) != 1 || first[0].ID != "task-1" {
		t.Fatalf("offline LoadTasks = %+v, want the cached task", first)
	}

	// Stable across repeated calls with no intervening mutation.
	second := svc.LoadTasks(ctx)
	if len(second) != len(first) || second[0] != first[0] {
		t.Errorf("repeated offline loads disagree: %+v vs %+v", first, second)
	}
}

func TestLoadSeedsWhenRemoteEmptyAndCacheEmpty(t *testing.T) {
	sources := make(map[Collection]Source)
	svc, _, _ := setupService(t, Hooks{
		OnLoad: func(c Collection, source Source, count int) { sources[c] = source },
	})
	ctx := context.Background()

	// Remote reachable but empty, cache empty: seed collection, not an
	// empty one.
	areas := svc.LoadAreas(ctx)
	if len(areas) == 0 {
		t.Fatal("LoadAreas returned an empty collection instead of the seed")
	}
	if sources[CollectionAreas] != SourceSeed {
		t.Errorf("area load source = %q, want %q", sources[CollectionAreas], SourceSeed)
	}

	// The built-in task seed is deliberately empty: first run starts with
	// the seeded areas and zero job records.
	tasks := svc.LoadTasks(ctx)
	if tasks == nil {
		t.Fatal("LoadTasks returned nil, want an empty collection")
	}
	if len(tasks) != 0 {
		t.Errorf("first-run LoadTasks = %+v, want no records", tasks)
	}
	if sources[CollectionTasks] != SourceSeed {
		t.Errorf("task load source = %q, want %q", sources[CollectionTasks], SourceSeed)
	}
}

func TestLoadNeverFailsWhenEverythingIsDown(t *testing.T) {
	svc, gateway, _ := setupService(t, Hooks{})
	gateway.setOffline(true)

	tasks, areas := svc.Load(context.Background())
	if tasks == nil {
		t.Error("Load returned nil tasks with remote down")
	}
	if len(areas) == 0 {
		t.Error("Load returned no areas with remote down, want seed")
	}
}

func TestUpsertTaskIsOptimisticAndPropagates(t *testing.T) {
	svc, gateway, _ := setupService(t, Hooks{})
	ctx := context.Background()

	task := testTask("task-1", "2024-03-12", "Lobby")
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}

	// Visible synchronously, before propagation settles.
	if got := svc.TasksSnapshot(); len(got) != 1 || got[0].ID != "task-1" {
		t.Fatalf("task not visible after upsert: %+v", got)
	}

	svc.Flush()
	if gateway.taskCount() != 1 {
		t.Errorf("remote has %d tasks after flush, want 1", gateway.taskCount())
	}

	// Round-trip: a load with the remote reachable reflects the record.
	tasks := svc.LoadTasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Errorf("LoadTasks after upsert = %+v", tasks)
	}
}

func TestUpsertTaskIdempotent(t *testing.T) {
	svc, _, _ := setupService(t, Hooks{})
	ctx := context.Background()

	task := testTask("task-1", "2024-03-12", "Lobby")
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("first UpsertTask failed: %v", err)
	}
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("second UpsertTask failed: %v", err)
	}

	got := svc.TasksSnapshot()
	if len(got) != 1 {
		t.Fatalf("collection has %d entries after duplicate upsert, want 1", len(got))
	}
	if got[0] != task {
		t.Errorf("entry mutated by duplicate upsert:\n got %+v\nwant %+v", got[0], task)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	svc, _, _ := setupService(t, Hooks{})
	ctx := context.Background()

	task := testTask("task-1", "2024-03-12", "Lobby")
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}

	task.Status = model.StatusCompleted
	task.Remarks = "all done"
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("replacement UpsertTask failed: %v", err)
	}

	got := svc.TasksSnapshot()
	if len(got) != 1 || got[0].Status != model.StatusCompleted || got[0].Remarks != "all done" {
		t.Errorf("replacement not applied: %+v", got)
	}
}

func TestUpsertRejectsInvalidTask(t *testing.T) {
	svc, _, _ := setupService(t, Hooks{})

	if err := svc.UpsertTask(context.Background(), model.Task{ID: "x"}); err == nil {
		t.Error("UpsertTask accepted an invalid task")
	}
	if len(svc.TasksSnapshot()) != 0 {
		t.Error("invalid task was applied")
	}
}

func TestOfflineMutationStandsLocally(t *testing.T) {
	var propagated []error
	var mu gosync.Mutex

	svc, gateway, store := setupService(t, Hooks{
		OnPropagate: func(c Collection, op Op, key string, err error) {
			mu.Lock()
			propagated = append(propagated, err)
			mu.Unlock()
		},
	})
	ctx := context.Background()

	gateway.setOffline(true)

	task := testTask("task-1", "2024-03-12", "Lobby")
	if err := svc.UpsertTask(ctx, task); err != nil {
		t.Fatalf("UpsertTask failed while offline: %v", err)
	}
	svc.Flush()

	// Local change stands despite the failed propagation.
	if got := svc.TasksSnapshot(); len(got) != 1 {
		t.Fatalf("offline upsert reverted: %+v", got)
	}

	// The failure is visible on the hook, nowhere else.
	mu.Lock()
	defer mu.Unlock()
	if len(propagated) != 1 || propagated[0] == nil {
		t.Errorf("propagation outcome not reported: %v", propagated)
	}

	// And the cache snapshot carries the change, so a restart while still
	// offline sees it.
	cached, err := store.Tasks(ctx)
	if err != nil {
		t.Fatalf("cache read failed: %v", err)
	}
	if len(cached) != 1 || cached[0].ID != "task-1" {
		t.Errorf("offline mutation missing from cache: %+v", cached)
	}
}

func TestDeleteTask(t *testing.T) {
	svc, gateway, _ := setupService(t, Hooks{})
	ctx := context.Background()

	if err := svc.UpsertTask(ctx, testTask("task-1", "2024-03-12", "Lobby")); err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}
	svc.Flush()

	svc.DeleteTask(ctx, "task-1")
	if len(svc.TasksSnapshot()) != 0 {
		t.Error("task still present after delete")
	}

	svc.Flush()
	if gateway.taskCount() != 0 {
		t.Errorf("remote still has %d tasks after delete", gateway.taskCount())
	}
}

func TestAreaExistsGuard(t *testing.T) {
	svc, _, _ := setupService(t, Hooks{})
	ctx := context.Background()

	if err := svc.UpsertArea(ctx, model.Area{Name: "Lobby", Category: "Indoor"}); err != nil {
		t.Fatalf("UpsertArea failed: %v", err)
	}

	if !svc.AreaExists("Lobby") {
		t.Error("AreaExists missed an existing area")
	}
	if svc.AreaExists("Garden") {
		t.Error("AreaExists reported a missing area")
	}
}

func TestRenameAreaCascades(t *testing.T) {
	svc, gateway, _ := setupService(t, Hooks{})
	ctx := context.Background()

	if err := svc.UpsertArea(ctx, model.Area{Name: "Lobby", Category: "Indoor"}); err != nil {
		t.Fatalf("UpsertArea failed: %v", err)
	}
	for _, id := range []string{"task-1", "task-2"} {
		if err := svc.UpsertTask(ctx, testTask(id, "2024-03-12", "Lobby")); err != nil {
			t.Fatalf("UpsertTask failed: %v", err)
		}
	}
	if err := svc.UpsertTask(ctx, testTask("task-3", "2024-03-12", "Garden")); err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}
	svc.Flush()

	rewritten, err := svc.RenameArea(ctx, "Lobby", model.Area{Name: "Main Lobby", Category: "Public"})
	if err != nil {
		t.Fatalf("RenameArea failed: %v", err)
	}
	if rewritten != 2 {
		t.Errorf("RenameArea rewrote %d tasks, want 2", rewritten)
	}

	for _, task := range svc.TasksSnapshot() {
		if task.Area == "Lobby" {
			t.Errorf("task %s still carries the old area name", task.ID)
		}
		if task.ID == "task-1" || task.ID == "task-2" {
			if task.Area != "Main Lobby" || task.Category != "Public" {
				t.Errorf("task %s not cascaded: area=%q category=%q", task.ID, task.Area, task.Category)
			}
		}
		if task.ID == "task-3" && task.Area != "Garden" {
			t.Errorf("unrelated task rewritten: %+v", task)
		}
	}

	// Remote tier sees delete(old) + upsert(new).
	svc.Flush()
	if _, ok := gateway.area("Lobby"); ok {
		t.Error("remote still has the old area after rename")
	}
	if a, ok := gateway.area("Main Lobby"); !ok || a.Category != "Public" {
		t.Errorf("remote missing the renamed area: %+v", a)
	}
}

func TestRenameAreaUnknown(t *testing.T) {
	svc, _, _ := setupService(t, Hooks{})

	_, err := svc.RenameArea(context.Background(), "Atrium", model.Area{Name: "Hall", Category: "Indoor"})
	var unknown *UnknownAreaError
	if !errors.As(err, &unknown) {
		t.Errorf("RenameArea error = %v, want UnknownAreaError", err)
	}
}

func TestSeedOverride(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	defer store.Close()

	gateway := newFakeGateway()
	gateway.setOffline(true)

	svc := New(Config{
		Cache:     store,
		Remote:    gateway,
		Logger:    log.New(os.Stderr, "[test] ", 0),
		SeedAreas: []model.Area{{Name: "Warehouse", Category: "Industrial"}},
	})

	areas := svc.LoadAreas(context.Background())
	if len(areas) != 1 || areas[0].Name != "Warehouse" {
		t.Errorf("seed override not used: %+v", areas)
	}
}
