package sync

// Collection identifies which of the two record collections an event
// concerns.
type Collection string

const (
	CollectionTasks Collection = "tasks"
	CollectionAreas Collection = "areas"
)

// Op identifies the kind of mutation propagated to the remote store.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Source identifies where a load ultimately got its data from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceSeed   Source = "seed"
)

// Hooks carries optional observability callbacks. The outcome of a
// detached remote propagation is visible only here and in the log; it is
// never part of a mutation's return value.
//
// Callbacks may be invoked from the propagation goroutine and must be safe
// for concurrent use. Nil callbacks are skipped.
type Hooks struct {
	// OnMutation fires after a local mutation has been applied to the
	// in-memory collection, before remote propagation starts.
	OnMutation func(c Collection, op Op, key string)

	// OnPropagate fires when a detached remote propagation finishes,
	// with a nil err on success.
	OnPropagate func(c Collection, op Op, key string, err error)

	// OnLoad fires after a collection load resolves, reporting which
	// tier answered and how many records it carried.
	OnLoad func(c Collection, source Source, count int)
}

func (h Hooks) mutation(c Collection, op Op, key string) {
	if h.OnMutation != nil {
		h.OnMutation(c, op, key)
	}
}

func (h Hooks) propagate(c Collection, op Op, key string, err error) {
	if h.OnPropagate != nil {
		h.OnPropagate(c, op, key, err)
	}
}

func (h Hooks) load(c Collection, source Source, count int) {
	if h.OnLoad != nil {
		h.OnLoad(c, source, count)
	}
}
