package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danielsv/farmaq/internal/remote"
)

// Result is the outcome of a Submit call.
type Result string

const (
	// ResultApplied means the remote service accepted the write
	// immediately; no queue entry was created.
	ResultApplied Result = "applied"
	// ResultQueued means the intent was appended to the durable pending
	// sequence for a later drain.
	ResultQueued Result = "queued"
	// ResultRejected means the write can never succeed as submitted
	// (invalid operation, payload shape, or a permanent remote
	// rejection) and was not queued.
	ResultRejected Result = "rejected"
)

// Storage is the durable string-keyed store the queue persists into.
// kvstore.Store and kvstore.Memory both satisfy it.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ConnectivitySource reports the believed network state and notifies on
// transitions. connectivity.Monitor satisfies it.
type ConnectivitySource interface {
	Online() bool
	OnChange(fn func(online bool))
}

// ValidateFunc checks a payload against the target table's shape before
// the intent is applied or queued. schema.Registry.Validate satisfies it.
type ValidateFunc func(table, op string, payload map[string]any) error

// Options configures a Queue. Remote and Storage are required; everything
// else has a default.
type Options struct {
	// Remote applies mutations to the hosted data service.
	Remote remote.Service

	// Storage persists the pending sequence.
	Storage Storage

	// StorageKey is the well-known key the sequence lives under.
	// Defaults to "outbox.pending".
	StorageKey string

	// Connectivity, when set, provides the initial online state and
	// drives automatic drains on the restored signal.
	Connectivity ConnectivitySource

	// Validate, when set, rejects malformed payloads at submit time.
	Validate ValidateFunc

	// Logger receives queue events. Defaults to a disabled logger.
	Logger *zerolog.Logger

	// Now supplies intent timestamps. Defaults to time.Now in UTC.
	Now func() time.Time

	// NewID supplies intent ids. Defaults to uuid.NewString.
	NewID func() string

	// OnStorageError, when set, is called with every storage read/write
	// failure the queue swallowed. Storage failures are never raised to
	// callers; this is the diagnostic surface for them.
	OnStorageError func(err error)
}

// Stats summarizes one drain pass.
type Stats struct {
	// Attempted is the size of the snapshot the pass worked through.
	Attempted int
	// Applied is how many intents the remote service accepted.
	Applied int
	// Retained is how many intents stay pending for a future drain.
	Retained int
}

// Queue is the offline mutation queue.
//
// A single mutex serializes Submit, Drain, and Clear: every
// read-modify-persist of the pending sequence runs to completion before
// the next begins. The connectivity flag is independent of the mutex and
// may flip at any time; each operation reads the flag once at its start.
type Queue struct {
	remote         remote.Service
	storage        Storage
	storageKey     string
	validate       ValidateFunc
	log            zerolog.Logger
	now            func() time.Time
	newID          func() string
	onStorageError func(error)

	online atomic.Bool

	mu      sync.Mutex
	pending []Intent
}

// Open constructs a Queue and loads any previously persisted pending
// intents. A storage read failure or a corrupt persisted sequence starts
// the queue empty: the failure is logged and reported through
// OnStorageError, never returned. Open returns an error only for a
// misconfigured Options.
func Open(ctx context.Context, opts Options) (*Queue, error) {
	if opts.Remote == nil {
		return nil, fmt.Errorf("outbox: Options.Remote is required")
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("outbox: Options.Storage is required")
	}

	q := &Queue{
		remote:         opts.Remote,
		storage:        opts.Storage,
		storageKey:     opts.StorageKey,
		validate:       opts.Validate,
		now:            opts.Now,
		newID:          opts.NewID,
		onStorageError: opts.OnStorageError,
	}
	if q.storageKey == "" {
		q.storageKey = "outbox.pending"
	}
	if opts.Logger != nil {
		q.log = *opts.Logger
	} else {
		q.log = zerolog.Nop()
	}
	if q.now == nil {
		q.now = func() time.Time { return time.Now().UTC() }
	}
	if q.newID == nil {
		q.newID = uuid.NewString
	}

	q.load(ctx)

	if opts.Connectivity != nil {
		q.online.Store(opts.Connectivity.Online())
		opts.Connectivity.OnChange(func(online bool) {
			q.SetOnline(online)
			if online {
				q.Drain(context.Background())
			}
		})
	}

	return q, nil
}

// load restores the persisted pending sequence into memory.
func (q *Queue) load(ctx context.Context) {
	raw, ok, err := q.storage.Get(ctx, q.storageKey)
	if err != nil {
		q.storageFailure("read persisted queue", err)
		return
	}
	if !ok {
		return
	}

	intents, err := decodeIntents(raw)
	if err != nil {
		q.storageFailure("decode persisted queue", err)
		return
	}

	q.pending = intents
	if len(intents) > 0 {
		q.log.Info().Int("pending", len(intents)).Msg("restored pending mutations")
	}
}

// Submit requests one remote write.
//
// When the client believes it is online, the write is attempted
// immediately; on success nothing is queued. A transient failure (network
// trouble, server-side errors) demotes the write to the pending sequence
// and reports ResultQueued with a nil error. A permanent rejection, one
// the service would repeat identically on every retry, reports
// ResultRejected with the error; queuing it would wedge the queue head
// forever.
//
// When the client believes it is offline, the intent is appended to the
// durable pending sequence without touching the network.
func (q *Queue) Submit(ctx context.Context, table string, op Op, payload map[string]any) (Result, error) {
	if table == "" {
		return ResultRejected, fmt.Errorf("outbox: table is required")
	}
	if !op.Valid() {
		return ResultRejected, fmt.Errorf("outbox: unsupported operation %q", op)
	}

	payload = normalizePayload(payload)

	if op == OpUpdate || op == OpDelete {
		if _, ok := payload["id"]; !ok {
			return ResultRejected, fmt.Errorf("outbox: %s on %s: payload must carry the id of the row to affect", op, table)
		}
	}
	if q.validate != nil {
		if err := q.validate(table, string(op), payload); err != nil {
			return ResultRejected, err
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.online.Load() {
		err := q.apply(ctx, table, op, payload)
		if err == nil {
			q.log.Debug().Str("table", table).Str("op", string(op)).Msg("applied immediately")
			return ResultApplied, nil
		}
		if !remote.IsTransient(err) {
			q.log.Error().Str("table", table).Str("op", string(op)).Err(err).Msg("permanent rejection, not queuing")
			return ResultRejected, err
		}
		q.log.Warn().Str("table", table).Str("op", string(op)).Err(err).Msg("immediate attempt failed, queuing")
	}

	intent := Intent{
		ID:        q.newID(),
		Table:     table,
		Op:        op,
		Payload:   payload,
		CreatedAt: q.now(),
	}
	q.pending = append(q.pending, intent)
	q.persistLocked(ctx)

	q.log.Info().Str("intent", intent.ID).Str("table", table).
		Str("op", string(op)).Int("pending", len(q.pending)).Msg("mutation queued")
	return ResultQueued, nil
}

// Drain attempts to apply every pending intent to the remote service, in
// insertion order, and removes the ones that succeed.
//
// A no-op when the client believes it is offline or nothing is pending:
// no remote calls, no storage write. A failed intent is left in place for
// a future drain and does not abort the rest of the pass.
func (q *Queue) Drain(ctx context.Context) Stats {
	if !q.online.Load() {
		return Stats{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Stats{}
	}

	snapshot := make([]Intent, len(q.pending))
	copy(snapshot, q.pending)

	stats := Stats{Attempted: len(snapshot)}
	applied := make(map[string]struct{}, len(snapshot))

	for _, intent := range snapshot {
		if err := q.apply(ctx, intent.Table, intent.Op, intent.Payload); err != nil {
			q.log.Warn().Str("intent", intent.ID).Str("table", intent.Table).
				Str("op", string(intent.Op)).Err(err).Msg("drain attempt failed, retained")
			continue
		}
		applied[intent.ID] = struct{}{}
	}

	stats.Applied = len(applied)
	stats.Retained = stats.Attempted - stats.Applied

	if len(applied) > 0 {
		remaining := q.pending[:0:0]
		for _, intent := range q.pending {
			if _, ok := applied[intent.ID]; !ok {
				remaining = append(remaining, intent)
			}
		}
		q.pending = remaining
		q.persistLocked(ctx)
	}

	q.log.Info().Int("attempted", stats.Attempted).Int("applied", stats.Applied).
		Int("retained", stats.Retained).Msg("drain pass finished")
	return stats
}

// Clear discards every pending intent and persists the empty sequence.
// Unapplied writes are permanently lost; this is the administrative
// escape hatch, not a normal code path. Returns how many intents were
// discarded.
func (q *Queue) Clear(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	discarded := len(q.pending)
	q.pending = nil
	q.persistLocked(ctx)

	if discarded > 0 {
		q.log.Warn().Int("discarded", discarded).Msg("pending mutations cleared")
	}
	return discarded
}

// Len returns the number of currently pending intents.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending returns a copy of the pending sequence, oldest first.
func (q *Queue) Pending() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Intent, len(q.pending))
	copy(out, q.pending)
	return out
}

// SetOnline updates the believed connectivity state. It never blocks and
// never touches the network; draining after a restore is the caller's
// (or the wired ConnectivitySource's) move.
func (q *Queue) SetOnline(online bool) {
	if q.online.Swap(online) != online {
		q.log.Info().Bool("online", online).Msg("connectivity changed")
	}
}

// Online reports the believed connectivity state.
func (q *Queue) Online() bool {
	return q.online.Load()
}

// apply performs one remote application of (table, op, payload).
func (q *Queue) apply(ctx context.Context, table string, op Op, payload map[string]any) error {
	switch op {
	case OpInsert:
		return q.remote.Insert(ctx, table, payload)
	case OpUpdate:
		return q.remote.Update(ctx, table, payload["id"], payload)
	case OpDelete:
		return q.remote.Delete(ctx, table, payload["id"])
	default:
		return fmt.Errorf("outbox: unsupported operation %q", op)
	}
}

// persistLocked rewrites the whole pending sequence durably. Callers hold
// q.mu. Failures are logged and reported, never returned: the in-memory
// sequence stays authoritative until the next successful persist.
func (q *Queue) persistLocked(ctx context.Context) {
	encoded, err := encodeIntents(q.pending)
	if err != nil {
		q.storageFailure("encode pending queue", err)
		return
	}
	if err := q.storage.Set(ctx, q.storageKey, encoded); err != nil {
		q.storageFailure("persist pending queue", err)
	}
}

// storageFailure routes a swallowed storage error to the log and the
// diagnostic callback.
func (q *Queue) storageFailure(what string, err error) {
	q.log.Error().Err(err).Msg(what + " failed")
	if q.onStorageError != nil {
		q.onStorageError(fmt.Errorf("%s: %w", what, err))
	}
}
