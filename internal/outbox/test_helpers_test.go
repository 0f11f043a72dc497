package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/danielsv/farmaq/internal/kvstore"
	"github.com/danielsv/farmaq/internal/remote"
	"github.com/danielsv/farmaq/internal/testutil"
)

// remoteCall records one application attempt the stub service saw.
type remoteCall struct {
	Op      Op
	Table   string
	Payload map[string]any
	RowID   any
}

// stubRemote is a scriptable remote.Service. Fail, when set, decides
// per call whether the service rejects it.
type stubRemote struct {
	mu    sync.Mutex
	calls []remoteCall
	fail  func(call remoteCall) error
}

func (s *stubRemote) record(call remoteCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.fail != nil {
		return s.fail(call)
	}
	return nil
}

func (s *stubRemote) Insert(_ context.Context, table string, row map[string]any) error {
	return s.record(remoteCall{Op: OpInsert, Table: table, Payload: row})
}

func (s *stubRemote) Update(_ context.Context, table string, id any, changes map[string]any) error {
	return s.record(remoteCall{Op: OpUpdate, Table: table, Payload: changes, RowID: id})
}

func (s *stubRemote) Delete(_ context.Context, table string, id any) error {
	return s.record(remoteCall{Op: OpDelete, Table: table, RowID: id})
}

func (s *stubRemote) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubRemote) recorded() []remoteCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remoteCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// transientFailure mimics an unreachable service.
func transientFailure() error {
	return remote.NewUnreachableError(errors.New("dial tcp: connection refused"))
}

// permanentFailure mimics a constraint violation.
func permanentFailure() error {
	return &remote.Error{Status: 409, Code: "23505", Message: "duplicate key value"}
}

// countingStorage wraps a store and counts writes, for asserting that
// no-op drains never touch storage.
type countingStorage struct {
	*kvstore.Memory
	mu   sync.Mutex
	sets int
}

func newCountingStorage() *countingStorage {
	return &countingStorage{Memory: kvstore.NewMemory()}
}

func (c *countingStorage) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Memory.Set(ctx, key, value)
}

func (c *countingStorage) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// faultyStorage fails reads and/or writes on demand.
type faultyStorage struct {
	*kvstore.Memory
	failGet bool
	failSet bool
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{Memory: kvstore.NewMemory()}
}

func (f *faultyStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("disk read error")
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyStorage) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk write error")
	}
	return f.Memory.Set(ctx, key, value)
}

// fakeConnectivity is a hand-cranked ConnectivitySource.
type fakeConnectivity struct {
	mu        sync.Mutex
	online    bool
	listeners []func(bool)
}

func (f *fakeConnectivity) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeConnectivity) OnChange(fn func(online bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeConnectivity) flip(online bool) {
	f.mu.Lock()
	f.online = online
	listeners := append([]func(bool){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(online)
	}
}

// testOptions builds deterministic queue options around the given remote
// service and storage.
func testOptions(svc remote.Service, storage Storage) Options {
	clock := testutil.NewClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), time.Minute)
	return Options{
		Remote:     svc,
		Storage:    storage,
		StorageKey: "outbox.pending",
		Now:        clock.Now,
		NewID:      testutil.SequentialIDs("intent"),
	}
}
