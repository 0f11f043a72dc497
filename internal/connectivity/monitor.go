// Package connectivity tracks whether the client believes the remote
// service is reachable and signals transitions to subscribers.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Monitor probes a health URL on an interval and reports restored/lost
// transitions. The believed state is exactly that - a belief; the outbox
// treats it as a hint, not a guarantee.
//
// Thread-safety: all methods are safe for concurrent use. Subscribers are
// invoked synchronously from whichever goroutine changed the state, and
// only on actual transitions.
type Monitor struct {
	probeURL string
	interval time.Duration
	http     *http.Client
	log      zerolog.Logger

	mu        sync.Mutex
	online    bool
	listeners []func(online bool)
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	// ProbeURL is fetched to decide reachability. Any HTTP response,
	// whatever the status, counts as reachable; only transport failures
	// count as offline.
	ProbeURL string

	// Interval between probes. Zero means 15 seconds.
	Interval time.Duration

	// HTTPClient overrides the probing client (tests).
	HTTPClient *http.Client

	// Logger receives transition events.
	Logger zerolog.Logger
}

// NewMonitor creates a Monitor. The initial state is offline until the
// first probe or an explicit Set.
func NewMonitor(opts MonitorOptions) *Monitor {
	interval := opts.Interval
	if interval == 0 {
		interval = 15 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Monitor{
		probeURL: opts.ProbeURL,
		interval: interval,
		http:     hc,
		log:      opts.Logger,
	}
}

// Online reports the believed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange registers a subscriber for restored/lost transitions.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Set forces the believed state, notifying subscribers on a transition.
// Used by tests and by forced offline/online modes.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := append([]func(bool){}, m.listeners...)
	m.mu.Unlock()

	m.log.Info().Bool("online", online).Msg("connectivity transition")
	for _, fn := range listeners {
		fn(online)
	}
}

// Probe performs one synchronous reachability check and updates the
// believed state. Returns the fresh state.
func (m *Monitor) Probe(ctx context.Context) bool {
	online := m.check(ctx)
	m.Set(online)
	return online
}

// Run probes on the configured interval until ctx is cancelled. An
// immediate first probe establishes the startup state.
func (m *Monitor) Run(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// check performs the HTTP probe. No URL configured means the monitor is
// manual-only and the current belief stands.
func (m *Monitor) check(ctx context.Context) bool {
	if m.probeURL == "" {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.online
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.http.Do(req)
	if err != nil {
		m.log.Debug().Err(err).Msg("probe failed")
		return false
	}
	resp.Body.Close()
	return true
}
