package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_SetNotifiesOnTransitionOnly(t *testing.T) {
	m := NewMonitor(MonitorOptions{Logger: zerolog.Nop()})

	var seen []bool
	m.OnChange(func(online bool) { seen = append(seen, online) })

	m.Set(true)
	m.Set(true) // no transition, no notification
	m.Set(false)
	m.Set(false)
	m.Set(true)

	assert.Equal(t, []bool{true, false, true}, seen)
}

func TestMonitor_InitialStateOffline(t *testing.T) {
	m := NewMonitor(MonitorOptions{Logger: zerolog.Nop()})
	assert.False(t, m.Online())
}

func TestMonitor_ProbeReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMonitor(MonitorOptions{ProbeURL: srv.URL, Logger: zerolog.Nop()})
	assert.True(t, m.Probe(context.Background()))
	assert.True(t, m.Online())
}

func TestMonitor_ProbeCountsAnyResponseAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewMonitor(MonitorOptions{ProbeURL: srv.URL, Logger: zerolog.Nop()})
	assert.True(t, m.Probe(context.Background()), "a response is a response, even a 503")
}

func TestMonitor_ProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewMonitor(MonitorOptions{ProbeURL: url, Logger: zerolog.Nop()})
	m.Set(true)

	var transitions []bool
	m.OnChange(func(online bool) { transitions = append(transitions, online) })

	require.False(t, m.Probe(context.Background()))
	assert.False(t, m.Online())
	assert.Equal(t, []bool{false}, transitions, "lost signal emitted")
}

func TestMonitor_NoProbeURLKeepsBelief(t *testing.T) {
	m := NewMonitor(MonitorOptions{Logger: zerolog.Nop()})
	m.Set(true)

	assert.True(t, m.Probe(context.Background()), "manual-only monitor keeps its state")
}
