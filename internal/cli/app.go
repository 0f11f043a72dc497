package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/danielsv/farmaq/internal/config"
	"github.com/danielsv/farmaq/internal/connectivity"
	"github.com/danielsv/farmaq/internal/kvstore"
	"github.com/danielsv/farmaq/internal/outbox"
	"github.com/danielsv/farmaq/internal/remote"
	"github.com/danielsv/farmaq/internal/schema"
)

// App bundles the wired components a command works with.
type App struct {
	Config  config.Config
	Store   *kvstore.Store
	Monitor *connectivity.Monitor
	Queue   *outbox.Queue
	Log     zerolog.Logger
}

// newLogger builds the CLI logger. Verbose lowers the level to debug;
// everything goes to stderr so json output on stdout stays parseable.
func newLogger(opts *RootOptions) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "farmaq").Logger()
}

// buildApp loads the config and wires storage, remote client,
// connectivity, payload validation, and the queue. The returned cleanup
// closes the store.
//
// The initial connectivity state comes from one synchronous probe, so a
// command started offline queues instead of burning a timeout per write.
func buildApp(ctx context.Context, opts *RootOptions) (*App, func(), error) {
	log := newLogger(opts)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}

	store, err := kvstore.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open local store", err)
	}
	cleanup := func() { _ = store.Close() }

	svc, err := remote.NewClient(remote.ClientOptions{
		BaseURL: cfg.Remote.URL,
		APIKey:  cfg.Remote.APIKey,
		Timeout: cfg.Remote.Timeout.Std(),
		Logger:  log,
	})
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "build remote client", err)
	}

	registry, err := schema.NewRegistry()
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "compile table schemas", err)
	}

	monitor := connectivity.NewMonitor(connectivity.MonitorOptions{
		ProbeURL: cfg.ProbeURL(),
		Interval: cfg.Connectivity.Interval.Std(),
		Logger:   log,
	})
	monitor.Probe(ctx)

	queue, err := outbox.Open(ctx, outbox.Options{
		Remote:       svc,
		Storage:      store,
		StorageKey:   cfg.Storage.QueueKey,
		Connectivity: monitor,
		Validate:     registry.Validate,
		Logger:       &log,
	})
	if err != nil {
		cleanup()
		return nil, nil, WrapExitError(ExitCommandError, "open outbox", err)
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Monitor: monitor,
		Queue:   queue,
		Log:     log,
	}, cleanup, nil
}
