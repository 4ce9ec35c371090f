package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/authgw/internal/observability"
)

const watchedYAML = `
authorization_api_url: "http://127.0.0.1:8081/auth"
services:
  - path: "/users"
    target_service: "http://127.0.0.1"
    target_port: "9000"
`

const changedYAML = `
authorization_api_url: "http://127.0.0.1:8081/auth"
services:
  - path: "/users"
    target_service: "http://127.0.0.1"
    target_port: "9000"
  - path: "/orders"
    target_service: "http://127.0.0.1"
    target_port: "9002"
`

const invalidYAML = `
services:
  - path: "/users("
    target_service: "127.0.0.1"
    target_port: "9000"
`

func TestNewWatcher(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })

	assert.Equal(t, configPath, watcher.path)
	assert.NotNil(t, watcher.callback)
	assert.Equal(t, 100*time.Millisecond, watcher.debounceDelay)
}

func TestNewWatcher_WithOptions(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)
	logger := observability.NopLogger()

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {},
		WithDebounceDelay(200*time.Millisecond),
		WithLogger(logger),
		WithErrorCallback(func(error) {}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })

	assert.Equal(t, 200*time.Millisecond, watcher.debounceDelay)
	assert.Equal(t, logger, watcher.logger)
	assert.NotNil(t, watcher.errorCallback)
}

func TestWithDebounceDelay_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	w := &Watcher{debounceDelay: time.Second}
	WithDebounceDelay(0)(w)
	WithDebounceDelay(-time.Second)(w)

	assert.Equal(t, time.Second, w.debounceDelay)
}

func TestWatcher_Start_AlreadyRunning(t *testing.T) {
	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Start(ctx))
	assert.ErrorIs(t, watcher.Start(ctx), ErrWatcherRunning)
	require.NoError(t, watcher.Stop())
}

func TestWatcher_Start_FileNotFound(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing.yaml")

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })

	assert.Error(t, watcher.Start(context.Background()))
}

func TestWatcher_Stop_NotRunning(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {})
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
}

func TestWatcher_FileChange(t *testing.T) {
	// Not parallel due to file system timing

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	var mu sync.Mutex
	var received *GatewayConfig
	called := make(chan struct{}, 1)

	watcher, err := NewWatcher(configPath, func(cfg *GatewayConfig) {
		mu.Lock()
		received = cfg
		mu.Unlock()
		select {
		case called <- struct{}{}:
		default:
		}
	}, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(configPath, []byte(changedYAML), 0o600))

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("change callback was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Len(t, received.Services, 2)
	assert.Equal(t, "/orders", received.Services[1].Path)
}

func TestWatcher_UnchangedContentIgnored(t *testing.T) {
	// Not parallel due to file system timing

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	var calls atomic.Int32
	var errs atomic.Int32

	watcher, err := NewWatcher(configPath,
		func(*GatewayConfig) { calls.Add(1) },
		WithDebounceDelay(20*time.Millisecond),
		WithErrorCallback(func(error) { errs.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(configPath, []byte(watchedYAML), 0o600))
	time.Sleep(300 * time.Millisecond)

	assert.Zero(t, calls.Load())
	assert.Zero(t, errs.Load())
}

func TestWatcher_InvalidChangeReportsError(t *testing.T) {
	// Not parallel due to file system timing

	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	var calls atomic.Int32
	errCh := make(chan error, 4)

	watcher, err := NewWatcher(configPath,
		func(*GatewayConfig) { calls.Add(1) },
		WithDebounceDelay(20*time.Millisecond),
		WithErrorCallback(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0o600))

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("error callback was not called")
	}
	assert.Zero(t, calls.Load())
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	configPath := writeConfigFile(t, "gateway.yaml", watchedYAML)

	watcher, err := NewWatcher(configPath, func(*GatewayConfig) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, watcher.Start(ctx))

	cancel()

	select {
	case <-watcher.stoppedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not exit")
	}
	assert.NoError(t, watcher.Stop())
}

func TestWatcher_IsRelevant(t *testing.T) {
	t.Parallel()

	w := &Watcher{path: "/etc/authgw/gateway.yaml"}

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{name: "write", event: fsnotify.Event{Name: "/etc/authgw/gateway.yaml", Op: fsnotify.Write}, expected: true},
		{name: "create", event: fsnotify.Event{Name: "/etc/authgw/gateway.yaml", Op: fsnotify.Create}, expected: true},
		{name: "rename", event: fsnotify.Event{Name: "/etc/authgw/gateway.yaml", Op: fsnotify.Rename}, expected: true},
		{name: "chmod", event: fsnotify.Event{Name: "/etc/authgw/gateway.yaml", Op: fsnotify.Chmod}, expected: false},
		{name: "sibling file", event: fsnotify.Event{Name: "/etc/authgw/other.yaml", Op: fsnotify.Write}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, w.isRelevant(tt.event))
		})
	}
}
