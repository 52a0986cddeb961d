// Package daemon provides the lifecycle runner for the postline daemon.
// It owns start, stop and graceful shutdown of the queue service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/postline/postline/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// Port is the TCP port for fallback connections.
	// Use 0 for an ephemeral port.
	Port int

	// OutputDir is the root directory holding the queue tree.
	OutputDir string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
// This enables dependency injection for testing.
type Dependencies struct {
	// ListenerFactory creates network listeners.
	// If nil, net.Listen is used.
	ListenerFactory func(network, address string) (net.Listener, error)

	// ShutdownFunc is called during shutdown to clean up resources.
	// If nil, no cleanup function is called.
	ShutdownFunc func() error

	// Logger receives lifecycle events. If nil, logging is disabled.
	Logger logger.Logger
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config   *Config
	deps     *Dependencies
	running  bool
	mu       sync.Mutex
	cancel   context.CancelFunc
	listener net.Listener
}

// New creates a new daemon runner with the given configuration and
// dependencies. Nil config or deps fall back to defaults.
func New(config *Config, deps *Dependencies) *Runner {
	if config == nil {
		config = &Config{}
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Runner{
		config: config,
		deps:   deps,
	}
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Start begins the daemon and blocks until the context is canceled.
// Returns ErrAlreadyRunning if the daemon is already started.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, r.cancel = context.WithCancel(ctx)

	// The listener must exist before running flips to true, otherwise a
	// concurrent Start could observe a running daemon with no listener.
	addr := formatListenAddress(r.config.Port)
	listener, err := r.deps.ListenerFactory("tcp", addr)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.listener = listener
	r.running = true
	r.mu.Unlock()

	r.deps.Logger.Info("daemon running, liveness listener on %s", listener.Addr())

	<-ctx.Done()

	r.cleanupOnStop()
	return ctx.Err()
}

// formatListenAddress returns the address string for the given port.
// Port 0 results in an ephemeral port assignment.
func formatListenAddress(port int) string {
	if port <= 0 {
		return ":0"
	}
	return fmt.Sprintf(":%d", port)
}

func (r *Runner) cleanupOnStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.closeListener()
}

// closeListener closes the listener if it exists. Caller must hold the mutex.
func (r *Runner) closeListener() {
	if r.listener != nil {
		_ = r.listener.Close()
		r.listener = nil
	}
}

// Shutdown gracefully stops the daemon.
// Returns ErrNotRunning if the daemon is not running.
// Returns ErrShutdownTimeout if the shutdown function exceeds the configured
// timeout.
func (r *Runner) Shutdown() error {
	if err := r.validateRunning(); err != nil {
		return err
	}
	if err := r.executeShutdownFunc(); err != nil {
		if errors.Is(err, ErrShutdownTimeout) {
			r.deps.Logger.Error("graceful shutdown timed out, forcing stop")
		}
		return err
	}
	r.performShutdown()
	r.deps.Logger.Info("daemon stopped")
	return nil
}

func (r *Runner) validateRunning() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return ErrNotRunning
	}
	return nil
}

func (r *Runner) executeShutdownFunc() error {
	if r.deps.ShutdownFunc == nil {
		return nil
	}
	if r.config.ShutdownTimeout > 0 {
		return r.executeWithTimeout(r.deps.ShutdownFunc, r.config.ShutdownTimeout)
	}
	return r.deps.ShutdownFunc()
}

// executeWithTimeout runs fn, forcing a stop and returning ErrShutdownTimeout
// if it does not complete in time.
func (r *Runner) executeWithTimeout(fn func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		r.forceStop()
		return ErrShutdownTimeout
	}
}

func (r *Runner) forceStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) performShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
	r.closeListener()
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
