package daemon

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/postline/postline/pkg/logger"
)

func TestNewRunnerDefaults(t *testing.T) {
	runner := New(nil, nil)
	if runner == nil {
		t.Fatal("New() with nil config returned nil runner")
	}
	if runner.Config() == nil {
		t.Fatal("Config() returned nil")
	}
}

func TestNewRunnerKeepsConfig(t *testing.T) {
	runner := New(&Config{Port: 4160, OutputDir: "/tmp/postline"}, nil)
	if runner.Config().Port != 4160 {
		t.Errorf("Port = %d, want 4160", runner.Config().Port)
	}
	if runner.Config().OutputDir != "/tmp/postline" {
		t.Errorf("OutputDir = %q, want /tmp/postline", runner.Config().OutputDir)
	}
}

func TestRunnerStartBeginsListening(t *testing.T) {
	var listenerCreated atomic.Bool
	runner := New(&Config{Port: 0}, &Dependencies{
		ListenerFactory: func(network, address string) (net.Listener, error) {
			listenerCreated.Store(true)
			return net.Listen(network, address)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Start(ctx)
	}()

	waitRunning(t, runner)
	if !listenerCreated.Load() {
		t.Error("Start() did not create listener")
	}

	cancel()
	<-errCh
}

func TestRunnerStartTwiceFails(t *testing.T) {
	runner := New(&Config{Port: 0}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()
	waitRunning(t, runner)

	if err := runner.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunnerShutdown(t *testing.T) {
	var shutdownCalled atomic.Bool
	mock := logger.NewMockLogger()
	runner := New(&Config{Port: 0}, &Dependencies{
		ShutdownFunc: func() error {
			shutdownCalled.Store(true)
			return nil
		},
		Logger: mock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()
	waitRunning(t, runner)

	if err := runner.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !shutdownCalled.Load() {
		t.Error("Shutdown() did not call shutdown function")
	}
	if runner.IsRunning() {
		t.Error("Shutdown() did not stop the runner")
	}
	if len(mock.InfoCalls) == 0 || mock.InfoCalls[len(mock.InfoCalls)-1] != "daemon stopped" {
		t.Errorf("lifecycle log = %v, want trailing %q", mock.InfoCalls, "daemon stopped")
	}
}

func TestRunnerShutdownTimeout(t *testing.T) {
	runner := New(&Config{Port: 0, ShutdownTimeout: 50 * time.Millisecond}, &Dependencies{
		ShutdownFunc: func() error {
			time.Sleep(500 * time.Millisecond)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()
	waitRunning(t, runner)

	if err := runner.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Shutdown() error = %v, want ErrShutdownTimeout", err)
	}
}

func TestRunnerShutdownNotRunning(t *testing.T) {
	runner := New(&Config{}, nil)
	if err := runner.Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Shutdown() error = %v, want ErrNotRunning", err)
	}
}

func TestRunnerShutdownPropagatesError(t *testing.T) {
	wantErr := errors.New("cleanup failed")
	runner := New(&Config{Port: 0, ShutdownTimeout: time.Second}, &Dependencies{
		ShutdownFunc: func() error { return wantErr },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = runner.Start(ctx)
	}()
	waitRunning(t, runner)

	if err := runner.Shutdown(); !errors.Is(err, wantErr) {
		t.Errorf("Shutdown() error = %v, want %v", err, wantErr)
	}
}

func TestRunnerContextCancellationStops(t *testing.T) {
	runner := New(&Config{Port: 0}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Start(ctx)
	}()
	waitRunning(t, runner)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Start() returned unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Start() did not return after context cancellation")
	}
	if runner.IsRunning() {
		t.Error("runner should not be running after context cancellation")
	}
}

func waitRunning(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !r.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("runner did not reach running state")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
