package postcli

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
)

// ensureDaemon checks if the daemon is running and spawns it if not.
// Returns nil if the daemon is running or was successfully started.
func ensureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnDaemon(); err != nil {
		return err
	}
	return waitForDaemon(daemonStartTimeout)
}

// isDaemonRunning reports whether anything answers on the daemon transport.
func isDaemonRunning() bool {
	conn, err := dial()
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// waitForDaemon polls until the daemon answers or the timeout expires.
func waitForDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}

// spawnDaemon starts the daemon as a detached background process.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, "daemon")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	// Detach from the parent process group so the daemon survives CLI exit.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	// Release so the daemon does not become a zombie when it exits.
	_ = cmd.Process.Release()
	return nil
}
