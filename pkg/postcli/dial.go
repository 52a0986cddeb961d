package postcli

import (
	"fmt"
	"net"
	"time"
)

const socketDialTimeout = 100 * time.Millisecond

// dialFunc is swapped out in tests.
var dialFunc = func(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, socketDialTimeout)
}

// dial establishes a connection to the daemon using the unix socket with TCP
// fallback. POSTLINE_FORCE_TCP=1 skips the unix socket entirely.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("TCP forced, connecting to %s", tcpAddress())
		return dialFunc("tcp", tcpAddress())
	}
	debugLog("Attempting connection via unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr != nil {
		debugLog("Unix socket connection failed: %v, falling back to TCP", unixErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		debugLog("Successfully connected via TCP fallback to %s", tcpAddress())
		return conn, nil
	}
	debugLog("Successfully connected via unix socket")
	return conn, nil
}
