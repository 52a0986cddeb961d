// Package common provides shared types and constants used across the
// postline client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "POSTLINE_SOCKET_PATH"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "POSTLINE_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "POSTLINE_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "POSTLINE_DEBUG"

	// APITokenEnv overrides the stored posting API token.
	APITokenEnv = "LATE_API_KEY"

	// OutputDirEnv overrides the queue output directory.
	OutputDirEnv = "POSTLINE_OUTPUT_DIR"
)
