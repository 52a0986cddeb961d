package common

type UpdateType string

const (
	UPDATE_LIST      UpdateType = "list"
	UPDATE_GET       UpdateType = "get"
	UPDATE_CREATE    UpdateType = "create"
	UPDATE_UPDATE    UpdateType = "update"
	UPDATE_APPROVE   UpdateType = "approve"
	UPDATE_REJECT    UpdateType = "reject"
	UPDATE_NEXT_SLOT UpdateType = "next_slot"
	UPDATE_CALENDAR  UpdateType = "calendar"
	UPDATE_EXISTS    UpdateType = "exists"
	UPDATE_STOP      UpdateType = "stop"
)

// Network defaults for the daemon transport.
const (
	// DefaultTCPPort is the fallback TCP port when the unix socket is
	// unavailable.
	DefaultTCPPort = 4160

	// TCPHost is the host used for TCP fallback connections.
	TCPHost = "localhost"

	// MaxMessageSize caps a single framed message on the wire.
	MaxMessageSize = 8 << 20
)
