// Package postcli is the client library for the postline daemon. It speaks
// the framed JSON protocol over the daemon's unix socket (or TCP fallback)
// and exposes typed methods for every daemon operation.
package postcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/postline/postline/common"
)

type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewClient connects to a running daemon, starting one if none answers.
func NewClient() (*Client, error) {
	if err := ensureDaemon(); err != nil {
		return nil, err
	}
	return Connect()
}

// Connect dials the daemon without attempting to spawn it.
func Connect() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	if err = write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	var res Response
	if err = json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", method, err)
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	return res.Update.Message, nil
}
