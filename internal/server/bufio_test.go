package server

import (
	"bytes"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/postline/postline/common"
)

func TestIntBytesRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 255, 256, 1 << 16, 1<<32 - 1} {
		if got := bytesToInt(intToBytes(v)); got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

// TestSyncConnFraming verifies a frame written on one end arrives intact on
// the other, including an empty payload.
func TestSyncConnFraming(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ca, cb := NewSyncConn(a), NewSyncConn(b)
	payloads := [][]byte{
		[]byte(`{"method":"list"}`),
		{},
		bytes.Repeat([]byte("x"), 4096),
	}

	done := make(chan error, 1)
	go func() {
		for _, p := range payloads {
			if err := ca.Write(p); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i, want := range payloads {
		got, err := cb.Read()
		if err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d corrupted: got %d bytes, want %d", i, len(got), len(want))
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("write side: %v", err)
	}
}

// TestSyncConnReadRejectsOversizedHeader verifies the reader refuses a frame
// header declaring more than MaxMessageSize without allocating or waiting for
// the payload. The peer sends the four header bytes and nothing else, so a
// reader that trusted the header would block here.
func TestSyncConnReadRejectsOversizedHeader(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_, _ = a.Write(intToBytes(uint32(common.MaxMessageSize) + 1))
	}()

	errCh := make(chan error, 1)
	go func() {
		_, err := NewSyncConn(b).Read()
		errCh <- err
	}()
	select {
	case err := <-errCh:
		if err == nil || !strings.Contains(err.Error(), "payload too large") {
			t.Fatalf("expected payload too large error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader blocked on an oversized header instead of rejecting it")
	}
}

// TestSyncConnWriteRejectsOversizedPayload verifies the write side refuses to
// emit a frame larger than MaxMessageSize.
func TestSyncConnWriteRejectsOversizedPayload(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	err := NewSyncConn(a).Write(make([]byte, common.MaxMessageSize+1))
	if err == nil || !strings.Contains(err.Error(), "payload too large") {
		t.Fatalf("expected payload too large error, got %v", err)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"method":"get","message":{"item_id":"a"}}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if string(req.Method) != "get" {
		t.Fatalf("expected method get, got %q", req.Method)
	}
	if string(req.Message) != `{"item_id":"a"}` {
		t.Fatalf("unexpected message %s", req.Message)
	}
}
