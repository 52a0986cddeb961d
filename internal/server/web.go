package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// WebServer exposes the JSON-RPC surface over HTTP: the jhttp bridge at
// /rpc for request/response clients and a WebSocket upgrade at /rpc/ws for
// clients that also want push notifications. Both endpoints sit behind
// Bearer token auth.
type WebServer struct {
	port   int
	l      *log.Logger
	rpc    *RPCServer
	server *http.Server
	mu     sync.Mutex
}

func NewWebServer(l *log.Logger, rpc *RPCServer, port int) *WebServer {
	return &WebServer{port: port, l: l, rpc: rpc}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("/rpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.handleWebSocket)))
	return mux
}

// handleWebSocket upgrades the connection and runs a dedicated jrpc2 server
// over it until the client disconnects. Push is enabled so the notifier can
// deliver queue events.
func (s *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Println("Error accepting websocket:", err.Error())
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	if s.rpc.notifier != nil {
		s.rpc.notifier.Register(srv)
		defer s.rpc.notifier.Unregister(srv)
	}
	srv.Wait()
}

func (s *WebServer) addr() string {
	host := "127.0.0.1"
	if s.rpc.listenAll {
		host = ""
	}
	return fmt.Sprintf("%s:%d", host, s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	s.rpc.Close()
	return s.server.Shutdown(ctx)
}
