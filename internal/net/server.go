package net

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server streams JSON frames to websocket spectators. Publish may be called
// from the frame goroutine; it never blocks on a client.
type Server struct {
	listener net.Listener
	http     *http.Server
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	viewers map[uint64]*Viewer

	outSize int
	log     *zap.Logger
	closeCh chan struct{}
	once    sync.Once
}

// NewServer builds a server without binding. Use Listen to bind, or mount
// Handler on an existing mux.
func NewServer(outSize int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if outSize <= 0 {
		outSize = 8
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		viewers: make(map[uint64]*Viewer),
		outSize: outSize,
		log:     log,
		closeCh: make(chan struct{}),
	}
}

// Listen binds bindAddr and serves /ws in its own goroutine.
func (s *Server) Listen(bindAddr string) error {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())
	s.listener = ln
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("spectator server stopped", zap.Error(err))
		}
	}()
	s.log.Info("spectator listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Handler upgrades requests to websocket viewers.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		select {
		case <-s.closeCh:
			http.Error(rw, "shutting down", http.StatusServiceUnavailable)
			return
		default:
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}

		id := s.nextID.Add(1)
		v := newViewer(conn, id, s.outSize, 5*time.Second, s.log)
		s.mu.Lock()
		s.viewers[id] = v
		s.mu.Unlock()
		s.log.Info("spectator connected", zap.Uint64("viewer", id), zap.String("ip", v.IP))

		go v.writeLoop()
		go func() {
			v.readLoop()
			s.mu.Lock()
			delete(s.viewers, id)
			s.mu.Unlock()
			s.log.Info("spectator disconnected", zap.Uint64("viewer", id))
		}()
	})
}

// Publish encodes msg once and enqueues it for every viewer.
func (s *Server) Publish(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	targets := make([]*Viewer, 0, len(s.viewers))
	for _, v := range s.viewers {
		targets = append(targets, v)
	}
	s.mu.Unlock()
	for _, v := range targets {
		v.Send(b)
	}
	return nil
}

// Viewers returns the number of connected spectators.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

// Addr returns the listener's address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting viewers and disconnects everyone.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		close(s.closeCh)
		if s.http != nil {
			err = s.http.Shutdown(ctx)
		}
		s.mu.Lock()
		for _, v := range s.viewers {
			v.Close()
		}
		s.mu.Unlock()
	})
	return err
}
