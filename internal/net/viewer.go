package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Viewer is one spectator connection. Writes happen on its own goroutine;
// the publisher only enqueues.
type Viewer struct {
	ID   uint64
	IP   string
	conn *websocket.Conn

	OutQueue chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	writeTimeout time.Duration
	log          *zap.Logger
}

func newViewer(conn *websocket.Conn, id uint64, outSize int, writeTimeout time.Duration, log *zap.Logger) *Viewer {
	return &Viewer{
		ID:           id,
		IP:           conn.RemoteAddr().String(),
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log.With(zap.Uint64("viewer", id)),
	}
}

// Send enqueues a message. A viewer whose queue is full is too slow and is
// disconnected.
func (v *Viewer) Send(msg []byte) {
	if v.closed.Load() {
		return
	}
	select {
	case v.OutQueue <- msg:
	default:
		v.log.Warn("spectator queue full, dropping slow viewer")
		v.Close()
	}
}

// Close shuts the connection down once.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		v.closed.Store(true)
		close(v.closeCh)
		_ = v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"),
			time.Now().Add(time.Second))
		v.conn.Close()
	})
}

func (v *Viewer) IsClosed() bool {
	return v.closed.Load()
}

// Done is closed when the viewer disconnects.
func (v *Viewer) Done() <-chan struct{} {
	return v.closeCh
}

// readLoop discards inbound messages and notices disconnects.
func (v *Viewer) readLoop() {
	defer v.Close()
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if !v.closed.Load() {
				v.log.Debug("spectator read ended", zap.Error(err))
			}
			return
		}
	}
}

func (v *Viewer) writeLoop() {
	defer v.Close()
	for {
		select {
		case msg := <-v.OutQueue:
			_ = v.conn.SetWriteDeadline(time.Now().Add(v.writeTimeout))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if !v.closed.Load() {
					v.log.Debug("spectator write failed", zap.Error(err))
				}
				return
			}
		case <-v.closeCh:
			return
		}
	}
}
