package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartDriver runs Frame on a ticker at the configured frame rate, passing
// the measured time since the previous frame. Calling it while a driver is
// running is a no-op. The driver stops when ctx is cancelled, on StopDriver
// or on Dispose.
func (s *Session) StartDriver(ctx context.Context) error {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	if s.driverClosed {
		return ErrDisposed
	}
	if s.driverCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.driverCancel = cancel
	s.driverDone = done

	interval := s.cfg.Session.FrameInterval()
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				s.Frame(dt)
			}
		}
	}()
	s.log.Debug("frame driver started", zap.Duration("interval", interval))
	return nil
}

// StopDriver cancels the driver and waits for an in-flight frame to finish.
// After it returns no further frame callback fires. Idempotent.
func (s *Session) StopDriver() {
	s.stopDriver(false)
}

// stopDriver stops the driver; with closed set, later StartDriver calls fail.
func (s *Session) stopDriver(closed bool) {
	s.driverMu.Lock()
	if closed {
		s.driverClosed = true
	}
	cancel, done := s.driverCancel, s.driverDone
	s.driverCancel, s.driverDone = nil, nil
	s.driverMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Debug("frame driver stopped")
}

// DriverRunning reports whether a frame driver is active.
func (s *Session) DriverRunning() bool {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	return s.driverCancel != nil
}
