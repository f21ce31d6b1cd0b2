package messaging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SessionState tracks where a session is in its lifecycle. CLOSED is
// terminal; there is no transition back.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateStreaming
	StateClosed
)

// EventSink is the transport a session delivers frames through. The HTTP
// layer adapts the response writer; tests substitute a recorder.
type EventSink interface {
	Send(frame string) error
}

// Session is one open payment-status stream for a user. It owns a bounded
// delivery queue and an activity clock, and lives exactly as long as its
// entry in the registry.
type Session struct {
	userID    int64
	queue     chan string
	done      chan struct{}
	closeOnce sync.Once

	createdAt    time.Time
	lastActivity atomic.Int64 // unix nanos
	state        atomic.Int32

	registry *SSEBroadcaster
}

func newSession(userID int64, queueDepth int, registry *SSEBroadcaster) *Session {
	s := &Session{
		userID:    userID,
		queue:     make(chan string, queueDepth),
		done:      make(chan struct{}),
		createdAt: time.Now(),
		registry:  registry,
	}
	s.lastActivity.Store(s.createdAt.UnixNano())
	return s
}

// UserID returns the owning user's id.
func (s *Session) UserID() int64 { return s.userID }

// State returns the session's lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActivity returns the last time the session delivered anything.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// enqueue offers a frame to the delivery queue without blocking. A full
// queue fails the enqueue; the registry treats that session as dead.
func (s *Session) enqueue(frame string) bool {
	select {
	case s.queue <- frame:
		return true
	default:
		return false
	}
}

// close signals the session's run loop to terminate. Idempotent; called on
// unregister so evicted sessions stop streaming instead of pinging a dead
// registration.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
	})
}

// Run drives the session state machine: emit the initial connected event,
// then alternate between draining the delivery queue and emitting keepalive
// pings until the client disconnects, the sink fails, or the session is
// evicted. Unregistration is deferred so it happens exactly once on every
// exit path.
func (s *Session) Run(ctx context.Context, sink EventSink, keepalive time.Duration) error {
	defer func() {
		s.state.Store(int32(StateClosed))
		s.registry.Unregister(s.userID, s)
	}()

	connected := ConnectedEvent{UserID: s.userID, Timestamp: unixNow()}
	frame, err := connected.Encode()
	if err != nil {
		return err
	}
	if err := sink.Send(frame); err != nil {
		return err
	}
	s.state.Store(int32(StateStreaming))
	s.touch()

	timer := time.NewTimer(keepalive)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected.
			return nil

		case <-s.done:
			// Evicted by the reaper or unregistered elsewhere.
			return nil

		case frame := <-s.queue:
			if err := sink.Send(frame); err != nil {
				return err
			}
			s.touch()

		case <-timer.C:
			if err := sink.Send(pingFrame); err != nil {
				return err
			}
			s.touch()
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(keepalive)
	}
}
