package messaging

import (
	"sync"
	"time"

	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster is the process-wide connection registry. It maps user ids
// to their open sessions, fans payment events out to them, and owns the
// stale-session reaper's lifecycle.
type SSEBroadcaster struct {
	mu       sync.RWMutex
	sessions map[int64][]*Session

	queueDepth     int
	maxConnections int
	staleThreshold time.Duration
	sweepInterval  time.Duration

	reaperRunning bool

	logger *logging.ChanneledLogger
}

// BroadcasterConfig carries the tunables the registry needs at construction.
type BroadcasterConfig struct {
	QueueDepth     int
	MaxConnections int
	StaleThreshold time.Duration
	SweepInterval  time.Duration
}

// NewSSEBroadcaster creates an empty registry. The reaper starts lazily on
// the first Register.
func NewSSEBroadcaster(cfg BroadcasterConfig, logger *logging.ChanneledLogger) *SSEBroadcaster {
	return &SSEBroadcaster{
		sessions:       make(map[int64][]*Session),
		queueDepth:     cfg.QueueDepth,
		maxConnections: cfg.MaxConnections,
		staleThreshold: cfg.StaleThreshold,
		sweepInterval:  cfg.SweepInterval,
		logger:         logger,
	}
}

// Register creates a session for the user and adds it to the registry.
// Returns nil when the process-wide connection cap is reached; the handler
// turns that into a 503. The first registration into an empty registry arms
// the reaper.
func (b *SSEBroadcaster) Register(userID int64) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxConnections > 0 && b.totalLocked() >= b.maxConnections {
		if b.logger != nil {
			b.logger.SSE().Warn("Connection cap reached, rejecting session",
				"userId", userID, "cap", b.maxConnections)
		}
		return nil
	}

	session := newSession(userID, b.queueDepth, b)
	b.sessions[userID] = append(b.sessions[userID], session)

	if !b.reaperRunning {
		b.reaperRunning = true
		go b.reapLoop()
	}

	if b.logger != nil {
		b.logger.LogSSEEvent("session registered", userID, len(b.sessions[userID]))
	}
	return session
}

// Unregister removes one session from the user's list, pruning the user key
// when the list empties. Unknown users and already-removed sessions are
// no-ops, so the deferred unregister in Session.Run and an eviction by the
// reaper can race safely. The session's done channel is closed so its run
// loop terminates even when the client is still attached.
func (b *SSEBroadcaster) Unregister(userID int64, session *Session) {
	if session != nil {
		session.close()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	list, ok := b.sessions[userID]
	if !ok {
		return
	}
	for i, s := range list {
		if s == session {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.sessions, userID)
	} else {
		b.sessions[userID] = list
	}

	if b.logger != nil {
		b.logger.LogSSEEvent("session unregistered", userID, len(list))
	}
}

// Broadcast encodes the event once and offers it to every open session for
// the user. A session whose queue is full fails the delivery; failed
// sessions are unregistered after the loop so one dead consumer never blocks
// the others. Returns the number of sessions that accepted the event.
func (b *SSEBroadcaster) Broadcast(userID int64, event Event) int {
	frame, err := event.Encode()
	if err != nil {
		if b.logger != nil {
			b.logger.SSE().Error("Failed to encode event", "userId", userID, "error", err.Error())
		}
		return 0
	}

	b.mu.RLock()
	list := make([]*Session, len(b.sessions[userID]))
	copy(list, b.sessions[userID])
	b.mu.RUnlock()

	delivered := 0
	var failed []*Session
	for _, s := range list {
		if s.enqueue(frame) {
			delivered++
		} else {
			failed = append(failed, s)
		}
	}

	for _, s := range failed {
		if b.logger != nil {
			b.logger.SSE().Warn("Dropping unresponsive session",
				"userId", userID, "event", event.Name())
		}
		b.Unregister(userID, s)
	}

	if b.logger != nil {
		b.logger.LogSSEEvent(event.Name(), userID, delivered)
	}
	return delivered
}

// ConnectionCount returns the number of open sessions across all users.
func (b *SSEBroadcaster) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalLocked()
}

// UserConnectionCount returns the number of open sessions for one user.
func (b *SSEBroadcaster) UserConnectionCount(userID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions[userID])
}

// UserCount returns the number of users with at least one open session.
func (b *SSEBroadcaster) UserCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

func (b *SSEBroadcaster) totalLocked() int {
	total := 0
	for _, list := range b.sessions {
		total += len(list)
	}
	return total
}
