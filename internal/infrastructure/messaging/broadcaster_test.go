package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() BroadcasterConfig {
	return BroadcasterConfig{
		QueueDepth:     4,
		MaxConnections: 0,
		StaleThreshold: 300 * time.Second,
		SweepInterval:  time.Hour,
	}
}

// recordingSink collects sent frames and can be told to fail.
type recordingSink struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (r *recordingSink) Send(frame string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *recordingSink) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.frames))
	copy(out, r.frames)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRegisterAndCounts(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)

	s1 := b.Register(1)
	s2 := b.Register(1)
	s3 := b.Register(2)
	require.NotNil(t, s1)
	require.NotNil(t, s2)
	require.NotNil(t, s3)

	assert.Equal(t, 3, b.ConnectionCount())
	assert.Equal(t, 2, b.UserConnectionCount(1))
	assert.Equal(t, 1, b.UserConnectionCount(2))
	assert.Equal(t, 2, b.UserCount())
}

func TestRegisterRespectsConnectionCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnections = 2
	b := NewSSEBroadcaster(cfg, nil)

	require.NotNil(t, b.Register(1))
	require.NotNil(t, b.Register(2))
	assert.Nil(t, b.Register(3))
	assert.Equal(t, 2, b.ConnectionCount())
}

func TestUnregisterPrunesEmptyUserKey(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)

	s := b.Register(7)
	b.Unregister(7, s)

	assert.Equal(t, 0, b.UserConnectionCount(7))
	assert.Equal(t, 0, b.UserCount())

	// Repeated and unknown unregisters are no-ops.
	b.Unregister(7, s)
	b.Unregister(99, s)
	assert.Equal(t, 0, b.ConnectionCount())
}

func TestUnregisterRemovesOnlyThatSession(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)

	s1 := b.Register(1)
	s2 := b.Register(1)
	b.Unregister(1, s1)

	assert.Equal(t, 1, b.UserConnectionCount(1))
	assert.Equal(t, StateClosed, s1.State())
	assert.NotEqual(t, StateClosed, s2.State())
}

func TestBroadcastFansOutToAllUserSessions(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)

	s1 := b.Register(1)
	s2 := b.Register(1)
	other := b.Register(2)

	delivered := b.Broadcast(1, PaymentStatusEvent{
		EventType:       "payment_status",
		PaymentStatus:   "paid",
		PaymentMethod:   "stripe",
		PaymentIntentID: "pi_123",
		Timestamp:       unixNow(),
		UserID:          1,
	})

	assert.Equal(t, 2, delivered)
	assert.Len(t, s1.queue, 1)
	assert.Len(t, s2.queue, 1)
	assert.Len(t, other.queue, 0)
}

func TestBroadcastToUserWithoutSessions(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	delivered := b.Broadcast(42, ConnectedEvent{UserID: 42, Timestamp: unixNow()})
	assert.Equal(t, 0, delivered)
}

func TestBroadcastDropsSessionWithFullQueue(t *testing.T) {
	cfg := testConfig()
	cfg.QueueDepth = 1
	b := NewSSEBroadcaster(cfg, nil)

	stuck := b.Register(1)
	healthy := b.Register(1)

	// Fill the stuck session's queue so the next enqueue fails.
	require.True(t, stuck.enqueue("event: ping\ndata: {}\n\n"))

	delivered := b.Broadcast(1, ConnectedEvent{UserID: 1, Timestamp: unixNow()})

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, b.UserConnectionCount(1))
	assert.Equal(t, StateClosed, stuck.State())
	assert.Len(t, healthy.queue, 1)
}

func TestSessionRunEmitsConnectedFirst(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(9)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, sink, time.Hour) }()

	waitFor(t, func() bool { return len(sink.Frames()) >= 1 })

	frames := sink.Frames()
	require.True(t, strings.HasPrefix(frames[0], "event: connected\ndata: "))
	require.True(t, strings.HasSuffix(frames[0], "\n\n"))

	payload := strings.TrimSuffix(strings.TrimPrefix(frames[0], "event: connected\ndata: "), "\n\n")
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &body))
	assert.Equal(t, float64(9), body["user_id"])
	assert.Contains(t, body, "timestamp")

	cancel()
	require.NoError(t, <-errCh)
	waitFor(t, func() bool { return b.ConnectionCount() == 0 })
}

func TestSessionRunDeliversBroadcastFrames(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(3)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, sink, time.Hour)

	waitFor(t, func() bool { return s.State() == StateStreaming })

	b.Broadcast(3, PaymentStatusEvent{
		EventType:       "payment_status",
		PaymentStatus:   "paid",
		PaymentMethod:   "stripe",
		PaymentIntentID: "pi_abc",
		Timestamp:       unixNow(),
		UserID:          3,
	})

	waitFor(t, func() bool { return len(sink.Frames()) >= 2 })
	frames := sink.Frames()
	assert.True(t, strings.HasPrefix(frames[1], "event: payment_status\ndata: "))
	assert.Contains(t, frames[1], `"payment_intent_id":"pi_abc"`)
}

func TestSessionRunEmitsKeepalivePings(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(5)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, sink, 20*time.Millisecond)

	waitFor(t, func() bool { return len(sink.Frames()) >= 3 })

	frames := sink.Frames()
	assert.Equal(t, "event: ping\ndata: {}\n\n", frames[1])
	assert.Equal(t, "event: ping\ndata: {}\n\n", frames[2])
}

func TestSessionRunStopsWhenSinkFails(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(4)
	sink := &recordingSink{err: errors.New("client gone")}

	err := s.Run(context.Background(), sink, time.Hour)
	require.Error(t, err)
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 0, b.ConnectionCount())
}

func TestSessionRunStopsWhenEvicted(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(6)
	sink := &recordingSink{}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background(), sink, time.Hour) }()

	waitFor(t, func() bool { return s.State() == StateStreaming })
	b.Unregister(6, s)

	require.NoError(t, <-errCh)
	assert.Equal(t, 0, b.ConnectionCount())
}

func TestReaperEvictsStaleSessions(t *testing.T) {
	cfg := testConfig()
	cfg.StaleThreshold = 30 * time.Millisecond
	cfg.SweepInterval = 10 * time.Millisecond
	b := NewSSEBroadcaster(cfg, nil)

	s := b.Register(11)
	sink := &recordingSink{}
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background(), sink, time.Hour) }()

	// The session never receives anything after connect, so its activity
	// clock goes stale and the reaper removes it.
	waitFor(t, func() bool { return b.ConnectionCount() == 0 })
	require.NoError(t, <-errCh)
	assert.Equal(t, StateClosed, s.State())
}

func TestReaperKeepsActiveSessions(t *testing.T) {
	cfg := testConfig()
	cfg.StaleThreshold = 200 * time.Millisecond
	cfg.SweepInterval = 20 * time.Millisecond
	b := NewSSEBroadcaster(cfg, nil)

	s := b.Register(12)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Keepalive well inside the stale threshold keeps the session fresh.
	go s.Run(ctx, sink, 20*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, b.ConnectionCount())
}

func TestReaperRearmsAfterRegistryEmpties(t *testing.T) {
	cfg := testConfig()
	cfg.StaleThreshold = 20 * time.Millisecond
	cfg.SweepInterval = 10 * time.Millisecond
	b := NewSSEBroadcaster(cfg, nil)

	first := b.Register(1)
	_ = first
	waitFor(t, func() bool { return b.ConnectionCount() == 0 })

	// A fresh registration after the reaper exits must still get reaped.
	second := b.Register(2)
	_ = second
	waitFor(t, func() bool { return b.ConnectionCount() == 0 })
}

func TestEventPublisherBroadcastsPaymentStatus(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)
	s := b.Register(21)
	pub := NewEventPublisher(b, nil)

	code := "A1B2C3D4E5F6"
	delivered := pub.BroadcastPaymentStatus(21, "paid", "stripe", "pi_777", nil, &code)
	require.Equal(t, 1, delivered)

	frame := <-s.queue
	require.True(t, strings.HasPrefix(frame, "event: payment_status\ndata: "))

	payload := strings.TrimSuffix(strings.TrimPrefix(frame, "event: payment_status\ndata: "), "\n\n")
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &body))
	assert.Equal(t, "payment_status", body["event_type"])
	assert.Equal(t, "paid", body["payment_status"])
	assert.Equal(t, "stripe", body["payment_method"])
	assert.Equal(t, "pi_777", body["payment_intent_id"])
	assert.Equal(t, "A1B2C3D4E5F6", body["confirmation_code"])
	assert.Equal(t, float64(21), body["user_id"])
	assert.NotContains(t, body, "subscription_id")
}

func TestConcurrentRegisterBroadcastUnregister(t *testing.T) {
	b := NewSSEBroadcaster(testConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := b.Register(userID)
				if s == nil {
					continue
				}
				b.Broadcast(userID, ConnectedEvent{UserID: userID, Timestamp: unixNow()})
				b.Unregister(userID, s)
			}
		}(int64(i % 3))
	}
	wg.Wait()

	assert.Equal(t, 0, b.ConnectionCount())
	assert.Equal(t, 0, b.UserCount())
}
