package messaging

// Broadcaster is the connection registry contract consumed by the SSE
// handler and the payment publisher.
type Broadcaster interface {
	// Register creates a session for the user and adds it to the registry.
	Register(userID int64) *Session
	// Unregister removes one session. Unknown sessions are a no-op.
	Unregister(userID int64, session *Session)
	// Broadcast fans an event out to every open session for the user and
	// reports how many sessions accepted it.
	Broadcast(userID int64, event Event) int
	// ConnectionCount returns the number of open sessions across all users.
	ConnectionCount() int
	// UserConnectionCount returns the number of open sessions for one user.
	UserConnectionCount(userID int64) int
}

// Publisher is the payment-side entry point: the webhook service hands it
// confirmation outcomes and it turns them into payment_status events.
type Publisher interface {
	BroadcastPaymentStatus(userID int64, status, method, intentID string, subscriptionID, confirmationCode *string) int
}
