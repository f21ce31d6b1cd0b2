package services

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/mycomize/mycomize-go/internal/domain/entities/commerce"
	"github.com/mycomize/mycomize-go/internal/domain/user"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/infrastructure/payments"
)

// newTestLogger writes channel logs into a throwaway directory so test
// output stays quiet.
func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:  true,
		LogDirectory:  t.TempDir(),
		JSONFormat:    true,
		DefaultLevel:  slog.LevelInfo,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

func newTestTracker() *performance.Tracker {
	return performance.NewTracker(nil)
}

// fakeUserRepo is an in-memory user.Repository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) FindByID(id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByPaymentIntentID(intentID string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.StripePaymentIntentID != nil && *u.StripePaymentIntentID == intentID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Store(u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdatePaymentStatus(id int64, status string, method *string, intentID, customerID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.PaymentStatus = status
	u.PaymentMethod = method
	u.StripePaymentIntentID = intentID
	u.StripeCustomerID = customerID
	return nil
}

// fakeGateway substitutes the Stripe client in service tests.
type fakeGateway struct {
	mu sync.Mutex

	customersCreated int
	customerID       string
	customerErr      error

	intents     []fakeIntentCall
	intentID    string
	intentErr   error
	verifyEvent *stripe.Event
	verifyErr   error
}

type fakeIntentCall struct {
	AmountCents int64
	Currency    string
	CustomerID  string
	Metadata    map[string]string
}

func (g *fakeGateway) CreateCustomer(username string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.customerErr != nil {
		return "", g.customerErr
	}
	g.customersCreated++
	if g.customerID == "" {
		g.customerID = "cus_test"
	}
	return g.customerID, nil
}

func (g *fakeGateway) CreatePaymentIntent(amountCents int64, currency, customerID string, metadata map[string]string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.intents = append(g.intents, fakeIntentCall{
		AmountCents: amountCents,
		Currency:    currency,
		CustomerID:  customerID,
		Metadata:    metadata,
	})
	id := g.intentID
	if id == "" {
		id = "pi_test"
	}
	return &payments.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
	}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyEvent, nil
}

// fakeOrderRepo records stored orders in memory.
type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders []*commerce.Order
}

func (r *fakeOrderRepo) FindByUser(userID int64, offset, limit int) ([]*commerce.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*commerce.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			clone := *o
			result = append(result, &clone)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) Store(o *commerce.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	clone := *o
	r.orders = append(r.orders, &clone)
	return nil
}

// recordingPublisher captures payment-status broadcasts.
type recordingPublisher struct {
	mu    sync.Mutex
	calls []publishedStatus
}

type publishedStatus struct {
	UserID           int64
	Status           string
	Method           string
	IntentID         string
	SubscriptionID   *string
	ConfirmationCode *string
}

func (p *recordingPublisher) BroadcastPaymentStatus(userID int64, status, method, intentID string, subscriptionID, confirmationCode *string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishedStatus{
		UserID:           userID,
		Status:           status,
		Method:           method,
		IntentID:         intentID,
		SubscriptionID:   subscriptionID,
		ConfirmationCode: confirmationCode,
	})
	return 1
}

func (p *recordingPublisher) published() []publishedStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedStatus, len(p.calls))
	copy(out, p.calls)
	return out
}
