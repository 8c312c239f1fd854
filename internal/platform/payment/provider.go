package payment

import (
	"context"
	"fmt"
	"sync"
)

// Provider abstracts the external payment authority. The lifecycle core only
// stores and forwards the opaque ids it returns.
type Provider interface {
	// CreateCustomer registers a billing customer for the given tenant.
	CreateCustomer(ctx context.Context, userID, email string) (customerID string, err error)
	// CreateSubscription starts a subscription for the customer on the given price.
	CreateSubscription(ctx context.Context, customerID, priceID string) (subscriptionID string, err error)
	// CancelSubscription cancels a subscription on the remote side.
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// MockProvider is a test double that records calls and returns configurable
// results. It is also the default provider when no API key is configured.
type MockProvider struct {
	mu sync.Mutex

	// Customers maps userID -> customerID.
	Customers map[string]string
	// Subscriptions maps subscriptionID -> priceID.
	Subscriptions map[string]string
	// Canceled collects ids passed to CancelSubscription.
	Canceled []string

	// Error fields allow tests to inject failures.
	CreateCustomerErr     error
	CreateSubscriptionErr error
	CancelSubscriptionErr error

	nextCustomerSeq int
	nextSubSeq      int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Customers:     make(map[string]string),
		Subscriptions: make(map[string]string),
	}
}

func (m *MockProvider) CreateCustomer(_ context.Context, userID, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCustomerErr != nil {
		return "", m.CreateCustomerErr
	}

	if id, ok := m.Customers[userID]; ok {
		return id, nil
	}
	m.nextCustomerSeq++
	id := fmt.Sprintf("cus_mock_%d", m.nextCustomerSeq)
	m.Customers[userID] = id
	return id, nil
}

func (m *MockProvider) CreateSubscription(_ context.Context, customerID, priceID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateSubscriptionErr != nil {
		return "", m.CreateSubscriptionErr
	}

	found := false
	for _, cid := range m.Customers {
		if cid == customerID {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("unknown customer %s", customerID)
	}

	m.nextSubSeq++
	id := fmt.Sprintf("sub_mock_%d", m.nextSubSeq)
	m.Subscriptions[id] = priceID
	return id, nil
}

func (m *MockProvider) CancelSubscription(_ context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CancelSubscriptionErr != nil {
		return m.CancelSubscriptionErr
	}

	delete(m.Subscriptions, subscriptionID)
	m.Canceled = append(m.Canceled, subscriptionID)
	return nil
}

// CanceledIDs returns a snapshot of the ids passed to CancelSubscription.
func (m *MockProvider) CanceledIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Canceled))
	copy(out, m.Canceled)
	return out
}
