// Package payments wraps the hosted-checkout payment provider. The rest of
// the system only sees CheckoutProvider; Stripe specifics stay here.
package payments

import "context"

// LineItem is one display line on the provider's hosted checkout page.
type LineItem struct {
	Name        string
	AmountCents int64
	Quantity    int64
}

type CreateSessionParams struct {
	LineItems []LineItem
	// Metadata rides on the session and comes back verbatim on retrieval.
	// The order intent is serialized in here; nothing is persisted locally
	// until the payment is confirmed.
	Metadata map[string]string
}

// Session is the provider's view of a checkout. PaymentID is the provider's
// payment identifier (set once a payment intent exists) and is the key used
// to deduplicate confirmations.
type Session struct {
	ID        string
	URL       string
	PaymentID string
	Paid      bool
	Metadata  map[string]string
}

type CheckoutProvider interface {
	CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
