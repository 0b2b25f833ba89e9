package notify

import (
	"encoding/json"
	"time"
)

const (
	TopicEmail = "notify.email"

	EventEmailRequested = "EmailRequested"
)

// Templates the mail relay knows how to render. The relay owns the actual
// templating; we only ship a name and a data bag.
const (
	TemplateOrderPlacedSeller  = "order-placed-seller"
	TemplateOrderConfirmation  = "order-confirmation-buyer"
	TemplateOrderStatusChanged = "order-status-changed"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually order_id
	Payload       json.RawMessage `json:"payload"`
}

// RecipientKind tags which directory a recipient id resolves against.
type RecipientKind string

const (
	KindBuyer  RecipientKind = "buyer"
	KindSeller RecipientKind = "seller"
)

// Recipient is a tagged reference: the id alone is ambiguous, the kind picks
// the lookup table it resolves through.
type Recipient struct {
	Kind RecipientKind `json:"kind"`
	ID   string        `json:"id"`
}

type EmailRequestedPayload struct {
	Recipient Recipient      `json:"recipient"`
	Template  string         `json:"template"`
	Data      map[string]any `json:"data,omitempty"`
}

// Partition key = order id, so all notifications for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
