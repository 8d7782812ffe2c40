package payments

// EventKind is the closed set of payment lifecycle transitions the
// reconciler acts on. Provider event-type strings are normalized into one of
// these; anything else is EventUnknown and is acknowledged but ignored.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCompleted
	EventFailed
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ClassifyEventType maps a provider event-type string onto an EventKind,
// folding the provider's payment.* / checkout.* synonym pairs together.
func ClassifyEventType(eventType string) EventKind {
	switch eventType {
	case "payment.succeeded", "payment.completed", "checkout.completed":
		return EventCompleted
	case "payment.failed", "checkout.failed":
		return EventFailed
	case "payment.cancelled", "checkout.cancelled":
		return EventCancelled
	default:
		return EventUnknown
	}
}

// WebhookEvent is the provider's webhook payload. It is ephemeral: its whole
// effect is the Subscription / PaymentSession mutation it causes.
type WebhookEvent struct {
	Type       string           `json:"type"`
	BusinessID string           `json:"business_id"`
	Timestamp  string           `json:"timestamp"`
	Data       WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	CheckoutSessionID string          `json:"checkout_session_id"`
	PaymentID         string          `json:"payment_id"`
	SubscriptionID    string          `json:"subscription_id"`
	TotalAmount       int64           `json:"total_amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Customer          WebhookCustomer `json:"customer"`
	Metadata          WebhookMetadata `json:"metadata"`
}

type WebhookCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type WebhookMetadata struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	Product   string `json:"product"`
}

// Kind classifies the event's type string.
func (e *WebhookEvent) Kind() EventKind {
	return ClassifyEventType(e.Type)
}
