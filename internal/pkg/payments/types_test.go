package payments

import "testing"

func TestClassifyEventType(t *testing.T) {
	tests := []struct {
		in   string
		want EventKind
	}{
		{in: "payment.succeeded", want: EventCompleted},
		{in: "payment.completed", want: EventCompleted},
		{in: "checkout.completed", want: EventCompleted},
		{in: "payment.failed", want: EventFailed},
		{in: "checkout.failed", want: EventFailed},
		{in: "payment.cancelled", want: EventCancelled},
		{in: "checkout.cancelled", want: EventCancelled},
		{in: "subscription.renewed", want: EventUnknown},
		{in: "", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyEventType(tt.in); got != tt.want {
			t.Fatalf("ClassifyEventType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{kind: EventCompleted, want: "completed"},
		{kind: EventFailed, want: "failed"},
		{kind: EventCancelled, want: "cancelled"},
		{kind: EventUnknown, want: "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Fatalf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
