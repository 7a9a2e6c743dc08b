package gateway

import (
	"context"
	"fmt"
)

// Message is a single outbound delivery attempt. To and From are already
// channel-qualified by the caller (`whatsapp:+123...` or bare E.164).
type Message struct {
	To             string
	From           string
	Body           string
	StatusCallback string
}

// Receipt is the provider's synchronous answer to an accepted send.
type Receipt struct {
	SID    string
	Status string
}

// Client wraps the external messaging API. Implementations own their network
// timeout; a timeout surfaces as a ProviderError like any other failure.
type Client interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// Provider error codes with dedicated handling.
const (
	// CodeWhatsAppNotReachable means the recipient has not opted in to the
	// WhatsApp sender, so the channel is unusable for them.
	CodeWhatsAppNotReachable = 63007
)

// ProviderError is a machine-readable rejection from the messaging provider.
type ProviderError struct {
	Code    int
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
