package core

import (
	"context"

	"github.com/nyah-check/privatemail/internal/message"
)

// MailFetcher defines the interface for loading stored raw messages
type MailFetcher interface {
	// Fetch returns the raw bytes of the referenced message, or an
	// error wrapping ErrNotFound when the store has no such message
	Fetch(ctx context.Context, ref InboundRef) ([]byte, error)
}

// MailSender defines the interface for dispatching rebuilt messages
type MailSender interface {
	// Send dispatches the message and returns the provider's message
	// identifier
	Send(ctx context.Context, out *message.Outbound) (string, error)
}

// SenderPolicy decides whether a sender address is blocked
type SenderPolicy interface {
	// Match reports whether the address hits a blacklist entry
	Match(addr string) bool
}
