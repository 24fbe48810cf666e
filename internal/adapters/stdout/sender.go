package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/nyah-check/privatemail/internal/message"
)

// Sender is a dry-run implementation of the MailSender interface that
// writes the rebuilt message to a writer instead of dispatching it.
type Sender struct {
	writer io.Writer
	seq    atomic.Int64
}

// New creates a new stdout sender that writes to os.Stdout
func New() *Sender {
	return &Sender{writer: os.Stdout}
}

// NewWithWriter creates a new sender that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Sender {
	return &Sender{writer: w}
}

// Send writes the rebuilt message and returns a synthetic identifier
func (s *Sender) Send(_ context.Context, out *message.Outbound) (string, error) {
	id := fmt.Sprintf("dry-run-%d", s.seq.Add(1))

	if _, err := fmt.Fprintf(s.writer, "========================================\n"+
		"Delivery-To: %s\n"+
		"Message-Id: %s\n"+
		"========================================\n", out.Recipient, id); err != nil {
		return "", fmt.Errorf("stdout write failed: %w", err)
	}
	if _, err := s.writer.Write(out.Data); err != nil {
		return "", fmt.Errorf("stdout write failed: %w", err)
	}
	if _, err := fmt.Fprintf(s.writer, "\n========================================\n"); err != nil {
		return "", fmt.Errorf("stdout write failed: %w", err)
	}

	return id, nil
}
