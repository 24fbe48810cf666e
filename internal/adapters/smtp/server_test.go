package smtp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/adapters/stdout"
	"github.com/nyah-check/privatemail/internal/blacklist"
	"github.com/nyah-check/privatemail/internal/core"
	"github.com/nyah-check/privatemail/internal/message"
	"github.com/nyah-check/privatemail/internal/utils"
)

const sessionRaw = "From: \"John Doe\" <john@example.com>\r\n" +
	"To: original@dest.com\r\n" +
	"Subject: Greetings\r\n" +
	"\r\n" +
	"Hello there\r\n"

// failingSender implements core.MailSender and always fails.
type failingSender struct{}

func (failingSender) Send(ctx context.Context, out *message.Outbound) (string, error) {
	return "", errors.New("throttled")
}

func newTestServer(t *testing.T, sender core.MailSender, entries []string) *Server {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewFetcher(logger)
	service := core.NewForwardService(
		store,
		sender,
		blacklist.NewEvaluator(entries, logger),
		message.RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"},
		utils.NewTextProcessor(logger),
		logger,
	)
	return NewServer(service, store, logger, "127.0.0.1:0", "localhost", 30*1024*1024, 30*time.Second, 30*time.Second)
}

func TestSessionData_ForwardsMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	srv := newTestServer(t, stdout.NewWithWriter(&buf), nil)
	sess := &session{server: srv}

	if err := sess.Mail("envelope@example.com", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Rcpt("anything@anywhere.org", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Data(strings.NewReader(sessionRaw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := buf.String()
	if !strings.Contains(sent, "From: \"John Doe\" <hello@nyah.dev>") {
		t.Errorf("rewritten From missing:\n%s", sent)
	}
	if !strings.Contains(sent, "Delivery-To: nyah@gmail.com") {
		t.Errorf("recipient missing:\n%s", sent)
	}
}

func TestSessionData_CleansUpStagedMessage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stdout.NewWithWriter(&bytes.Buffer{}), nil)
	sess := &session{server: srv}

	if err := sess.Data(strings.NewReader(sessionRaw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing may linger in the store once the reply goes out.
	if n := srv.store.Len(); n != 0 {
		t.Errorf("staged messages after data: got %d, want 0", n)
	}
}

func TestSessionData_DroppedSenderAccepted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	srv := newTestServer(t, stdout.NewWithWriter(&buf), []string{"example.com"})
	sess := &session{server: srv}

	if err := sess.Data(strings.NewReader(sessionRaw)); err != nil {
		t.Fatalf("drop must be accepted, got: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("blacklisted message dispatched:\n%s", buf.String())
	}
}

func TestSessionData_MalformedRejectedPermanently(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, stdout.NewWithWriter(&bytes.Buffer{}), nil)
	sess := &session{server: srv}

	err := sess.Data(strings.NewReader("From: a@b.c\r\nno separator"))
	var smtpErr *gosmtp.SMTPError
	if !errors.As(err, &smtpErr) {
		t.Fatalf("got %v, want SMTP error", err)
	}
	if smtpErr.Code != 554 {
		t.Errorf("code: got %d, want 554", smtpErr.Code)
	}
}

func TestSessionData_TransientFailureGets451(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingSender{}, nil)
	sess := &session{server: srv}

	err := sess.Data(strings.NewReader(sessionRaw))
	var smtpErr *gosmtp.SMTPError
	if !errors.As(err, &smtpErr) {
		t.Fatalf("got %v, want SMTP error", err)
	}
	if smtpErr.Code != 451 {
		t.Errorf("code: got %d, want 451", smtpErr.Code)
	}
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	sess := &session{sender: "someone@example.com"}
	sess.Reset()
	if sess.sender != "" {
		t.Errorf("sender after reset: got %q, want empty", sess.sender)
	}
}
