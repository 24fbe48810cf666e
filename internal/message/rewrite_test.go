package message

import (
	"errors"
	"net/mail"
	"testing"
)

func mustParse(t *testing.T, raw string) *Message {
	t.Helper()
	m, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return m
}

func TestPlanRewrite_KeepsDisplayName(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "From: \"John Doe\" <john@example.com>\r\nSubject: Hi\r\n\r\nx")
	plan, err := PlanRewrite(m, RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := plan.From; got != `"John Doe" <hello@nyah.dev>` {
		t.Errorf("From: got %q, want %q", got, `"John Doe" <hello@nyah.dev>`)
	}
	if plan.ReplyTo != "john@example.com" {
		t.Errorf("Reply-To: got %q, want %q", plan.ReplyTo, "john@example.com")
	}
	if plan.Recipient != "nyah@gmail.com" {
		t.Errorf("Recipient: got %q, want %q", plan.Recipient, "nyah@gmail.com")
	}
	if plan.Subject != "" {
		t.Errorf("Subject: got %q, want empty", plan.Subject)
	}
}

func TestPlanRewrite_LocalPartFallback(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "From: john@example.com\r\n\r\nx")
	plan, err := PlanRewrite(m, RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr, err := mail.ParseAddress(plan.From)
	if err != nil {
		t.Fatalf("planned From does not parse: %v", err)
	}
	if addr.Name != "john" {
		t.Errorf("display name: got %q, want %q", addr.Name, "john")
	}
	if addr.Address != "hello@nyah.dev" {
		t.Errorf("address: got %q, want %q", addr.Address, "hello@nyah.dev")
	}
}

func TestPlanRewrite_EncodedWordName(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "From: =?utf-8?q?Andr=C3=A9?= <andre@example.fr>\r\n\r\nx")
	plan, err := PlanRewrite(m, RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr, err := mail.ParseAddress(plan.From)
	if err != nil {
		t.Fatalf("planned From does not parse: %v", err)
	}
	if addr.Name != "André" {
		t.Errorf("display name: got %q, want %q", addr.Name, "André")
	}
	if plan.ReplyTo != "andre@example.fr" {
		t.Errorf("Reply-To: got %q, want %q", plan.ReplyTo, "andre@example.fr")
	}
}

func TestPlanRewrite_MultipleFromTakesFirst(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "From: first@example.com, second@example.com\r\n\r\nx")
	plan, err := PlanRewrite(m, RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ReplyTo != "first@example.com" {
		t.Errorf("Reply-To: got %q, want %q", plan.ReplyTo, "first@example.com")
	}
}

func TestPlanRewrite_NoFrom(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "To: a@b.c\r\n\r\nx")
	_, err := PlanRewrite(m, RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"})
	if !errors.Is(err, ErrHeader) {
		t.Errorf("got %v, want %v", err, ErrHeader)
	}
}

func TestPlanRewrite_SubjectPrefix(t *testing.T) {
	t.Parallel()

	opts := RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com", SubjectPrefix: "[fwd] "}

	m := mustParse(t, "From: a@b.c\r\nSubject: Hello\r\n\r\nx")
	plan, err := PlanRewrite(m, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Subject != "[fwd] Hello" {
		t.Errorf("Subject: got %q, want %q", plan.Subject, "[fwd] Hello")
	}
}

func TestPlanRewrite_SubjectAlreadyPrefixed(t *testing.T) {
	t.Parallel()

	opts := RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com", SubjectPrefix: "[fwd] "}

	m := mustParse(t, "From: a@b.c\r\nSubject: [fwd] Hello\r\n\r\nx")
	plan, err := PlanRewrite(m, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Subject != "" {
		t.Errorf("Subject: got %q, want empty", plan.Subject)
	}
}

func TestPlanRewrite_SubjectPrefixNonASCII(t *testing.T) {
	t.Parallel()

	opts := RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com", SubjectPrefix: "[fwd] "}

	m := mustParse(t, "From: a@b.c\r\nSubject: =?utf-8?q?caf=C3=A9?=\r\n\r\nx")
	plan, err := PlanRewrite(m, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := wordDecoder.DecodeHeader(plan.Subject)
	if err != nil {
		t.Fatalf("planned subject does not decode: %v", err)
	}
	if decoded != "[fwd] café" {
		t.Errorf("decoded subject: got %q, want %q", decoded, "[fwd] café")
	}
}
