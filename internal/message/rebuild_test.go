package message

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var rebuildOpts = RewriteOptions{FromEmail: "hello@nyah.dev", ToEmail: "nyah@gmail.com"}

func rebuild(t *testing.T, raw string, opts RewriteOptions) (*Message, *Outbound) {
	t.Helper()
	m := mustParse(t, raw)
	plan, err := PlanRewrite(m, opts)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	out, err := Rebuild(m, plan)
	if err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}
	return m, out
}

func TestRebuild_ExactBytes(t *testing.T) {
	t.Parallel()

	raw := "Received: one\r\n" +
		"From: \"John Doe\" <john@example.com>\r\n" +
		"To: original@dest.com\r\n" +
		"Received: two\r\n" +
		"Subject: Greetings\r\n" +
		"\r\n" +
		"Hello there\r\n"

	_, out := rebuild(t, raw, rebuildOpts)

	want := "Received: one\r\n" +
		"From: \"John Doe\" <hello@nyah.dev>\r\n" +
		"Reply-To: john@example.com\r\n" +
		"To: original@dest.com\r\n" +
		"Received: two\r\n" +
		"Subject: Greetings\r\n" +
		"\r\n" +
		"Hello there\r\n"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
	if out.Recipient != "nyah@gmail.com" {
		t.Errorf("recipient: got %q, want %q", out.Recipient, "nyah@gmail.com")
	}
}

func TestRebuild_ReplacesReplyToInPlace(t *testing.T) {
	t.Parallel()

	raw := "From: bare@example.com\r\n" +
		"Reply-To: old@example.net\r\n" +
		"To: x@y.z\r\n" +
		"\r\n" +
		"body"

	_, out := rebuild(t, raw, rebuildOpts)

	want := "From: bare <hello@nyah.dev>\r\n" +
		"Reply-To: bare@example.com\r\n" +
		"To: x@y.z\r\n" +
		"\r\n" +
		"body"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
}

func TestRebuild_DropsExtraIdentityFields(t *testing.T) {
	t.Parallel()

	raw := "From: real@example.com\r\n" +
		"X-Middle: keep\r\n" +
		"From: forged@example.net\r\n" +
		"Reply-To: a@b.c\r\n" +
		"Reply-To: d@e.f\r\n" +
		"\r\n" +
		"x"

	_, out := rebuild(t, raw, rebuildOpts)

	want := "From: real <hello@nyah.dev>\r\n" +
		"X-Middle: keep\r\n" +
		"Reply-To: real@example.com\r\n" +
		"\r\n" +
		"x"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
	if n := strings.Count(string(out.Data), "example.net"); n != 0 {
		t.Errorf("forged sender still present %d times", n)
	}
}

func TestRebuild_ReplacesSubject(t *testing.T) {
	t.Parallel()

	opts := rebuildOpts
	opts.SubjectPrefix = "[fwd] "

	raw := "From: a@b.c\r\n" +
		"Subject: One\r\n" +
		"Subject: Two\r\n" +
		"\r\n" +
		"x"

	_, out := rebuild(t, raw, opts)

	want := "From: a <hello@nyah.dev>\r\n" +
		"Reply-To: a@b.c\r\n" +
		"Subject: [fwd] One\r\n" +
		"\r\n" +
		"x"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
}

func TestRebuild_InsertsSubjectWhenAbsent(t *testing.T) {
	t.Parallel()

	opts := rebuildOpts
	opts.SubjectPrefix = "[fwd] "

	raw := "From: a@b.c\r\n" +
		"To: t@u.v\r\n" +
		"\r\n" +
		"x"

	_, out := rebuild(t, raw, opts)

	want := "From: a <hello@nyah.dev>\r\n" +
		"Reply-To: a@b.c\r\n" +
		"Subject: [fwd] \r\n" +
		"To: t@u.v\r\n" +
		"\r\n" +
		"x"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
}

func TestRebuild_KeepsUntargetedSubjectBytes(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\r\n" +
		"Subject:   weird   spacing  \r\n" +
		"\r\n" +
		"x"

	_, out := rebuild(t, raw, rebuildOpts)

	if !strings.Contains(string(out.Data), "Subject:   weird   spacing  \r\n") {
		t.Errorf("original subject bytes not preserved: %q", out.Data)
	}
}

func TestRebuild_MultipartMissingTerminator(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\r\n" +
		"Content-Type: multipart/mixed; boundary=zz\r\n" +
		"\r\n" +
		"--zz\r\n" +
		"\r\n" +
		"part without closing marker\r\n"

	m := mustParse(t, raw)
	plan, err := PlanRewrite(m, rebuildOpts)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if _, err := Rebuild(m, plan); !errors.Is(err, ErrStructure) {
		t.Errorf("got %v, want %v", err, ErrStructure)
	}
}

func TestRebuild_MultipartMissingBoundaryParam(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\r\n" +
		"Content-Type: multipart/mixed\r\n" +
		"\r\n" +
		"opaque\r\n"

	m := mustParse(t, raw)
	plan, err := PlanRewrite(m, rebuildOpts)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if _, err := Rebuild(m, plan); !errors.Is(err, ErrStructure) {
		t.Errorf("got %v, want %v", err, ErrStructure)
	}
}

func TestRebuild_MultipartRoundTrip(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\r\n" +
		"Content-Type: multipart/alternative; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"hello plain\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<b>html</b>\r\n" +
		"--xyz--\r\n"

	m, out := rebuild(t, raw, rebuildOpts)

	if !bytes.HasSuffix(out.Data, m.Body) {
		t.Error("rebuilt message does not end with the original body")
	}

	again, err := Parse(out.Data)
	if err != nil {
		t.Fatalf("rebuilt message does not parse: %v", err)
	}
	if len(again.Parts) != 2 {
		t.Fatalf("part count after rebuild: got %d, want 2", len(again.Parts))
	}
	if got := string(again.Parts[0].Payload); got != "hello plain" {
		t.Errorf("part 0 payload: got %q, want %q", got, "hello plain")
	}
}

func TestRebuild_KeepsBareLFSeparators(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\nTo: t@u.v\n\nbody\n"

	_, out := rebuild(t, raw, rebuildOpts)

	want := "From: a <hello@nyah.dev>\n" +
		"Reply-To: a@b.c\n" +
		"To: t@u.v\n" +
		"\n" +
		"body\n"

	if got := string(out.Data); got != want {
		t.Errorf("rebuilt message:\ngot  %q\nwant %q", got, want)
	}
}

func TestRebuild_Deterministic(t *testing.T) {
	t.Parallel()

	raw := "From: a@b.c\r\nSubject: Hi\r\n\r\nsame bytes\r\n"

	m := mustParse(t, raw)
	plan, err := PlanRewrite(m, rebuildOpts)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	first, err := Rebuild(m, plan)
	if err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}
	second, err := Rebuild(m, plan)
	if err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("two rebuilds of the same message differ")
	}

	_, fresh := rebuild(t, raw, rebuildOpts)
	if !bytes.Equal(first.Data, fresh.Data) {
		t.Error("rebuild from a fresh parse differs")
	}
}

func TestRebuild_NoFrom(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "To: a@b.c\r\n\r\nx")
	plan := &RewritePlan{From: "x <hello@nyah.dev>", ReplyTo: "x@y.z", Recipient: "nyah@gmail.com"}
	if _, err := Rebuild(m, plan); !errors.Is(err, ErrHeader) {
		t.Errorf("got %v, want %v", err, ErrHeader)
	}
}
