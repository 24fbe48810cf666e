package message

import (
	"mime"
	"net/mail"
	"strings"
)

// RewriteOptions carries the configured forwarding identity.
type RewriteOptions struct {
	FromEmail     string
	ToEmail       string
	SubjectPrefix string
}

// RewritePlan holds the computed replacement header values for one
// message. Subject is empty when the original subject bytes are kept.
type RewritePlan struct {
	From      string
	ReplyTo   string
	Recipient string
	Subject   string
}

// PlanRewrite computes the forwarding rewrite for msg. The new From
// pairs the original sender's display name (or, without one, the
// local-part of their address) with the configured forwarding
// address. Reply-To becomes the original sender's address so replies
// route back to the true author, and the single delivery recipient
// becomes the configured destination regardless of the original To
// and Cc headers.
func PlanRewrite(msg *Message, opts RewriteOptions) (*RewritePlan, error) {
	from, err := msg.FromAddress()
	if err != nil {
		return nil, err
	}

	name := from.Name
	if name == "" {
		name = localPart(from.Address)
	}

	plan := &RewritePlan{
		From:      (&mail.Address{Name: name, Address: opts.FromEmail}).String(),
		ReplyTo:   from.Address,
		Recipient: opts.ToEmail,
	}

	if opts.SubjectPrefix != "" {
		subject := msg.DecodedHeader("Subject")
		if !strings.HasPrefix(subject, opts.SubjectPrefix) {
			plan.Subject = mime.QEncoding.Encode("utf-8", opts.SubjectPrefix+subject)
		}
	}

	return plan, nil
}

func localPart(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[:i]
	}
	return addr
}
