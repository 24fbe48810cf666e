package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/message"
)

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender is an SES-backed implementation of the MailSender interface.
// Messages go out as raw MIME so the rebuilt bytes reach the
// recipient exactly as rebuilt.
type Sender struct {
	client SendEmailAPI
	logger *zap.Logger
}

// NewSender creates a new SES-backed sender
func NewSender(client SendEmailAPI, logger *zap.Logger) *Sender {
	return &Sender{
		client: client,
		logger: logger,
	}
}

// Send dispatches the rebuilt message to its recipient
func (s *Sender) Send(ctx context.Context, out *message.Outbound) (string, error) {
	resp, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{out.Recipient},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: out.Data,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}

	messageID := aws.ToString(resp.MessageId)
	s.logger.Debug("Dispatched message via SES",
		zap.String("message_id", messageID),
		zap.String("recipient", out.Recipient),
		zap.Int("size", len(out.Data)))

	return messageID, nil
}
