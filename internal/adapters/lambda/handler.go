package lambda

import (
	"context"
	"path"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/core"
)

// verdictFail is the status SES reports for a failed receipt verdict.
const verdictFail = "FAIL"

// Handler adapts SES receipt events into forwarding invocations. Each
// record names a message the receipt rule already stored in the
// bucket; the handler resolves the object key and runs the pipeline.
type Handler struct {
	service       *core.ForwardService
	logger        *zap.Logger
	bucket        string
	keyPrefix     string
	dropOnVerdict bool
}

// NewHandler creates a new Lambda event handler
func NewHandler(service *core.ForwardService, logger *zap.Logger, bucket, keyPrefix string, dropOnVerdict bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		bucket:        bucket,
		keyPrefix:     keyPrefix,
		dropOnVerdict: dropOnVerdict,
	}
}

// Handle processes one SES receipt event. A transient failure is
// returned so the runtime redelivers the event; a permanent one is
// logged and swallowed because redelivering the same bytes cannot
// change the outcome.
func (h *Handler) Handle(ctx context.Context, event events.SimpleEmailEvent) error {
	for i := range event.Records {
		if err := h.handleRecord(ctx, &event.Records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) handleRecord(ctx context.Context, record *events.SimpleEmailRecord) error {
	messageID := record.SES.Mail.MessageID

	if h.dropOnVerdict && failsVerdict(record) {
		h.logger.Info("Dropping message with failed receipt verdict",
			zap.String("message_id", messageID),
			zap.String("spam_verdict", record.SES.Receipt.SpamVerdict.Status),
			zap.String("virus_verdict", record.SES.Receipt.VirusVerdict.Status))
		return nil
	}

	ref := core.InboundRef{
		Bucket: h.bucket,
		Key:    path.Join(h.keyPrefix, messageID),
	}

	outcome := h.service.Forward(ctx, ref)
	if outcome.State == core.StateFailed {
		if core.IsPermanent(outcome.Err) {
			h.logger.Warn("Skipping permanently failed message",
				zap.String("message_id", messageID),
				zap.String("stage", outcome.Stage),
				zap.Error(outcome.Err))
			return nil
		}
		return outcome.Err
	}
	return nil
}

func failsVerdict(record *events.SimpleEmailRecord) bool {
	receipt := &record.SES.Receipt
	return receipt.SpamVerdict.Status == verdictFail || receipt.VirusVerdict.Status == verdictFail
}
