package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/message"
	"github.com/nyah-check/privatemail/internal/utils"
)

// previewLimit bounds the body preview attached to the sent log line.
const previewLimit = 128

// ForwardService is the core service for forwarding stored messages
type ForwardService struct {
	fetcher MailFetcher
	sender  MailSender
	policy  SenderPolicy
	opts    message.RewriteOptions
	text    *utils.TextProcessor
	logger  *zap.Logger
}

// NewForwardService creates a new forwarding service
func NewForwardService(
	fetcher MailFetcher,
	sender MailSender,
	policy SenderPolicy,
	opts message.RewriteOptions,
	text *utils.TextProcessor,
	logger *zap.Logger,
) *ForwardService {
	return &ForwardService{
		fetcher: fetcher,
		sender:  sender,
		policy:  policy,
		opts:    opts,
		text:    text,
		logger:  logger,
	}
}

// Forward runs the pipeline for one stored message: fetch, parse,
// filter, rewrite, rebuild, dispatch. It always returns an outcome;
// the outcome's Err carries the classified error for failed attempts.
// The pipeline is a pure function of the stored bytes and the
// configuration, so repeating a reference repeats its outcome.
func (s *ForwardService) Forward(ctx context.Context, ref InboundRef) *Outcome {
	invocationID := uuid.NewString()
	logger := s.logger.With(
		zap.String("ref", ref.String()),
		zap.String("invocation_id", invocationID),
	)

	raw, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		return s.failed(logger, ref, invocationID, StageFetch, fmt.Errorf("%w: %w", ErrFetch, err))
	}

	msg, err := message.Parse(raw)
	if err != nil {
		return s.failed(logger, ref, invocationID, StageParse, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	plan, err := message.PlanRewrite(msg, s.opts)
	if err != nil {
		return s.failed(logger, ref, invocationID, StageRewrite, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	// The planned Reply-To is the original sender's address, which is
	// what the blacklist is matched against.
	if s.policy.Match(plan.ReplyTo) {
		logger.Info("Dropping blacklisted sender",
			zap.String("sender", plan.ReplyTo))
		return &Outcome{
			State:        StateDropped,
			Ref:          ref,
			InvocationID: invocationID,
			Stage:        StageFilter,
			Reason:       "sender blacklisted: " + plan.ReplyTo,
		}
	}

	out, err := message.Rebuild(msg, plan)
	if err != nil {
		return s.failed(logger, ref, invocationID, StageRebuild, fmt.Errorf("%w: %w", ErrRebuild, err))
	}

	messageID, err := s.sender.Send(ctx, out)
	if err != nil {
		return s.failed(logger, ref, invocationID, StageDispatch, fmt.Errorf("%w: %w", ErrSend, err))
	}

	logger.Info("Forwarded message",
		zap.String("message_id", messageID),
		zap.String("sender", plan.ReplyTo),
		zap.String("recipient", out.Recipient),
		zap.String("subject", s.text.SanitizeUTF8(msg.DecodedHeader("Subject"))),
		zap.String("preview", s.text.ProcessText(message.Preview(msg), previewLimit)))

	return &Outcome{
		State:        StateSent,
		Ref:          ref,
		InvocationID: invocationID,
		MessageID:    messageID,
	}
}

func (s *ForwardService) failed(logger *zap.Logger, ref InboundRef, invocationID, stage string, err error) *Outcome {
	logger.Error("Forwarding failed",
		zap.String("stage", stage),
		zap.Bool("permanent", IsPermanent(err)),
		zap.Error(err))

	return &Outcome{
		State:        StateFailed,
		Ref:          ref,
		InvocationID: invocationID,
		Stage:        stage,
		Reason:       err.Error(),
		Err:          err,
	}
}
