package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/ses"
	"github.com/nyah-check/privatemail/internal/adapters/stdout"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/core"
)

// SenderFactory creates mail senders based on configuration
type SenderFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSenderFactory creates a new sender factory
func NewSenderFactory(cfg *config.Config, logger *zap.Logger) *SenderFactory {
	return &SenderFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailSender creates a mail sender based on the configuration
func (f *SenderFactory) CreateMailSender() (core.MailSender, error) {
	senderType := f.cfg.GetString("sender.type")

	switch senderType {
	case "ses":
		sesCfg := f.cfg.GetSES()

		var opts []func(*awsconfig.LoadOptions) error
		if sesCfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(sesCfg.Region))
		}
		if sesCfg.AccessKeyID != "" && sesCfg.SecretAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(sesCfg.AccessKeyID, sesCfg.SecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}

		return ses.NewSender(sesv2.NewFromConfig(awsCfg), f.logger), nil
	case "stdout":
		return stdout.New(), nil
	default:
		return nil, fmt.Errorf("unsupported sender type: %s", senderType)
	}
}
