package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/adapters/s3"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/core"
)

// FetcherFactory creates mail fetchers based on configuration
type FetcherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *memory.Fetcher
}

// NewFetcherFactory creates a new fetcher factory
func NewFetcherFactory(cfg *config.Config, logger *zap.Logger, store *memory.Fetcher) *FetcherFactory {
	return &FetcherFactory{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// CreateMailFetcher creates the fetcher matching the trigger type:
// Lambda invocations read from the S3 bucket SES stores messages in,
// while the SMTP trigger reads what its sessions staged in memory
func (f *FetcherFactory) CreateMailFetcher() (core.MailFetcher, error) {
	triggerType := f.cfg.GetTrigger().Type

	switch triggerType {
	case "lambda":
		s3Cfg := f.cfg.GetS3()

		var opts []func(*awsconfig.LoadOptions) error
		if s3Cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s3Cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}

		return s3.NewFetcher(awss3.NewFromConfig(awsCfg), f.logger), nil
	case "smtp":
		return f.store, nil
	default:
		return nil, fmt.Errorf("unsupported trigger type: %s", triggerType)
	}
}
