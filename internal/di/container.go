package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/lambda"
	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/blacklist"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/core"
	"github.com/nyah-check/privatemail/internal/factory"
	"github.com/nyah-check/privatemail/internal/logging"
	"github.com/nyah-check/privatemail/internal/message"
	"github.com/nyah-check/privatemail/internal/ports"
	"github.com/nyah-check/privatemail/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register the staging store shared by the SMTP trigger and its fetcher
	if err := container.Provide(memory.NewFetcher); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewFetcherFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSenderFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTriggerFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register validated forwarding configuration
	if err := container.Provide(func(cfg *config.Config) (config.ForwardConfig, error) {
		fwd := cfg.GetForward()
		if err := fwd.Validate(); err != nil {
			return config.ForwardConfig{}, err
		}
		return fwd, nil
	}); err != nil {
		return nil, err
	}

	// Register rewrite options
	if err := container.Provide(func(fwd config.ForwardConfig) message.RewriteOptions {
		return message.RewriteOptions{
			FromEmail:     fwd.FromEmail,
			ToEmail:       fwd.ToEmail,
			SubjectPrefix: fwd.SubjectPrefix,
		}
	}); err != nil {
		return nil, err
	}

	// Register sender blacklist
	if err := container.Provide(func(fwd config.ForwardConfig, logger *zap.Logger) core.SenderPolicy {
		return blacklist.NewEvaluator(fwd.Blacklist, logger)
	}); err != nil {
		return nil, err
	}

	// Register mail fetcher
	if err := container.Provide(func(f *factory.FetcherFactory) (core.MailFetcher, error) {
		return f.CreateMailFetcher()
	}); err != nil {
		return nil, err
	}

	// Register mail sender
	if err := container.Provide(func(f *factory.SenderFactory) (core.MailSender, error) {
		return f.CreateMailSender()
	}); err != nil {
		return nil, err
	}

	// Register forwarding service
	if err := container.Provide(core.NewForwardService); err != nil {
		return nil, err
	}

	// Register trigger
	if err := container.Provide(func(f *factory.TriggerFactory) (ports.Trigger, error) {
		return f.CreateTrigger()
	}); err != nil {
		return nil, err
	}

	// Register Lambda handler
	if err := container.Provide(func(service *core.ForwardService, logger *zap.Logger, cfg *config.Config) *lambda.Handler {
		s3Cfg := cfg.GetS3()
		return lambda.NewHandler(service, logger, s3Cfg.Bucket, s3Cfg.KeyPrefix, cfg.GetTrigger().DropOnVerdictFail)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
