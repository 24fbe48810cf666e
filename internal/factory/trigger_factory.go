package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/adapters/smtp"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/core"
	"github.com/nyah-check/privatemail/internal/ports"
)

// TriggerFactory creates trigger frontends based on configuration
type TriggerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ForwardService
	store   *memory.Fetcher
}

// NewTriggerFactory creates a new trigger factory
func NewTriggerFactory(cfg *config.Config, logger *zap.Logger, service *core.ForwardService, store *memory.Fetcher) *TriggerFactory {
	return &TriggerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		store:   store,
	}
}

// CreateTrigger creates a long-running trigger frontend. The lambda
// trigger is not created here; it runs under the Lambda runtime
// instead of listening on its own
func (f *TriggerFactory) CreateTrigger() (ports.Trigger, error) {
	triggerType := f.cfg.GetTrigger().Type

	switch triggerType {
	case "smtp":
		smtpCfg := f.cfg.GetSMTP()

		readTimeout, err := f.cfg.GetDuration("smtp.read_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid smtp.read_timeout: %w", err)
		}
		writeTimeout, err := f.cfg.GetDuration("smtp.write_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid smtp.write_timeout: %w", err)
		}

		return smtp.NewServer(
			f.service,
			f.store,
			f.logger,
			smtpCfg.ListenAddress,
			smtpCfg.Domain,
			smtpCfg.MaxMessageBytes,
			readTimeout,
			writeTimeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported trigger type: %s", triggerType)
	}
}
