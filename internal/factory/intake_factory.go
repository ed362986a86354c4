package factory

import (
	"github.com/mikey/llm-smart-forward/internal/adapters/intake"
	"github.com/mikey/llm-smart-forward/internal/config"
	"github.com/mikey/llm-smart-forward/internal/core"
	"github.com/mikey/llm-smart-forward/internal/ports"
	"go.uber.org/zap"
)

// IntakeFactory creates message intakes based on configuration
type IntakeFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ForwardingService
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, service *core.ForwardingService) *IntakeFactory {
	return &IntakeFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateMessageIntake creates the SMTP intake with the configured rule set
func (f *IntakeFactory) CreateMessageIntake() (ports.MessageIntake, error) {
	serverCfg := f.cfg.GetServer()
	rules := f.cfg.GetForwardingRules(f.logger)
	defaultDestination := f.cfg.GetDefaultDestination(f.logger)

	f.logger.Info("Loaded forwarding rules",
		zap.Int("rules", len(rules)),
		zap.Bool("default_destination", defaultDestination != nil))

	return intake.NewSMTPIntake(
		f.service,
		f.logger,
		serverCfg.ListenAddress,
		rules,
		defaultDestination,
		serverCfg.StatusHeader,
		serverCfg.RuleHeader,
		serverCfg.SummaryHeader,
		serverCfg.PostfixAddress,
		serverCfg.PostfixPort,
		serverCfg.PostfixEnabled,
	), nil
}
