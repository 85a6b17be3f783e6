package services

import (
	"github.com/sagar7778/emailtemp/config"
	"github.com/sagar7778/emailtemp/interfaces"
	"github.com/sagar7778/emailtemp/internal/inbox"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/sanitize"
	"github.com/sagar7778/emailtemp/services/mailtm"
	"github.com/sagar7778/emailtemp/services/onesec"
	"github.com/sagar7778/emailtemp/services/registry"
	"github.com/sagar7778/emailtemp/services/tmpro"
)

type Services struct {
	Registry    interfaces.ProviderRegistry
	InboxEngine *inbox.Engine
	Sanitizer   interfaces.HTMLSanitizer
}

func InitServices(cfg *config.Config, log logger.Logger) *Services {
	timeout := cfg.AppConfig.HTTPClientTimeout

	// Registration order fixes the round-robin sequence.
	reg := registry.NewRegistry(log,
		onesec.NewOneSecService(cfg.OneSecConfig, timeout),
		mailtm.NewMailTmService(cfg.MailTmConfig, timeout),
		tmpro.NewTmProService(cfg.TmProConfig, timeout),
	)

	return &Services{
		Registry:    reg,
		InboxEngine: inbox.NewEngine(reg, log, cfg.AppConfig.PollInterval),
		Sanitizer:   sanitize.NewSanitizer(),
	}
}
