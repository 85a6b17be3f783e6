package config

import (
	"time"

	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"12300"`

	// PollInterval is the default inbox synchronization cadence.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"8s"`
	// SSETickInterval is the cadence of the /sse refresh hint stream.
	SSETickInterval time.Duration `env:"SSE_TICK_INTERVAL" envDefault:"8s"`
	// HTTPClientTimeout applies to every outbound provider call.
	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"8s"`

	// ThrottleMinInterval is the per-caller minimum gap between requests.
	ThrottleMinInterval time.Duration `env:"THROTTLE_MIN_INTERVAL" envDefault:"300ms"`
	// ThrottlePruneSchedule drops idle throttle entries on this cron schedule.
	ThrottlePruneSchedule string `env:"THROTTLE_PRUNE_SCHEDULE" envDefault:"@every 10m"`

	Logger  *logger.Config
	Tracing *tracing.JaegerConfig
}

type MailTmConfig struct {
	BaseURL string `env:"MAILTM_BASE_URL" envDefault:"https://api.mail.tm"`
	Enabled bool   `env:"MAILTM_ENABLED" envDefault:"true"`
}

type OneSecConfig struct {
	BaseURL string `env:"ONESEC_BASE_URL" envDefault:"https://www.1secmail.com/api/v1/"`
	Enabled bool   `env:"ONESEC_ENABLED" envDefault:"true"`
}

// TmProConfig configures the paid provider; it stays disabled until an API
// key is supplied.
type TmProConfig struct {
	BaseURL string `env:"TMPRO_BASE_URL"`
	APIKey  string `env:"TMPRO_API_KEY"`
}

func (c *TmProConfig) IsConfigured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}
