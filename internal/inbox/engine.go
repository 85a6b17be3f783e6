// Package inbox keeps a live view of a mailbox's message list synchronized
// with the upstream provider. Each subscription runs a timer-driven poll loop
// plus a best-effort refresh hint channel, both converging on one cancellable
// fetch path where the last request wins.
package inbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/sagar7778/emailtemp/interfaces"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/models"
)

const DefaultPollInterval = 8 * time.Second

// Engine creates inbox subscriptions against the provider registry.
type Engine struct {
	registry interfaces.ProviderRegistry
	log      logger.Logger
	interval time.Duration
}

func NewEngine(registry interfaces.ProviderRegistry, log logger.Logger, pollInterval time.Duration) *Engine {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Engine{
		registry: registry,
		log:      log,
		interval: pollInterval,
	}
}

// Subscribe starts a subscription on the given redacted mailbox handle. The
// first fetch fires immediately, then on every poll interval until Stop. An
// interval <= 0 falls back to the engine default.
func (e *Engine) Subscribe(mailbox *models.Mailbox, interval time.Duration) *Subscription {
	if interval <= 0 {
		interval = e.interval
	}

	s := &Subscription{
		id:       uuid.NewString(),
		engine:   e,
		interval: interval,
		mailbox:  mailbox,
		state:    StateIdle,
		hints:    make(chan struct{}, 1),
		resets:   make(chan struct{}, 1),
		updates:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}

	go s.run()
	return s
}
