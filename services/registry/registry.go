// Package registry holds the known provider adapters and resolves logical
// provider ids to concrete adapters.
package registry

import (
	"context"
	"sync"

	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/sagar7778/emailtemp/interfaces"
	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/models"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

type providerRegistry struct {
	providers []interfaces.MailProvider
	log       logger.Logger

	// cursor is shared round-robin state; it advances exactly once per
	// default resolution and never for preferred lookups.
	cursorMutex sync.Mutex
	cursor      int
}

func NewRegistry(log logger.Logger, providers ...interfaces.MailProvider) interfaces.ProviderRegistry {
	return &providerRegistry{
		providers: providers,
		log:       log,
	}
}

func (r *providerRegistry) Providers() []interfaces.MailProvider {
	return r.providers
}

func (r *providerRegistry) Active() []interfaces.MailProvider {
	active := make([]interfaces.MailProvider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			active = append(active, p)
		}
	}
	return active
}

func (r *providerRegistry) Resolve(preferredID string) (interfaces.MailProvider, error) {
	active := r.Active()
	if len(active) == 0 {
		return nil, errors.Wrap(er.ErrNoActiveProviders, "registry: resolve")
	}

	if preferredID != "" {
		for _, p := range active {
			if p.ID() == preferredID {
				return p, nil
			}
		}
	}

	r.cursorMutex.Lock()
	picked := active[r.cursor%len(active)]
	r.cursor++
	r.cursorMutex.Unlock()
	return picked, nil
}

// Catalogue fans domain discovery out across the active adapters. A failing
// adapter contributes an empty domain list; the catalogue never fails as a
// whole.
func (r *providerRegistry) Catalogue(ctx context.Context) ([]models.ProviderDescriptor, map[string][]string) {
	span, ctx := tracing.StartTracerSpan(ctx, "ProviderRegistry.Catalogue")
	defer span.Finish()
	tracing.TagComponentService(span)

	active := r.Active()
	descriptors := make([]models.ProviderDescriptor, len(active))

	var wg sync.WaitGroup
	for i, provider := range active {
		wg.Add(1)
		go func(i int, provider interfaces.MailProvider) {
			defer wg.Done()

			domains, err := provider.Domains(ctx)
			if err != nil {
				if r.log != nil {
					r.log.Warnf("domain discovery failed for provider %s: %v", provider.ID(), err)
				}
				domains = []string{}
			}
			if domains == nil {
				domains = []string{}
			}
			descriptors[i] = models.ProviderDescriptor{
				ID:      provider.ID(),
				Label:   provider.Label(),
				Domains: domains,
			}
		}(i, provider)
	}
	wg.Wait()

	domainsByProvider := make(map[string][]string, len(descriptors))
	for _, d := range descriptors {
		domainsByProvider[d.ID] = d.Domains
	}
	span.LogFields(tracingLog.Int("provider_count", len(descriptors)))
	return descriptors, domainsByProvider
}
