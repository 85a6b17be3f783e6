package interfaces

import (
	"context"

	"github.com/sagar7778/emailtemp/internal/models"
)

// ProviderRegistry holds the statically known adapter set and resolves
// logical provider ids to concrete adapters.
type ProviderRegistry interface {
	// Providers returns every registered adapter, enabled or not.
	Providers() []MailProvider

	// Active returns the adapters that are currently enabled.
	Active() []MailProvider

	// Resolve returns the active adapter with the preferred id when there is
	// one, otherwise the next adapter in round-robin order. Preferred lookups
	// do not advance the round-robin cursor.
	Resolve(preferredID string) (MailProvider, error)

	// Catalogue returns the public provider descriptors with live domain
	// discovery. A failing adapter reports an empty domain list; the
	// catalogue itself never fails.
	Catalogue(ctx context.Context) ([]models.ProviderDescriptor, map[string][]string)
}
