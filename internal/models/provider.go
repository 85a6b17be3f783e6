package models

// ProviderDescriptor is the registry's public catalogue entry for one
// provider adapter. Domains may be fetched live or fall back to a static set.
type ProviderDescriptor struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Domains []string `json:"domains"`
}
