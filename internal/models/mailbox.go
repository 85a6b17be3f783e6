package models

import (
	"time"
)

// Mailbox is a provisioned disposable email identity. The internal form may
// carry Secret, which holds provider credential state and must never be
// serialized to a caller; the external form carries at most SecretRef.
type Mailbox struct {
	ID        string         `json:"id"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"createdAt"`
	Provider  string         `json:"provider"`
	Secret    *MailboxSecret `json:"secret,omitempty"`
	SecretRef *SecretRef     `json:"secretRef,omitempty"`
}

// MailboxSecret is adapter-owned credential state. Only the adapter that
// created the mailbox knows how to interpret it.
type MailboxSecret struct {
	ID           string    `json:"id"`
	Password     string    `json:"password,omitempty"`
	Token        string    `json:"token,omitempty"`
	TokenExpires time.Time `json:"tokenExpires,omitempty"`
}

// SecretRef is the only credential-adjacent field allowed to cross the trust
// boundary: a provider-side correlation id, not usable for authentication
// without going back through the adapter.
type SecretRef struct {
	ID string `json:"id"`
}

// Complete reports whether the mailbox carries everything an adapter needs
// to address it upstream.
func (m *Mailbox) Complete() bool {
	return m != nil && m.ID != "" && m.Address != "" && m.Provider != ""
}
