// Package session produces credential-free mailbox handles that are safe to
// hand to an untrusted caller.
package session

import (
	"github.com/sagar7778/emailtemp/internal/models"
)

// Materialize deep-copies the allow-listed mailbox fields into a redacted
// external record. If the internal mailbox carries a secret, only the
// secret's id survives, as a SecretRef the owning adapter can use to look the
// credential back up. Everything else (passwords, tokens, expiries) is
// dropped unconditionally.
//
// Materialize is pure and idempotent: redacting an already-redacted mailbox
// returns an equal record.
func Materialize(mailbox *models.Mailbox) *models.Mailbox {
	if mailbox == nil {
		return nil
	}

	external := &models.Mailbox{
		ID:        mailbox.ID,
		Address:   mailbox.Address,
		CreatedAt: mailbox.CreatedAt,
		Provider:  mailbox.Provider,
	}

	if mailbox.Secret != nil && mailbox.Secret.ID != "" {
		external.SecretRef = &models.SecretRef{ID: mailbox.Secret.ID}
	} else if mailbox.SecretRef != nil && mailbox.SecretRef.ID != "" {
		external.SecretRef = &models.SecretRef{ID: mailbox.SecretRef.ID}
	}

	return external
}

// ResolveForCall prepares an external mailbox for an adapter read call. The
// core never reconstructs secrets; the adapter recognizes its own mailbox ids
// and re-derives credentials via SecretRef or re-authentication as needed.
func ResolveForCall(mailbox *models.Mailbox) *models.Mailbox {
	return mailbox
}
