package interfaces

import (
	"context"
	"io"

	"github.com/sagar7778/emailtemp/internal/models"
)

// MailProvider is the normalized capability contract over one upstream
// disposable-mail backend. Each adapter handles its backend's auth model and
// lifetime quirks internally.
//
// Read paths (Domains, ListMessages) degrade to empty results on network
// failure; write paths (CreateMailbox, GetMessage, GetAttachment) propagate
// errors since there is no safe fallback value for them.
//
// Authenticated adapters may refresh credentials transparently before a call;
// when they do, the updated mailbox is returned alongside the result so the
// caller can persist it into its own resolution path. A nil updated mailbox
// means nothing changed.
type MailProvider interface {
	ID() string
	Label() string

	// Enabled reports whether the adapter has the configuration it needs.
	// Disabled adapters are never selected by the registry.
	Enabled() bool

	Domains(ctx context.Context) ([]string, error)

	// ListMailboxes enumerates mailboxes known upstream. Backends without
	// enumeration support return an empty list, not an error.
	ListMailboxes(ctx context.Context) ([]models.Mailbox, error)

	// CreateMailbox provisions a mailbox. An empty local part produces a
	// random collision-resistant one; a non-empty local part is used
	// verbatim. An empty domain falls back to the adapter default.
	CreateMailbox(ctx context.Context, local, domain string) (*models.Mailbox, error)

	ListMessages(ctx context.Context, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error)

	GetMessage(ctx context.Context, mailbox *models.Mailbox, messageID string) (*models.MessageDetail, *models.Mailbox, error)

	// GetAttachment returns the attachment byte stream and its content type.
	GetAttachment(ctx context.Context, mailbox *models.Mailbox, messageID, filename string) (io.ReadCloser, string, error)

	// DeleteMailbox removes the mailbox upstream. Backends without delete
	// support implement this as a no-op.
	DeleteMailbox(ctx context.Context, mailbox *models.Mailbox) error
}
