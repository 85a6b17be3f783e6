package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/models"
	"github.com/sagar7778/emailtemp/internal/session"
)

// mailboxFromQuery parses the redacted mailbox handle from the request. The
// inbound record is re-materialized so a caller-supplied secret can never
// reach an adapter: only the allow-listed fields survive.
func mailboxFromQuery(c *gin.Context) (*models.Mailbox, error) {
	raw := c.Query("mailbox")
	if raw == "" {
		return nil, errors.Wrap(er.ErrMissingMailbox, "mailbox query parameter")
	}

	var mailbox models.Mailbox
	if err := json.Unmarshal([]byte(raw), &mailbox); err != nil {
		return nil, errors.Wrapf(er.ErrMissingMailbox, "malformed mailbox: %v", err)
	}
	if !mailbox.Complete() {
		return nil, errors.Wrap(er.ErrIncompleteMailbox, "mailbox query parameter")
	}
	return session.Materialize(&mailbox), nil
}
