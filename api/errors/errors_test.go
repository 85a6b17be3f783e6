package errors

import (
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	er "github.com/sagar7778/emailtemp/internal/errors"
)

func TestMapError_Taxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing mailbox", er.ErrMissingMailbox, http.StatusBadRequest, CodeBadRequest},
		{"invalid session", er.ErrInvalidSession, http.StatusBadRequest, CodeBadRequest},
		{"message not found", er.ErrMessageNotFound, http.StatusNotFound, CodeNotFound},
		{"attachment not found", er.ErrAttachmentNotFound, http.StatusNotFound, CodeNotFound},
		{"rate limited", er.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{"provider unavailable", er.ErrProviderUnavailable, http.StatusBadGateway, CodeProviderUnavailable},
		{"no active providers", er.ErrNoActiveProviders, http.StatusBadGateway, CodeProviderUnavailable},
		{"auth failed", er.ErrAuthFailed, http.StatusBadGateway, CodeProviderUnavailable},
		{"unknown", pkgerrors.New("something odd"), http.StatusInternalServerError, CodeUnknownError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, apiErr := MapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, apiErr.Error)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestMapError_SeesThroughWrapping(t *testing.T) {
	wrapped := pkgerrors.Wrap(er.ErrMessageNotFound, "mailtm: GET /messages/x")

	status, apiErr := MapError(wrapped)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, apiErr.Error)
	// upstream detail stays out of the public envelope
	assert.NotContains(t, apiErr.Message, "mailtm")
}
