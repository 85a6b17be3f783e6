package errors

import "github.com/pkg/errors"

var (
	// request validation errors
	ErrMissingMailbox    = errors.New("mailbox is missing")
	ErrIncompleteMailbox = errors.New("mailbox is incomplete")
	ErrMissingLocalPart  = errors.New("local part is required for custom mailbox")
	ErrMissingDomain     = errors.New("domain is required for custom mailbox")
	ErrInvalidSession    = errors.New("invalid session request")

	// provider errors
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderDisabled    = errors.New("provider is not enabled")
	ErrNoActiveProviders   = errors.New("no active providers")
	ErrConnectionTimeout   = errors.New("connection timeout")
	ErrAuthFailed          = errors.New("provider authentication failed")

	// message errors
	ErrMessageNotFound    = errors.New("message not found")
	ErrAttachmentNotFound = errors.New("attachment not found")

	// rate guard
	ErrRateLimited = errors.New("rate limited")
)
