// Package errors maps internal failures onto the public error envelope.
// Internal error details never cross the API boundary; callers see a stable
// machine-readable code plus a generic message.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/logger"
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnknownError        = "UNKNOWN_ERROR"
)

type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MapError classifies err into the public taxonomy.
func MapError(err error) (int, APIError) {
	switch {
	case stderrors.Is(err, er.ErrMissingMailbox),
		stderrors.Is(err, er.ErrIncompleteMailbox),
		stderrors.Is(err, er.ErrMissingLocalPart),
		stderrors.Is(err, er.ErrMissingDomain),
		stderrors.Is(err, er.ErrInvalidSession):
		return http.StatusBadRequest, APIError{CodeBadRequest, "Invalid request."}

	case stderrors.Is(err, er.ErrMessageNotFound),
		stderrors.Is(err, er.ErrAttachmentNotFound):
		return http.StatusNotFound, APIError{CodeNotFound, "Resource not found."}

	case stderrors.Is(err, er.ErrRateLimited):
		return http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests. Please try again."}

	case stderrors.Is(err, er.ErrProviderUnavailable),
		stderrors.Is(err, er.ErrProviderDisabled),
		stderrors.Is(err, er.ErrNoActiveProviders),
		stderrors.Is(err, er.ErrConnectionTimeout),
		stderrors.Is(err, er.ErrAuthFailed):
		return http.StatusBadGateway, APIError{CodeProviderUnavailable, "Mail provider is currently unavailable."}

	default:
		return http.StatusInternalServerError, APIError{CodeUnknownError, "Something went wrong."}
	}
}

// RespondError writes the mapped error envelope. Only the public code is
// logged, never raw upstream payloads.
func RespondError(c *gin.Context, log logger.Logger, err error) {
	status, apiErr := MapError(err)
	if log != nil {
		log.Warnf("api error: %s", apiErr.Error)
	}
	c.JSON(status, apiErr)
}

// RespondRateLimited writes the throttled envelope with status 429.
func RespondRateLimited(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests. Please try again."})
}
