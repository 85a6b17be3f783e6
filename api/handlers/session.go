package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/sagar7778/emailtemp/api/errors"
	"github.com/sagar7778/emailtemp/dto"
	"github.com/sagar7778/emailtemp/interfaces"
	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/session"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

// CreateSession provisions a mailbox and returns its redacted handle. The
// caller persists the handle client-side; nothing is stored server-side.
func CreateSession(registry interfaces.ProviderRegistry, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CreateSession")
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req dto.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, errors.Wrapf(er.ErrInvalidSession, "bind: %v", err))
			return
		}

		local := ""
		switch req.Type {
		case dto.SessionTypeRandom:
			// empty local part requests a random one from the adapter
		case dto.SessionTypeCustom:
			if req.Local == "" {
				apierrors.RespondError(c, log, er.ErrMissingLocalPart)
				return
			}
			if req.Domain == "" {
				apierrors.RespondError(c, log, er.ErrMissingDomain)
				return
			}
			local = req.Local
		default:
			apierrors.RespondError(c, log, errors.Wrap(er.ErrInvalidSession, "type must be random or custom"))
			return
		}

		provider, err := registry.Resolve(req.Provider)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}
		tracing.TagProvider(span, provider.ID())

		mailbox, err := provider.CreateMailbox(ctx, local, req.Domain)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}
		tracing.TagMailbox(span, mailbox.ID)

		c.JSON(http.StatusOK, session.Materialize(mailbox))
	}
}

// DeleteSession removes the mailbox upstream, best effort.
func DeleteSession(registry interfaces.ProviderRegistry, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DeleteSession")
		defer span.Finish()
		tracing.TagComponentRest(span)

		mailbox, err := mailboxFromQuery(c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}
		tracing.TagMailbox(span, mailbox.ID)

		provider, err := registry.Resolve(mailbox.Provider)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}

		if err := provider.DeleteMailbox(ctx, session.ResolveForCall(mailbox)); err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": mailbox.ID})
	}
}
