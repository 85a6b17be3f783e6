package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/sagar7778/emailtemp/api/errors"
	"github.com/sagar7778/emailtemp/interfaces"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/session"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

// ListMessages returns the current message summaries for a mailbox handle.
func ListMessages(registry interfaces.ProviderRegistry, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ListMessages")
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

		messages, _, err := provider.ListMessages(ctx, session.ResolveForCall(mailbox))
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, messages)
	}
}

// GetMessage returns one message with its HTML body sanitized before it
// crosses the boundary.
func GetMessage(registry interfaces.ProviderRegistry, sanitizer interfaces.HTMLSanitizer, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "GetMessage")
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

		detail, _, err := provider.GetMessage(ctx, session.ResolveForCall(mailbox), c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}

		if detail.HTML != "" {
			detail.HTML = sanitizer.Sanitize(detail.HTML)
		}
		c.JSON(http.StatusOK, detail)
	}
}
