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

// GetAttachment streams attachment bytes with a download disposition.
func GetAttachment(registry interfaces.ProviderRegistry, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "GetAttachment")
		defer span.Finish()
		tracing.TagComponentRest(span)

		mailbox, err := mailboxFromQuery(c)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}
		tracing.TagMailbox(span, mailbox.ID)

		filename := c.Query("filename")
		if filename == "" {
			filename = "attachment"
		}

		provider, err := registry.Resolve(mailbox.Provider)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}

		stream, contentType, err := provider.GetAttachment(ctx, session.ResolveForCall(mailbox), c.Param("id"), filename)
		if err != nil {
			tracing.TraceErr(span, err)
			apierrors.RespondError(c, log, err)
			return
		}
		defer stream.Close()

		c.DataFromReader(http.StatusOK, -1, contentType, stream, map[string]string{
			"Content-Disposition": `attachment; filename="` + filename + `"`,
		})
	}
}
