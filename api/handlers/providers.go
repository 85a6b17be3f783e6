package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/sagar7778/emailtemp/dto"
	"github.com/sagar7778/emailtemp/interfaces"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

// ListProviders returns the provider catalogue. Partial domain-discovery
// failures never fail the endpoint; affected providers report empty domains.
func ListProviders(registry interfaces.ProviderRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ListProviders")
		defer span.Finish()
		tracing.TagComponentRest(span)

		providers, domainsByProvider := registry.Catalogue(ctx)
		c.JSON(http.StatusOK, dto.ProvidersResponse{
			Providers:         providers,
			DomainsByProvider: domainsByProvider,
		})
	}
}
