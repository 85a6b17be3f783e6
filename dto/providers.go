package dto

import (
	"github.com/sagar7778/emailtemp/internal/models"
)

type ProvidersResponse struct {
	Providers         []models.ProviderDescriptor `json:"providers"`
	DomainsByProvider map[string][]string         `json:"domainsByProvider"`
}
