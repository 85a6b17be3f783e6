package dto

const (
	SessionTypeRandom = "random"
	SessionTypeCustom = "custom"
)

type CreateSessionRequest struct {
	Provider string `json:"provider,omitempty"`
	Type     string `json:"type"`
	Local    string `json:"local,omitempty"`
	Domain   string `json:"domain,omitempty"`
}
