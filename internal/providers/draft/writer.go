package draft

import (
	"context"

	"echomail/internal/domain"
)

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
)

// Request carries everything one composition needs, including the API key
// resolved by the access gate (personal key first, service key second).
type Request struct {
	APIKey  string
	Brief   domain.Brief
	Profile *domain.IdentityProfile
	Catalog []domain.CatalogItem
}

// Draft is one composed marketing email.
type Draft struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// Writer turns a brief into a finished email draft.
type Writer interface {
	Compose(ctx context.Context, req Request) (*Draft, error)
}
