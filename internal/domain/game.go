package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a game provider catalog row.
type Provider struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Active     bool      `json:"active"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

// Game is a games catalog row belonging to a provider.
type Game struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Rtp        float64   `json:"rtp"`
	Active     bool      `json:"active"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
}

// GameFilter narrows a games catalog listing.
type GameFilter struct {
	ProviderID   *uuid.UUID
	ActiveOnly   bool
	FeaturedOnly bool
	Search       string
	Limit        int
}
