package profile

import (
	"time"

	"github.com/cityhealth/directory/internal/domain/provider"
)

// MaxEntries bounds the stored history and each interaction list.
const MaxEntries = 10

// SearchEntry is one remembered search.
type SearchEntry struct {
	ServiceType provider.Category `json:"service_type,omitempty"`
	Location    string            `json:"location,omitempty"`
	Query       string            `json:"query,omitempty"`
	At          time.Time         `json:"at"`
}

// InteractionType names a recorded user action.
type InteractionType string

// Viewed is recorded when a citizen opens a provider profile.
const Viewed InteractionType = "viewed"

// Interaction is one recorded action on a provider.
type Interaction struct {
	Type       InteractionType   `json:"type"`
	ProviderID string            `json:"provider_id"`
	Category   provider.Category `json:"category"`
	At         time.Time         `json:"at"`
}
