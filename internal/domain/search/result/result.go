package result

import (
	"time"

	"github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
)

// Page is one ranked page of search results.
type Page struct {
	Providers  []provider.Provider `json:"providers"`
	HasMore    bool                `json:"has_more"`
	NextCursor string              `json:"next_cursor,omitempty"`
	Applied    request.Applied     `json:"applied"`
	Latency    time.Duration       `json:"latency"`
	Cached     bool                `json:"cached"`
}

// Len returns the number of providers on the page.
func (p *Page) Len() int { return len(p.Providers) }

// IDs returns provider identifiers in page order.
func (p *Page) IDs() []string {
	ids := make([]string, len(p.Providers))
	for i := range p.Providers {
		ids[i] = p.Providers[i].ID
	}
	return ids
}
