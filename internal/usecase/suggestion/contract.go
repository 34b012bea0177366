package suggestion

import (
	"context"

	domprof "github.com/cityhealth/directory/internal/domain/profile"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

// ProviderReader reads providers and counts profile views.
type ProviderReader interface {
	List(ctx context.Context, q domprov.ListQuery) (domprov.ListResult, error)
	Get(ctx context.Context, id string) (domprov.Provider, error)
	IncrementViews(ctx context.Context, id string) error
}

// ProfileStore holds per-device history, interactions and dismissals.
type ProfileStore interface {
	History(ctx context.Context, device string) ([]domprof.SearchEntry, error)
	LatestSearch(ctx context.Context, device string) (domprof.SearchEntry, bool, error)
	LatestInteraction(ctx context.Context, device string, t domprof.InteractionType) (domprof.Interaction, bool, error)
	RecordInteraction(ctx context.Context, device string, i domprof.Interaction) error
	Dismiss(ctx context.Context, device, providerID string) error
	Dismissed(ctx context.Context, device string) (map[string]struct{}, error)
	ClearDismissals(ctx context.Context, device string) error
}
