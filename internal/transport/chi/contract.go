package chi

import (
	"context"

	domchat "github.com/cityhealth/directory/internal/domain/chat"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/domain/search/result"
	domsug "github.com/cityhealth/directory/internal/domain/suggestion"
	healthuc "github.com/cityhealth/directory/internal/usecase/health"
)

// Searcher serves provider search pages.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

// Suggester serves personalised suggestions and records feedback on them.
type Suggester interface {
	Suggest(ctx context.Context, device string, sctx domsug.Context) []domsug.Candidate
	Dismiss(ctx context.Context, device, providerID string) error
	ClearDismissals(ctx context.Context, device string) error
	RecordView(ctx context.Context, device, providerID string) error
	RecentSearches(ctx context.Context, device string) ([]domprof.SearchEntry, error)
}

// ChatResponder answers chat messages.
type ChatResponder interface {
	Reply(ctx context.Context, req domchat.Request) domchat.Reply
}

// HealthChecker reports backing store health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
