package search

import (
	"context"

	domprof "github.com/cityhealth/directory/internal/domain/profile"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/result"
)

// ProviderLister reads pages of providers in server order.
type ProviderLister interface {
	List(ctx context.Context, q domprov.ListQuery) (domprov.ListResult, error)
}

// PageCache keeps rendered pages and the cursors that start each page.
type PageCache interface {
	GetPage(ctx context.Context, key string) (result.Page, bool)
	PutPage(ctx context.Context, key string, p *result.Page)
	GetCursor(ctx context.Context, baseKey string, n int) (string, bool)
	PutCursor(ctx context.Context, baseKey string, n int, cursor string)
}

// HistoryRecorder remembers a device's searches.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, device string, e domprof.SearchEntry) error
}
