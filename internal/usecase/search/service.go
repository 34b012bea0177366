package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/domain"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/filter"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/domain/search/result"
	"github.com/cityhealth/directory/internal/metrics"
)

// Service builds ranked, paginated pages of verified providers.
type Service struct {
	providers ProviderLister
	cache     PageCache
	history   HistoryRecorder
	cfg       domain.SearchConfig
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a search service. history may be nil.
func New(
	providers ProviderLister,
	cache PageCache,
	history HistoryRecorder,
	cfg domain.SearchConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		providers: providers,
		cache:     cache,
		history:   history,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Search returns one page of results for req.
// Store failures are returned as domain.ErrQueryFailed and are not retried here.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := s.now()

	page, err := s.search(ctx, req)
	if err != nil {
		kind := "query_failed"
		if errors.Is(err, domain.ErrValidation) {
			kind = "validation"
		}
		metrics.SearchErrorsTotal.WithLabelValues(kind).Inc()
		return result.Page{}, err
	}

	s.recordHistory(ctx, req)
	page.Latency = s.now().Sub(start)
	metrics.SearchResults.Observe(float64(page.Len()))
	return page, nil
}

func (s *Service) search(ctx context.Context, req *request.Request) (result.Page, error) {
	if req.Page() > s.cfg.MaxPage {
		return result.Page{}, domain.NewValidationError("page", "must be <= %d, got %d", s.cfg.MaxPage, req.Page())
	}

	key := req.CacheKey()
	if page, ok := s.cache.GetPage(ctx, key); ok {
		page.Cached = true
		return page, nil
	}

	expr, err := req.Filter()
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	after, reachable, err := s.cursorFor(ctx, req, expr)
	if err != nil {
		return result.Page{}, err
	}
	page := result.Page{Providers: []domprov.Provider{}, Applied: req.Applied()}
	if !reachable {
		return page, nil
	}

	res, err := s.list(ctx, expr, after)
	if err != nil {
		return result.Page{}, err
	}

	tokens := req.Tokens()
	page.Providers = rank(filterText(res.Providers, tokens), tokens)
	page.HasMore = res.HasMore
	page.NextCursor = res.NextCursor

	s.cache.PutPage(ctx, key, &page)
	s.cache.PutCursor(ctx, req.BaseKey(), req.Page()+1, res.NextCursor)
	return page, nil
}

// cursorFor resolves the cursor that starts req's page: the explicit one,
// else the remembered one, else by re-walking from page 1.
// reachable is false when the result set ends before the page.
func (s *Service) cursorFor(
	ctx context.Context, req *request.Request, expr filter.Expression,
) (cursor string, reachable bool, err error) {
	if req.Page() == 1 {
		return "", true, nil
	}
	if c := req.Cursor(); c != "" {
		return c, true, nil
	}
	base := req.BaseKey()
	if c, ok := s.cache.GetCursor(ctx, base, req.Page()); ok {
		return c, true, nil
	}

	s.logger.Debug("Rebuilding search cursor", zap.Int("page", req.Page()))
	for n := 1; n < req.Page(); n++ {
		res, err := s.list(ctx, expr, cursor)
		if err != nil {
			return "", false, err
		}
		if !res.HasMore {
			return "", false, nil
		}
		cursor = res.NextCursor
		s.cache.PutCursor(ctx, base, n+1, cursor)
	}
	return cursor, true, nil
}

func (s *Service) list(ctx context.Context, expr filter.Expression, after string) (domprov.ListResult, error) {
	start := time.Now()
	res, err := s.providers.List(ctx, domprov.ListQuery{
		Filter: expr,
		Order:  domprov.ByRating,
		Limit:  s.cfg.PageSize,
		After:  after,
	})
	metrics.SearchQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return domprov.ListResult{}, err
		}
		return domprov.ListResult{}, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}
	return res, nil
}

// recordHistory remembers category or location searches for the calling device.
func (s *Service) recordHistory(ctx context.Context, req *request.Request) {
	device := domain.DeviceFromContext(ctx)
	if s.history == nil || device == "" {
		return
	}
	if req.Category() == "" && req.Location() == "" {
		return
	}
	entry := domprof.SearchEntry{
		ServiceType: req.Category(),
		Location:    req.Location(),
		Query:       req.Query(),
		At:          s.now().UTC(),
	}
	if err := s.history.RecordSearch(ctx, device, entry); err != nil {
		s.logger.Warn("Failed to record search history", zap.String("device", device), zap.Error(err))
	}
}
