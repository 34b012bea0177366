package suggestion

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cityhealth/directory/internal/domain"
	"github.com/cityhealth/directory/internal/domain/geo"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/filter"
	domsug "github.com/cityhealth/directory/internal/domain/suggestion"
	"github.com/cityhealth/directory/internal/metrics"
)

// Per-source result limits.
const (
	recencyLimit    = 3
	popularityLimit = 5
	proximityLimit  = 3
	affinityLimit   = 3
	safetyNetLimit  = 2
)

// dismissalsLabel tags dismissal-set read failures in the source error metric.
const dismissalsLabel = "dismissals"

// Service produces personalised provider suggestions for a device.
type Service struct {
	providers ProviderReader
	profiles  ProfileStore
	logger    *zap.Logger
	shuffle   func(n int, swap func(i, j int))
	now       func() time.Time
}

// New creates a suggestion service.
func New(providers ProviderReader, profiles ProfileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		providers: providers,
		profiles:  profiles,
		logger:    logger,
		shuffle:   rand.Shuffle,
		now:       time.Now,
	}
}

// WithShuffle replaces the random permutation applied to merged candidates.
func (s *Service) WithShuffle(shuffle func(n int, swap func(i, j int))) *Service {
	s.shuffle = shuffle
	return s
}

// Suggest merges every signal source into at most domsug.MaxCandidates candidates.
// It never fails: a failing source contributes nothing, and an unreadable
// dismissal set yields no candidates at all so dismissed providers stay hidden.
func (s *Service) Suggest(ctx context.Context, device string, sctx domsug.Context) []domsug.Candidate {
	results := make([][]domprov.Provider, len(domsug.Sources))
	var (
		dismissed     map[string]struct{}
		dismissedRead error
	)

	var g errgroup.Group
	for i, src := range domsug.Sources {
		g.Go(func() error {
			providers, err := s.fetch(ctx, src, device, sctx)
			if err != nil {
				s.logger.Warn("Suggestion source failed", zap.String("source", string(src)), zap.Error(err))
				metrics.SuggestionSourceErrorsTotal.WithLabelValues(string(src)).Inc()
				return nil
			}
			results[i] = providers
			return nil
		})
	}
	g.Go(func() error {
		dismissed, dismissedRead = s.dismissed(ctx, device)
		return nil
	})
	_ = g.Wait()

	if dismissedRead != nil {
		s.logger.Warn("Failed to read dismissals, suppressing suggestions",
			zap.String("device", device), zap.Error(dismissedRead))
		metrics.SuggestionSourceErrorsTotal.WithLabelValues(dismissalsLabel).Inc()
		metrics.SuggestionCandidates.Observe(0)
		return []domsug.Candidate{}
	}

	out := merge(results, dismissed)
	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > domsug.MaxCandidates {
		out = out[:domsug.MaxCandidates]
	}
	if sctx.Coordinates != nil {
		annotateDistance(out, *sctx.Coordinates)
	}
	metrics.SuggestionCandidates.Observe(float64(len(out)))
	return out
}

// merge tags providers with their source in priority order. The first source
// to produce a provider wins; dismissed and unverified providers are dropped.
func merge(results [][]domprov.Provider, dismissed map[string]struct{}) []domsug.Candidate {
	out := make([]domsug.Candidate, 0, domsug.MaxCandidates)
	seen := make(map[string]struct{})
	for i, providers := range results {
		for _, p := range providers {
			if !p.Verified {
				continue
			}
			if _, ok := dismissed[p.ID]; ok {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, domsug.NewCandidate(p, domsug.Sources[i]))
		}
	}
	return out
}

func annotateDistance(candidates []domsug.Candidate, from domprov.Location) {
	for i := range candidates {
		loc := candidates[i].Provider.Location
		if loc == nil {
			continue
		}
		d := geo.Distance(from.Point(), loc.Point())
		candidates[i].DistanceMeters = &d
	}
}

func (s *Service) dismissed(ctx context.Context, device string) (map[string]struct{}, error) {
	if device == "" {
		return nil, nil
	}
	set, err := s.profiles.Dismissed(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("read dismissals: %w", err)
	}
	return set, nil
}

func (s *Service) fetch(
	ctx context.Context, src domsug.Source, device string, sctx domsug.Context,
) ([]domprov.Provider, error) {
	switch src {
	case domsug.Recency:
		return s.recency(ctx, device)
	case domsug.Popularity:
		return s.popularity(ctx)
	case domsug.Proximity:
		return s.proximity(ctx, sctx.UserLocation)
	case domsug.Affinity:
		return s.affinity(ctx, device)
	case domsug.SafetyNet:
		return s.safetyNet(ctx)
	default:
		return nil, fmt.Errorf("unknown source %q", src)
	}
}

func (s *Service) recency(ctx context.Context, device string) ([]domprov.Provider, error) {
	if device == "" {
		return nil, nil
	}
	entry, ok, err := s.profiles.LatestSearch(ctx, device)
	if err != nil || !ok {
		return nil, err
	}
	if entry.ServiceType == "" && entry.Location == "" {
		return nil, nil
	}
	var b filter.Builder
	b.Match(domprov.FieldCategory, string(entry.ServiceType)).
		Match(domprov.FieldCity, entry.Location)
	return s.top(ctx, &b, domprov.ByRating, recencyLimit)
}

func (s *Service) popularity(ctx context.Context) ([]domprov.Provider, error) {
	return s.top(ctx, &filter.Builder{}, domprov.ByPopularity, popularityLimit)
}

func (s *Service) proximity(ctx context.Context, city string) ([]domprov.Provider, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil
	}
	var b filter.Builder
	b.Match(domprov.FieldCity, city)
	return s.top(ctx, &b, domprov.ByRating, proximityLimit)
}

func (s *Service) affinity(ctx context.Context, device string) ([]domprov.Provider, error) {
	if device == "" {
		return nil, nil
	}
	viewed, ok, err := s.profiles.LatestInteraction(ctx, device, domprof.Viewed)
	if err != nil || !ok {
		return nil, err
	}
	var b filter.Builder
	b.Match(domprov.FieldCategory, string(viewed.Category)).
		Exclude(domprov.FieldID, viewed.ProviderID)
	return s.top(ctx, &b, domprov.ByRating, affinityLimit)
}

func (s *Service) safetyNet(ctx context.Context) ([]domprov.Provider, error) {
	var b filter.Builder
	b.Flag(domprov.FieldEmergency, true)
	return s.top(ctx, &b, domprov.ByRating, safetyNetLimit)
}

// top lists the first limit verified providers matching b.
func (s *Service) top(ctx context.Context, b *filter.Builder, order domprov.Order, limit int) ([]domprov.Provider, error) {
	expr, err := b.Flag(domprov.FieldVerified, true).Build()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	res, err := s.providers.List(ctx, domprov.ListQuery{Filter: expr, Order: order, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return res.Providers, nil
}

// Dismiss hides providerID from the device's future suggestions. Idempotent.
func (s *Service) Dismiss(ctx context.Context, device, providerID string) error {
	if device == "" {
		return domain.ErrDeviceRequired
	}
	if strings.TrimSpace(providerID) == "" {
		return domain.NewValidationError("provider_id", "is required")
	}
	if err := s.profiles.Dismiss(ctx, device, providerID); err != nil {
		return fmt.Errorf("dismiss suggestion: %w", err)
	}
	return nil
}

// RecentSearches returns the device's remembered searches, newest first.
func (s *Service) RecentSearches(ctx context.Context, device string) ([]domprof.SearchEntry, error) {
	if device == "" {
		return nil, domain.ErrDeviceRequired
	}
	entries, err := s.profiles.History(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return entries, nil
}

// ClearDismissals empties the device's dismissal set.
func (s *Service) ClearDismissals(ctx context.Context, device string) error {
	if device == "" {
		return domain.ErrDeviceRequired
	}
	if err := s.profiles.ClearDismissals(ctx, device); err != nil {
		return fmt.Errorf("clear dismissals: %w", err)
	}
	return nil
}

// RecordView registers that a provider profile was opened. The interaction is
// remembered for identified devices only; the view counter always moves.
func (s *Service) RecordView(ctx context.Context, device, providerID string) error {
	p, err := s.providers.Get(ctx, providerID)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	if device != "" {
		err = s.profiles.RecordInteraction(ctx, device, domprof.Interaction{
			Type:       domprof.Viewed,
			ProviderID: p.ID,
			Category:   p.Category,
			At:         s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("record view: %w", err)
		}
	}
	if err := s.providers.IncrementViews(ctx, p.ID); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
