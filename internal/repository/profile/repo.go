package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cityhealth/directory/internal/domain"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
)

// store is the consumer interface for per-device profile data (ISP).
type store interface {
	PushCapped(ctx context.Context, key string, value []byte, capacity int) error
	Range(ctx context.Context, key string, n int) ([][]byte, error)
	AddMember(ctx context.Context, key, member string) error
	Members(ctx context.Context, key string) ([]string, error)
	Del(ctx context.Context, key string) error
}

// Repo stores search history, interactions and dismissals keyed by device.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func historyKey(device string) string { return domain.KeyPrefix + "history:" + device }

func interactionKey(device string, t domprof.InteractionType) string {
	return domain.KeyPrefix + "interactions:" + string(t) + ":" + device
}

func dismissedKey(device string) string { return domain.KeyPrefix + "dismissed:" + device }

// RecordSearch prepends e to the device history, keeping the newest MaxEntries.
func (r *Repo) RecordSearch(ctx context.Context, device string, e domprof.SearchEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode search entry: %w", err)
	}
	if err := r.store.PushCapped(ctx, historyKey(device), data, domprof.MaxEntries); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// History returns the device's searches, newest first.
func (r *Repo) History(ctx context.Context, device string) ([]domprof.SearchEntry, error) {
	raw, err := r.store.Range(ctx, historyKey(device), domprof.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]domprof.SearchEntry, 0, len(raw))
	for _, b := range raw {
		var e domprof.SearchEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode search entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// LatestSearch returns the most recent search, if any.
func (r *Repo) LatestSearch(ctx context.Context, device string) (domprof.SearchEntry, bool, error) {
	raw, err := r.store.Range(ctx, historyKey(device), 1)
	if err != nil {
		return domprof.SearchEntry{}, false, fmt.Errorf("read history: %w", err)
	}
	if len(raw) == 0 {
		return domprof.SearchEntry{}, false, nil
	}
	var e domprof.SearchEntry
	if err := json.Unmarshal(raw[0], &e); err != nil {
		return domprof.SearchEntry{}, false, fmt.Errorf("decode search entry: %w", err)
	}
	return e, true, nil
}

// RecordInteraction prepends i to the list for its type, keeping the newest MaxEntries.
func (r *Repo) RecordInteraction(ctx context.Context, device string, i domprof.Interaction) error {
	data, err := json.Marshal(i)
	if err != nil {
		return fmt.Errorf("encode interaction: %w", err)
	}
	if err := r.store.PushCapped(ctx, interactionKey(device, i.Type), data, domprof.MaxEntries); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// LatestInteraction returns the newest interaction of type t, if any.
func (r *Repo) LatestInteraction(
	ctx context.Context, device string, t domprof.InteractionType,
) (domprof.Interaction, bool, error) {
	raw, err := r.store.Range(ctx, interactionKey(device, t), 1)
	if err != nil {
		return domprof.Interaction{}, false, fmt.Errorf("read interactions: %w", err)
	}
	if len(raw) == 0 {
		return domprof.Interaction{}, false, nil
	}
	var i domprof.Interaction
	if err := json.Unmarshal(raw[0], &i); err != nil {
		return domprof.Interaction{}, false, fmt.Errorf("decode interaction: %w", err)
	}
	return i, true, nil
}

// Dismiss adds providerID to the device's dismissal set. Idempotent.
func (r *Repo) Dismiss(ctx context.Context, device, providerID string) error {
	if err := r.store.AddMember(ctx, dismissedKey(device), providerID); err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	return nil
}

// Dismissed returns the device's dismissal set.
func (r *Repo) Dismissed(ctx context.Context, device string) (map[string]struct{}, error) {
	ids, err := r.store.Members(ctx, dismissedKey(device))
	if err != nil {
		return nil, fmt.Errorf("read dismissals: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ClearDismissals empties the device's dismissal set.
func (r *Repo) ClearDismissals(ctx context.Context, device string) error {
	if err := r.store.Del(ctx, dismissedKey(device)); err != nil {
		return fmt.Errorf("clear dismissals: %w", err)
	}
	return nil
}
