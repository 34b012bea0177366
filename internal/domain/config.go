package domain

import "time"

// KeyPrefix namespaces every key this service writes to a shared key-value store.
const KeyPrefix = "cityhealth:"

// ProvidersCollection is the document collection holding provider records.
const ProvidersCollection = "providers"

// SearchConfig holds the search tuning knobs.
type SearchConfig struct {
	PageSize  int
	MaxPage   int
	CacheTTL  time.Duration
	CursorTTL time.Duration
}

// DefaultSearchConfig returns the production defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		PageSize:  20,
		MaxPage:   50,
		CacheTTL:  5 * time.Minute,
		CursorTTL: 30 * time.Minute,
	}
}
