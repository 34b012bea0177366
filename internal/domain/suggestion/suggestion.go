package suggestion

import "github.com/cityhealth/directory/internal/domain/provider"

// MaxCandidates bounds the output of one suggestion round.
const MaxCandidates = 10

// Source is the signal that produced a candidate, in priority order.
type Source string

const (
	Recency    Source = "recency"
	Popularity Source = "popularity"
	Proximity  Source = "proximity"
	Affinity   Source = "affinity"
	SafetyNet  Source = "safety_net"
)

// Sources lists every source in priority order.
var Sources = []Source{Recency, Popularity, Proximity, Affinity, SafetyNet}

var tags = map[Source]struct{ reason, icon string }{
	Recency:    {"Based on your recent search", "history"},
	Popularity: {"Popular in the directory", "star"},
	Proximity:  {"Near you", "map-pin"},
	Affinity:   {"Similar to what you viewed", "eye"},
	SafetyNet:  {"Open 24/7", "alert"},
}

// Reason returns the human-readable explanation for s.
func (s Source) Reason() string { return tags[s].reason }

// Icon returns the icon tag for s.
func (s Source) Icon() string { return tags[s].icon }

// Candidate is a provider decorated with the source that produced it.
type Candidate struct {
	Provider   provider.Provider `json:"provider"`
	Reason     string            `json:"reason"`
	ReasonIcon string            `json:"reason_icon"`
	Source     Source            `json:"source"`
	// DistanceMeters is set when the caller supplied coordinates and the provider has a location.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// NewCandidate tags p with s.
func NewCandidate(p provider.Provider, s Source) Candidate {
	return Candidate{Provider: p, Reason: s.Reason(), ReasonIcon: s.Icon(), Source: s}
}

// Context carries the optional caller position.
type Context struct {
	// UserLocation is a city name.
	UserLocation string
	// Coordinates, when set, annotate candidates with a distance.
	Coordinates *provider.Location
}
