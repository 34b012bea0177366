package search

import (
	"sort"
	"strings"

	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

const (
	nameWeight      = 10
	specialtyWeight = 5
	categoryWeight  = 3
	cityWeight      = 2
	verifiedBonus   = 1
	ratingWeight    = 0.5
)

// filterText keeps providers whose searchable text contains every token.
func filterText(providers []domprov.Provider, tokens []string) []domprov.Provider {
	if len(tokens) == 0 {
		return providers
	}
	out := providers[:0:0]
	for i := range providers {
		text := providers[i].SearchText()
		if containsAll(text, tokens) {
			out = append(out, providers[i])
		}
	}
	return out
}

func containsAll(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// rank orders providers by relevance to tokens, keeping server order on ties.
// Without tokens the server order stands.
func rank(providers []domprov.Provider, tokens []string) []domprov.Provider {
	if len(tokens) == 0 || len(providers) < 2 {
		return providers
	}
	scores := make(map[string]float64, len(providers))
	for i := range providers {
		scores[providers[i].ID] = relevance(&providers[i], tokens)
	}
	sort.SliceStable(providers, func(i, j int) bool {
		return scores[providers[i].ID] > scores[providers[j].ID]
	})
	return providers
}

// relevance scores p against the query tokens.
func relevance(p *domprov.Provider, tokens []string) float64 {
	names := lowered(p.Name.Values())
	specialties := lowered(p.Specialty.Values())
	category := string(p.Category)
	city := strings.ToLower(p.Address.City)

	var score float64
	for _, tok := range tokens {
		score += nameWeight * float64(hits(names, tok))
		score += specialtyWeight * float64(hits(specialties, tok))
		if strings.Contains(category, tok) {
			score += categoryWeight
		}
		if city != "" && strings.Contains(city, tok) {
			score += cityWeight
		}
	}
	if p.Verified {
		score += verifiedBonus
	}
	return score + ratingWeight*p.Rating
}

func hits(fields []string, tok string) int {
	n := 0
	for _, f := range fields {
		if strings.Contains(f, tok) {
			n++
		}
	}
	return n
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
