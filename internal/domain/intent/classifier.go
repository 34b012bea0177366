package intent

import (
	"strings"

	"github.com/cityhealth/directory/internal/domain/lang"
)

// Classifier scores messages against a Lexicon. Safe for concurrent use.
type Classifier struct {
	lex *Lexicon
}

// NewClassifier creates a classifier over lex.
func NewClassifier(lex *Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Classify returns the intent whose keyword list has the highest share of
// substring hits in message. Ties keep the earlier intent; no hits yield Unknown.
// Substring matching has no word boundaries, so short keywords may over-match.
func (c *Classifier) Classify(message string, code lang.Code) Result {
	msg := strings.ToLower(message)
	best := Result{Type: Unknown}
	for _, e := range c.lex.intents {
		list := e.Keywords.For(code)
		if len(list) == 0 {
			continue
		}
		conf := float64(countHits(msg, list)) / float64(len(list))
		if conf > best.Confidence {
			best = Result{Type: e.Type, Confidence: conf}
		}
	}
	return best
}

// Scores returns the confidence of every intent in lexicon order.
func (c *Classifier) Scores(message string, code lang.Code) []Result {
	msg := strings.ToLower(message)
	out := make([]Result, 0, len(c.lex.intents))
	for _, e := range c.lex.intents {
		list := e.Keywords.For(code)
		var conf float64
		if len(list) > 0 {
			conf = float64(countHits(msg, list)) / float64(len(list))
		}
		out = append(out, Result{Type: e.Type, Confidence: conf})
	}
	return out
}

// ExtractSpecialty returns the first specialty with any keyword in message.
func (c *Classifier) ExtractSpecialty(message string, code lang.Code) (Specialty, bool) {
	msg := strings.ToLower(message)
	for _, e := range c.lex.specialties {
		if countHits(msg, e.Keywords.For(code)) > 0 {
			return e.Specialty, true
		}
	}
	return "", false
}

func countHits(msg string, list []string) int {
	n := 0
	for _, kw := range list {
		if kw != "" && strings.Contains(msg, kw) {
			n++
		}
	}
	return n
}
