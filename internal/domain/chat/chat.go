package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/cityhealth/directory/internal/domain"
	"github.com/cityhealth/directory/internal/domain/intent"
	"github.com/cityhealth/directory/internal/domain/provider"
)

// MaxMessageLength bounds one chat message, in characters.
const MaxMessageLength = 1000

// MaxProviders bounds the providers attached to a search-backed reply.
const MaxProviders = 5

// Request is one citizen message. The conversation is memoryless.
type Request struct {
	Message  string `json:"message"`
	Language string `json:"language"`
	// Location is an optional city used by location replies.
	Location string `json:"location,omitempty"`
}

// Validate rejects empty and oversized messages.
func (r *Request) Validate() error {
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		return domain.NewValidationError("message", "is required")
	}
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return domain.NewValidationError("message", "too long (max %d chars)", MaxMessageLength)
	}
	return nil
}

// Reply is the bot's answer to one message.
type Reply struct {
	Text        string              `json:"text"`
	Intent      intent.Type         `json:"intent"`
	Confidence  float64             `json:"confidence"`
	Suggestions []string            `json:"suggestions"`
	Providers   []provider.Provider `json:"providers"`
}
