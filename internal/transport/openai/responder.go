package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/domain/lang"
	"github.com/cityhealth/directory/internal/metrics"
)

var errEmptyReply = errors.New("empty completion")

// systemPrompts keep the model on directory navigation and away from diagnosis.
var systemPrompts = map[lang.Code]string{
	lang.English: "You are the CityHealth directory assistant. Help citizens find doctors, clinics, " +
		"hospitals, pharmacies and labs in the city. Never diagnose or give medical advice. " +
		"For emergencies tell them to call 14. Answer in English in at most three sentences.",
	lang.French: "Tu es l'assistant de l'annuaire CityHealth. Aide les citoyens à trouver médecins, " +
		"cliniques, hôpitaux, pharmacies et laboratoires de la ville. Ne pose jamais de diagnostic. " +
		"En cas d'urgence, dis d'appeler le 14. Réponds en français en trois phrases au plus.",
	lang.Arabic: "أنت مساعد دليل CityHealth. ساعد المواطنين في العثور على الأطباء والعيادات والمستشفيات " +
		"والصيدليات والمختبرات في المدينة. لا تقدم أي تشخيص طبي. في حالة الطوارئ اطلب منهم الاتصال بالرقم 14. " +
		"أجب بالعربية في ثلاث جمل على الأكثر.",
}

// Responder answers free-form chat messages through an OpenAI-compatible chat API.
type Responder struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// Config holds the chat model settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewResponder creates an OpenAI-compatible chat responder.
func NewResponder(cfg *Config) *Responder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Responder{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Respond returns a short model-generated reply to message in code.
func (r *Responder) Respond(ctx context.Context, message string, code lang.Code) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompts[code.OrDefault()]},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	metrics.ChatModelDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyReply
	}
	r.logger.Debug("Model reply",
		zap.String("model", r.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}

// Ping verifies API availability via ListModels (free endpoint).
func (r *Responder) Ping(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("chat API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("chat request failed: %w", err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
