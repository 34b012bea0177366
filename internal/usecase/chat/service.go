package chat

import (
	"context"

	"go.uber.org/zap"

	domchat "github.com/cityhealth/directory/internal/domain/chat"
	"github.com/cityhealth/directory/internal/domain/intent"
	"github.com/cityhealth/directory/internal/domain/lang"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/metrics"
)

// Service answers chat messages by intent.
type Service struct {
	classifier *intent.Classifier
	search     Searcher
	responder  Responder
	logger     *zap.Logger
}

// New creates a chat service. responder may be nil, in which case unknown
// messages get the static template.
func New(classifier *intent.Classifier, search Searcher, responder Responder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{classifier: classifier, search: search, responder: responder, logger: logger}
}

// Reply classifies req and builds the answer. It never fails: search and
// model errors degrade to localized static text.
func (s *Service) Reply(ctx context.Context, req domchat.Request) domchat.Reply {
	code := lang.Parse(req.Language)
	out := code.OrDefault()
	res := s.classifier.Classify(req.Message, code)
	metrics.ChatIntentsTotal.WithLabelValues(string(res.Type), string(out)).Inc()

	reply := domchat.Reply{
		Intent:      res.Type,
		Confidence:  res.Confidence,
		Suggestions: domchat.QuickReplies(out),
		Providers:   []domprov.Provider{},
	}

	switch {
	case res.Type.Searches():
		s.searchReply(ctx, &reply, req, code)
	case res.Type == intent.Unknown && s.responder != nil:
		reply.Text = s.generate(ctx, req.Message, out)
	default:
		reply.Text = domchat.Template(res.Type, out)
	}
	return reply
}

func (s *Service) searchReply(ctx context.Context, reply *domchat.Reply, req domchat.Request, code lang.Code) {
	out := code.OrDefault()
	params := request.Params{Page: 1}
	switch reply.Intent {
	case intent.FindProvider:
		if specialty, ok := s.classifier.ExtractSpecialty(req.Message, code); ok {
			params.Query = specialty.SearchTerm()
		}
	case intent.Emergency:
		params.Emergency = true
	case intent.Location:
		params.Location = req.Location
	case intent.Accessibility:
		params.Accessible = true
	case intent.HomeVisit:
		params.HomeVisit = true
	}

	sreq, err := request.New(params)
	if err != nil {
		s.logger.Warn("Chat search request rejected", zap.String("intent", string(reply.Intent)), zap.Error(err))
		reply.Text = domchat.Apology(out)
		return
	}
	page, err := s.search.Search(ctx, &sreq)
	if err != nil {
		s.logger.Warn("Chat search failed", zap.String("intent", string(reply.Intent)), zap.Error(err))
		reply.Text = domchat.Apology(out)
		return
	}
	if page.Len() == 0 {
		reply.Text = domchat.NoResults(out)
		return
	}

	providers := page.Providers
	if len(providers) > domchat.MaxProviders {
		providers = providers[:domchat.MaxProviders]
	}
	reply.Text = domchat.Template(reply.Intent, out)
	reply.Providers = providers
}

func (s *Service) generate(ctx context.Context, message string, code lang.Code) string {
	text, err := s.responder.Respond(ctx, message, code)
	if err != nil || text == "" {
		metrics.ChatFallbackTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Model reply failed, using template", zap.Error(err))
		return domchat.Template(intent.Unknown, code)
	}
	metrics.ChatFallbackTotal.WithLabelValues("ok").Inc()
	return text
}
