package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domchat "github.com/cityhealth/directory/internal/domain/chat"
	"github.com/cityhealth/directory/internal/domain/intent"
	"github.com/cityhealth/directory/internal/domain/lang"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/domain/search/result"
)

// --- Mocks ---

type mockSearcher struct {
	providers int
	err       error
	calls     []*request.Request
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) (result.Page, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return result.Page{}, m.err
	}
	page := result.Page{Applied: req.Applied()}
	for i := range m.providers {
		page.Providers = append(page.Providers, domprov.Provider{ID: fmt.Sprintf("p%d", i), Verified: true})
	}
	return page, nil
}

type mockResponder struct {
	text   string
	err    error
	called bool
	code   lang.Code
}

func (m *mockResponder) Respond(_ context.Context, _ string, code lang.Code) (string, error) {
	m.called = true
	m.code = code
	return m.text, m.err
}

func newService(search Searcher, responder Responder) *Service {
	return New(intent.NewClassifier(intent.DefaultLexicon()), search, responder, nil)
}

// --- Tests ---

func TestReply_StaticIntents(t *testing.T) {
	tests := []struct {
		msg  string
		lng  string
		want intent.Type
	}{
		{"مرحبا", "ar", intent.Greeting},
		{"merci beaucoup", "fr", intent.Thanks},
		{"what are your opening hours", "en", intent.Hours},
		{"xyzzy", "en", intent.Unknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			search := &mockSearcher{}
			svc := newService(search, nil)

			reply := svc.Reply(context.Background(), domchat.Request{Message: tt.msg, Language: tt.lng})

			if reply.Intent != tt.want {
				t.Fatalf("intent = %s, want %s", reply.Intent, tt.want)
			}
			if reply.Text != domchat.Template(tt.want, lang.Code(tt.lng)) {
				t.Errorf("text = %q", reply.Text)
			}
			if len(search.calls) != 0 {
				t.Error("static intents must not search")
			}
			if len(reply.Suggestions) == 0 {
				t.Error("expected quick replies")
			}
			if reply.Providers == nil {
				t.Error("providers should be an empty slice")
			}
		})
	}
}

func TestReply_FindProviderUsesSpecialty(t *testing.T) {
	search := &mockSearcher{providers: 8}
	svc := newService(search, nil)

	reply := svc.Reply(context.Background(), domchat.Request{Message: "I need a heart doctor", Language: "en"})

	if reply.Intent != intent.FindProvider {
		t.Fatalf("intent = %s", reply.Intent)
	}
	if len(search.calls) != 1 {
		t.Fatalf("expected 1 search, got %d", len(search.calls))
	}
	if q := search.calls[0].Query(); q != "cardio" {
		t.Errorf("query = %q, want cardio", q)
	}
	if len(reply.Providers) != domchat.MaxProviders {
		t.Errorf("providers = %d, want %d", len(reply.Providers), domchat.MaxProviders)
	}
	if reply.Text != domchat.Template(intent.FindProvider, lang.English) {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestReply_SearchFilters(t *testing.T) {
	tests := []struct {
		name  string
		req   domchat.Request
		want  intent.Type
		check func(r *request.Request) bool
	}{
		{
			"emergency",
			domchat.Request{Message: "urgence accident grave", Language: "fr"},
			intent.Emergency,
			func(r *request.Request) bool { return r.Emergency() },
		},
		{
			"location",
			domchat.Request{Message: "where is the nearest address", Language: "en", Location: "Oran"},
			intent.Location,
			func(r *request.Request) bool { return r.Location() == "Oran" },
		},
		{
			"accessibility falls back to english keywords",
			domchat.Request{Message: "wheelchair ramp", Language: "ar"},
			intent.Accessibility,
			func(r *request.Request) bool { return r.Accessible() },
		},
		{
			"home visit",
			domchat.Request{Message: "visite à domicile", Language: "fr"},
			intent.HomeVisit,
			func(r *request.Request) bool { return r.HomeVisit() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearcher{providers: 1}
			svc := newService(search, nil)

			reply := svc.Reply(context.Background(), tt.req)

			if reply.Intent != tt.want {
				t.Fatalf("intent = %s, want %s", reply.Intent, tt.want)
			}
			if len(search.calls) != 1 || !tt.check(search.calls[0]) {
				t.Errorf("search request did not carry the expected filter")
			}
			if len(reply.Providers) != 1 {
				t.Errorf("providers = %d", len(reply.Providers))
			}
		})
	}
}

func TestReply_SearchFailureApologizes(t *testing.T) {
	search := &mockSearcher{err: errors.New("store down")}
	svc := newService(search, nil)

	reply := svc.Reply(context.Background(), domchat.Request{Message: "urgence", Language: "fr"})

	if reply.Intent != intent.Emergency {
		t.Fatalf("intent = %s", reply.Intent)
	}
	if reply.Text != domchat.Apology(lang.French) {
		t.Errorf("text = %q, want french apology", reply.Text)
	}
	if len(reply.Providers) != 0 {
		t.Error("no providers on failure")
	}
}

func TestReply_NoResults(t *testing.T) {
	svc := newService(&mockSearcher{}, nil)
	reply := svc.Reply(context.Background(), domchat.Request{Message: "find a pharmacy", Language: "en"})
	if reply.Text != domchat.NoResults(lang.English) {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestReply_UnsupportedLanguage(t *testing.T) {
	svc := newService(&mockSearcher{}, nil)
	reply := svc.Reply(context.Background(), domchat.Request{Message: "hello", Language: "de-DE"})
	if reply.Intent != intent.Greeting {
		t.Fatalf("intent = %s", reply.Intent)
	}
	if reply.Text != domchat.Template(intent.Greeting, lang.English) {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestReply_ModelFallback(t *testing.T) {
	responder := &mockResponder{text: "Generated answer"}
	svc := newService(&mockSearcher{}, responder)

	reply := svc.Reply(context.Background(), domchat.Request{Message: "xyzzy", Language: "fr"})

	if !responder.called || responder.code != lang.French {
		t.Fatalf("responder called=%v code=%s", responder.called, responder.code)
	}
	if reply.Text != "Generated answer" || reply.Intent != intent.Unknown {
		t.Errorf("reply = %+v", reply)
	}
}

func TestReply_ModelFailureUsesTemplate(t *testing.T) {
	responder := &mockResponder{err: errors.New("429")}
	svc := newService(&mockSearcher{}, responder)

	reply := svc.Reply(context.Background(), domchat.Request{Message: "xyzzy", Language: "ar"})

	if reply.Text != domchat.Template(intent.Unknown, lang.Arabic) {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestReply_KnownIntentSkipsModel(t *testing.T) {
	responder := &mockResponder{text: "unused"}
	svc := newService(&mockSearcher{}, responder)
	svc.Reply(context.Background(), domchat.Request{Message: "thanks", Language: "en"})
	if responder.called {
		t.Error("responder should only answer unknown intents")
	}
}
