package draft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echomail/internal/domain"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestOpenAIWriterComposesFromChatResponse(t *testing.T) {
	var gotAuth string
	var gotPayload openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "**Hola** desde la panadería."}},
			},
		})
	}))
	defer srv.Close()

	writer := NewOpenAIWriter(OpenAIOptions{BaseURL: srv.URL, Model: "gpt-4o"})
	req := Request{
		APIKey: "sk-test",
		Brief: domain.Brief{
			Transcript: "hoy he sacado pan de masa madre",
			Technique:  domain.TechniqueStorytelling,
			Length:     domain.LengthShort,
			Locale:     "es",
		},
	}
	draft, err := writer.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if draft.Provider != openAIProviderName {
		t.Fatalf("Provider = %q, want %q", draft.Provider, openAIProviderName)
	}
	if draft.Email != "**Hola** desde la panadería." {
		t.Fatalf("unexpected email %q", draft.Email)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	sys := gotPayload.Messages[0].Content
	if !strings.Contains(sys, "Historia Inspiracional") {
		t.Fatalf("system prompt missing technique guide: %s", sys)
	}
	if !strings.Contains(sys, "80-120 palabras") {
		t.Fatalf("system prompt missing length guide: %s", sys)
	}
	if !strings.Contains(gotPayload.Messages[1].Content, "masa madre") {
		t.Fatalf("user prompt missing transcript: %s", gotPayload.Messages[1].Content)
	}
}

func TestOpenAIWriterFallsBackOnTransportError(t *testing.T) {
	var reason string
	writer := NewOpenAIWriter(OpenAIOptions{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		OnFallback: func(r string, err error) { reason = r },
	})
	draft, err := writer.Compose(context.Background(), Request{
		APIKey: "sk-test",
		Brief:  domain.Brief{Transcript: "Primera frase. Segunda frase.", Locale: "es"},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if draft.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want %q", draft.Provider, staticProviderName)
	}
	if reason != "http_request" {
		t.Fatalf("fallback reason = %q", reason)
	}
}

func TestOpenAIWriterMissingKeyUsesFallback(t *testing.T) {
	var reason string
	writer := NewOpenAIWriter(OpenAIOptions{OnFallback: func(r string, err error) { reason = r }})
	draft, err := writer.Compose(context.Background(), Request{
		Brief: domain.Brief{Transcript: "hola", Locale: "es"},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if draft.Provider != staticProviderName || reason != "missing_api_key" {
		t.Fatalf("provider=%q reason=%q", draft.Provider, reason)
	}
}

func TestBuildSystemPromptIncludesProfileVoice(t *testing.T) {
	req := Request{
		Brief: domain.Brief{
			Transcript: "hola",
			Technique:  domain.TechniqueValueOffer,
			Length:     domain.LengthMedium,
			Locale:     "en",
		},
		Profile: &domain.IdentityProfile{
			Brand:             "Sol",
			CompanyContext:    "panadería artesanal en Girona",
			UseCompanyContext: true,
			Docs:              []string{"escribimos cercano y sin tecnicismos", ""},
		},
		Catalog: []domain.CatalogItem{{Name: "Croissant", Price: "2.50"}},
	}
	sys := buildSystemPrompt(req)
	for _, want := range []string{"Sol", "Girona", "sin tecnicismos", "Croissant", "inglés"} {
		if !strings.Contains(sys, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, sys)
		}
	}
}

func TestStaticWriterBoldsHookAndCTA(t *testing.T) {
	draft, err := NewStaticWriter().Compose(context.Background(), Request{
		Brief: domain.Brief{Transcript: "Hoy pasó algo increíble. Os lo cuento.", Locale: "es"},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.HasPrefix(draft.Email, "**Hoy pasó algo increíble.**") {
		t.Fatalf("hook not bolded: %q", draft.Email)
	}
	if !strings.Contains(draft.Email, "**Responde a este email y hablamos.**") {
		t.Fatalf("missing CTA: %q", draft.Email)
	}
}
