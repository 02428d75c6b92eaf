package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewSuggester_RequiresAPIKey(t *testing.T) {
	if _, err := NewSuggester(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestSuggest_Success(t *testing.T) {
	server := completionServer(t, `{"canonical": {"make": "Toyota", "vehicle_code": "CAM", "model": "Camry"}, "rationale": "Camry trim phrase"}`)
	defer server.Close()

	s, err := NewSuggester(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create suggester: %v", err)
	}

	proposal, err := s.Suggest(context.Background(), "Camry LE Sedan", nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if proposal.Phrase != "Camry LE Sedan" {
		t.Errorf("expected phrase carried over, got %q", proposal.Phrase)
	}
	if proposal.Canonical.Make != "Toyota" || proposal.Canonical.Model != "Camry" {
		t.Errorf("unexpected canonical: %+v", proposal.Canonical)
	}
	if proposal.Canonical.VehicleCode != "CAM" {
		t.Errorf("expected vehicle code CAM, got %q", proposal.Canonical.VehicleCode)
	}
}

func TestSuggest_ToleratesCodeFences(t *testing.T) {
	server := completionServer(t, "```json\n{\"canonical\": {\"make\": \"Honda\", \"vehicle_code\": \"CIV\", \"model\": \"Civic\"}}\n```")
	defer server.Close()

	s, err := NewSuggester(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create suggester: %v", err)
	}

	proposal, err := s.Suggest(context.Background(), "Civic Si", nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if proposal.Canonical.Model != "Civic" {
		t.Errorf("unexpected canonical: %+v", proposal.Canonical)
	}
}

func TestSuggest_UnknownMakeRejected(t *testing.T) {
	server := completionServer(t, `{"canonical": {"make": "Trabant", "vehicle_code": "TRA", "model": "601"}}`)
	defer server.Close()

	s, err := NewSuggester(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create suggester: %v", err)
	}

	_, err = s.Suggest(context.Background(), "Trabant 601", []string{"Toyota", "Honda"})
	if err == nil {
		t.Error("expected rejection for make outside the allowlist")
	}
}

func TestSuggest_AllowlistIsCaseInsensitive(t *testing.T) {
	server := completionServer(t, `{"canonical": {"make": "TOYOTA", "vehicle_code": "CAM", "model": "Camry"}}`)
	defer server.Close()

	s, err := NewSuggester(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create suggester: %v", err)
	}

	if _, err := s.Suggest(context.Background(), "Camry", []string{"toyota"}); err != nil {
		t.Errorf("expected case-insensitive allowlist match, got %v", err)
	}
}

func TestSuggest_MalformedReply(t *testing.T) {
	server := completionServer(t, "I think this is probably a Camry")
	defer server.Close()

	s, err := NewSuggester(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create suggester: %v", err)
	}

	if _, err := s.Suggest(context.Background(), "Camry", nil); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}

func TestDecodeProposal_MissingFields(t *testing.T) {
	if _, err := decodeProposal(`{"canonical": {"make": "Toyota"}}`); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := decodeProposal(`{"canonical": {"model": "Camry"}}`); err == nil {
		t.Error("expected error for missing make")
	}
}
