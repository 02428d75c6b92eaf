// Package suggest proposes mapping rules for vehicle phrases that match no
// configured pattern. Proposals are operator input only: they are never
// consulted during validation and never applied automatically.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/partstream/fitment/internal/model"
)

// Config holds suggester configuration
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string // Custom endpoint, useful for tests and proxies
	Timeout   int    // seconds
	MaxTokens int
}

// Proposal is a suggested canonical identity for an unmapped phrase
type Proposal struct {
	Phrase    string                 `json:"phrase"`
	Canonical model.CanonicalVehicle `json:"canonical"`
	Rationale string                 `json:"rationale,omitempty"`
}

// Suggester asks an OpenAI-compatible endpoint for mapping proposals
type Suggester struct {
	client *openai.Client
	config Config
}

// NewSuggester creates a suggester. An API key is required; callers should
// treat a missing key as "suggestions disabled" rather than an error path.
func NewSuggester(config Config) (*Suggester, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("suggester API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Suggester{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Suggest proposes a canonical (make, vehicle code, model) for the phrase.
// knownMakes, when non-empty, is the allowlist of makes the proposal must
// pick from; anything outside it is rejected.
func (s *Suggester) Suggest(ctx context.Context, phrase string, knownMakes []string) (*Proposal, error) {
	llmModel := s.config.Model
	if llmModel == "" {
		llmModel = openai.GPT4oMini
	}
	maxTokens := s.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	timeout := time.Duration(s.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You map free-text vehicle phrases from parts catalogs to canonical vehicle identities. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(phrase, knownMakes),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1, // Near-deterministic; this is a lookup, not prose
	})
	if err != nil {
		return nil, fmt.Errorf("suggestion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no suggestion returned")
	}

	proposal, err := decodeProposal(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	proposal.Phrase = phrase

	if len(knownMakes) > 0 && !containsFold(knownMakes, proposal.Canonical.Make) {
		return nil, fmt.Errorf("suggested make %q is not a known make", proposal.Canonical.Make)
	}
	return proposal, nil
}

// buildPrompt constructs the suggestion prompt
func buildPrompt(phrase string, knownMakes []string) string {
	prompt := fmt.Sprintf(`A parts catalog uses the vehicle phrase %q, which matches none of our configured mappings.

Propose the canonical identity as JSON:
{"canonical": {"make": "...", "vehicle_code": "...", "model": "..."}, "rationale": "..."}

The vehicle_code is a short uppercase code derived from the model name (e.g. "CAM" for Camry).`, phrase)

	if len(knownMakes) > 0 {
		prompt += "\n\nThe make MUST be one of: " + strings.Join(knownMakes, ", ")
	}
	return prompt
}

// decodeProposal parses the model's JSON reply, tolerating code fences
func decodeProposal(content string) (*Proposal, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var proposal Proposal
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &proposal); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	if proposal.Canonical.Make == "" || proposal.Canonical.Model == "" {
		return nil, fmt.Errorf("suggestion missing make or model")
	}
	return &proposal, nil
}

// containsFold checks a slice for a string, case-insensitively
func containsFold(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
