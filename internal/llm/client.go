// Package llm talks to the LLM extraction collaborator: one call that
// pulls structured restaurant records out of raw text, and one that
// scores the text's sentiment. Calls are paced by the Coordinator so
// scraping bursts never exceed the provider's request budget.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrEmptyPayload marks a response that came back blank or unparseable.
// The coordinator retries this class separately from transport errors.
var ErrEmptyPayload = errors.New("empty or invalid response payload")

const (
	maxExtractionInput = 8000
	maxSentimentInput  = 4000
)

const extractionPrompt = `You are a restaurant data extractor for %s. Extract restaurant information from this text.

For EACH restaurant mentioned in %s, extract:
- name: The exact restaurant name (be precise, include "The" if part of the name)
- vibe: A short description of the atmosphere (e.g., "cozy date night spot", "casual family-friendly")
- cuisine_tags: Specific cuisine types (e.g., ["Japanese", "Ramen"], not just "Asian")
- recommended_dishes: Specific dishes mentioned positively
- price_hint: Any price mentions (e.g., "affordable", "splurge", "$$", "under $20")
- sentiment: Overall sentiment about this restaurant ("positive", "negative", "neutral", "mixed")

Only extract REAL restaurants in %s.

TEXT TO ANALYZE:
%s

Return ONLY a valid JSON array. No explanation, no markdown:
[{"name": "...", "vibe": "...", "cuisine_tags": [...], "recommended_dishes": [...], "price_hint": "...", "sentiment": "..."}]

If no restaurants found, return: []`

const sentimentPrompt = `Analyze the sentiment of this restaurant review/discussion.

Provide:
1. overall_score: A score from -1.0 (very negative) to 1.0 (very positive)
2. label: One of "positive", "negative", "neutral", or "mixed"
3. aspects: Rate each aspect from -1.0 to 1.0 if mentioned: food, service, ambiance, value
4. summary: One sentence summary of the sentiment

TEXT:
%s

Return ONLY valid JSON:
{"overall_score": 0.8, "label": "positive", "aspects": {"food": 0.9, "service": 0.7}, "summary": "..."}`

// ExtractedRestaurant is one restaurant the LLM identified in a text.
type ExtractedRestaurant struct {
	Name              string   `json:"name"`
	Vibe              string   `json:"vibe"`
	CuisineTags       []string `json:"cuisine_tags"`
	RecommendedDishes []string `json:"recommended_dishes"`
	PriceHint         string   `json:"price_hint"`
	Sentiment         string   `json:"sentiment"`
}

// SentimentAnalysis is the overall sentiment of one text.
type SentimentAnalysis struct {
	OverallScore float64            `json:"overall_score"`
	Label        string             `json:"label"`
	Aspects      map[string]float64 `json:"aspects"`
	Summary      string             `json:"summary"`
}

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	city       string
	httpClient *http.Client
}

// NewClient creates a new extraction client.
func NewClient(baseURL, apiKey, model, city string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		city:       city,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one prompt and returns the raw completion text.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// ExtractRestaurants pulls structured restaurant records out of text.
// A blank or unparseable completion returns ErrEmptyPayload; transport
// failures return their own error. A valid "[]" is a success with zero
// restaurants.
func (c *Client) ExtractRestaurants(ctx context.Context, text string) ([]ExtractedRestaurant, error) {
	text = truncate(text, maxExtractionInput)
	prompt := fmt.Sprintf(extractionPrompt, c.city, c.city, c.city, text)

	response, err := c.complete(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}
	if response == "" {
		return nil, ErrEmptyPayload
	}

	var restaurants []ExtractedRestaurant
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &restaurants); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyPayload, err)
	}

	// Drop entries without a name; the LLM occasionally emits blanks.
	valid := restaurants[:0]
	for _, r := range restaurants {
		if r.Name != "" {
			valid = append(valid, r)
		}
	}
	return valid, nil
}

// AnalyzeSentiment scores the overall sentiment of a text.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (*SentimentAnalysis, error) {
	text = truncate(text, maxSentimentInput)
	prompt := fmt.Sprintf(sentimentPrompt, text)

	response, err := c.complete(ctx, prompt, 500)
	if err != nil {
		return nil, err
	}
	if response == "" {
		return nil, ErrEmptyPayload
	}

	var analysis SentimentAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyPayload, err)
	}

	// Clamp out-of-range model output rather than rejecting it.
	if analysis.OverallScore > 1 {
		analysis.OverallScore = 1
	} else if analysis.OverallScore < -1 {
		analysis.OverallScore = -1
	}
	return &analysis, nil
}

// stripCodeFence removes a surrounding markdown code block, which some
// models emit despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// truncate cuts s at max bytes, backing up to a rune boundary so a
// multibyte character straddling the cut never produces invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
