// Package embeddings produces vector embeddings for restaurant
// profiles. Vectors are stored on the restaurant record and ranked by
// cosine similarity for semantic search; scoring never reads them.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// Embedder turns text into a vector, or (nil, nil) when embedding is
// not configured.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text. An unconfigured client
// returns (nil, nil) so callers can skip storage without branching on
// config themselves.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return parsed.Data[0].Embedding, nil
}

// Cosine returns the cosine similarity of two vectors. Mismatched or
// zero-length vectors score 0 so malformed stored rows rank last
// instead of failing a search.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ProfileText builds the text that gets embedded for a restaurant.
func ProfileText(name, city string, cuisines, dishes []string, vibe string) string {
	parts := []string{name + " restaurant in " + city}
	if len(cuisines) > 0 {
		parts = append(parts, "cuisine: "+strings.Join(cuisines, ", "))
	}
	if len(dishes) > 0 {
		parts = append(parts, "known for: "+strings.Join(dishes, ", "))
	}
	if vibe != "" {
		parts = append(parts, "vibe: "+vibe)
	}
	return strings.Join(parts, ". ")
}
