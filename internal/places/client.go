// Package places looks restaurants up against an external place
// directory to attach a canonical place id, address and coordinates.
// A miss is a normal outcome, not an error: plenty of extracted names
// never resolve, and the pipeline proceeds on name identity alone.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PlaceResult is the canonical identity a lookup returns.
type PlaceResult struct {
	PlaceID      string
	Name         string
	Address      string
	Latitude     float64
	Longitude    float64
	PriceLevel   *int     // 0-4 provider scale
	Rating       *float64 // 0-5
	ReviewsCount int
	MapsURL      string
	PhotoURL     string
}

// Finder resolves a restaurant name to a canonical place, or nil when
// the directory has no confident match.
type Finder interface {
	FindPlace(ctx context.Context, name, city string) (*PlaceResult, error)
}

// Client queries the Places "find place from text" API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a place lookup client. An empty API key yields a
// client whose lookups always miss, which keeps the pipeline usable in
// development.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type findPlaceResponse struct {
	Status     string `json:"status"`
	Candidates []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		PriceLevel       *int     `json:"price_level"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"candidates"`
}

// FindPlace resolves a restaurant name within a city. A miss returns
// (nil, nil).
func (c *Client) FindPlace(ctx context.Context, name, city string) (*PlaceResult, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("input", fmt.Sprintf("%s restaurant %s", name, city))
	query.Set("inputtype", "textquery")
	query.Set("fields", "place_id,name,formatted_address,geometry,price_level,rating,user_ratings_total,photos")
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/findplacefromtext/json?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place lookup HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed findPlaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode place response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		return nil, nil
	}

	candidate := parsed.Candidates[0]
	result := &PlaceResult{
		PlaceID:      candidate.PlaceID,
		Name:         candidate.Name,
		Address:      candidate.FormattedAddress,
		Latitude:     candidate.Geometry.Location.Lat,
		Longitude:    candidate.Geometry.Location.Lng,
		PriceLevel:   candidate.PriceLevel,
		Rating:       candidate.Rating,
		ReviewsCount: candidate.UserRatingsTotal,
		MapsURL:      "https://www.google.com/maps/place/?q=place_id:" + candidate.PlaceID,
	}
	if len(candidate.Photos) > 0 && candidate.Photos[0].PhotoReference != "" {
		result.PhotoURL = fmt.Sprintf("%s/photo?maxwidth=400&photo_reference=%s&key=%s",
			c.baseURL, candidate.Photos[0].PhotoReference, c.apiKey)
	}
	return result, nil
}
