// Package ingest is the aggregation core: it normalizes raw mention
// records, resolves restaurant identities, computes scores and writes
// the result through idempotent upserts.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"table-buzz/internal/models"
)

// maxRawTextLen caps stored mention text. The bound keeps row sizes and
// downstream LLM context cost predictable; applied before storage so
// re-ingesting the same URL produces the same truncated text.
const maxRawTextLen = 3000

// RawMention is a mention record as it arrives from upstream, before
// type coercion. Loosely typed fields carry whatever the source
// produced: numbers may be strings or floats, timestamps may be ISO
// strings, list fields may be a comma-joined string.
type RawMention struct {
	RestaurantName string
	SourceKind     string
	SourceURL      string
	SourceID       string
	Title          string
	RawText        string
	Author         string
	Community      string

	Score         any // numeric-like
	CommentsCount any // numeric-like

	SentimentScore any // numeric-like in [-1, 1], nil = not analyzed
	SentimentLabel string
	Aspects        map[string]float64

	DishesMentioned any // list-like
	PriceMentioned  string
	VibeExtracted   string

	PostedAt  any // time.Time, ISO-8601 string, or nil
	ScrapedAt time.Time
}

// ValidationError reports which field of a raw mention failed coercion.
type ValidationError struct {
	Field string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %v", e.Field, e.Value)
}

// Normalize coerces a raw mention into a strictly typed Mention. A
// coercion failure on any field returns a *ValidationError naming that
// field; the caller drops the mention and continues with its siblings.
func Normalize(raw RawMention) (*models.Mention, error) {
	if strings.TrimSpace(raw.RestaurantName) == "" {
		return nil, &ValidationError{Field: "restaurant_name", Value: raw.RestaurantName}
	}
	if raw.SourceURL == "" {
		return nil, &ValidationError{Field: "source_url", Value: raw.SourceURL}
	}
	kind := models.SourceKind(raw.SourceKind)
	if !kind.Valid() {
		return nil, &ValidationError{Field: "source_kind", Value: raw.SourceKind}
	}

	score, err := coerceInt("score", raw.Score)
	if err != nil {
		return nil, err
	}
	comments, err := coerceInt("comments_count", raw.CommentsCount)
	if err != nil {
		return nil, err
	}

	sentiment, err := coerceFloat("sentiment_score", raw.SentimentScore)
	if err != nil {
		return nil, err
	}
	var label *string
	if raw.SentimentLabel != "" {
		if !models.ValidSentimentLabel(raw.SentimentLabel) {
			return nil, &ValidationError{Field: "sentiment_label", Value: raw.SentimentLabel}
		}
		l := raw.SentimentLabel
		label = &l
	}

	postedAt, err := coerceTime("posted_at", raw.PostedAt)
	if err != nil {
		return nil, err
	}

	dishes, err := coerceList("dishes_mentioned", raw.DishesMentioned)
	if err != nil {
		return nil, err
	}

	aspects := ""
	if len(raw.Aspects) > 0 {
		encoded, err := json.Marshal(raw.Aspects)
		if err != nil {
			return nil, &ValidationError{Field: "aspects", Value: raw.Aspects}
		}
		aspects = string(encoded)
	}

	text := truncateText(raw.RawText, maxRawTextLen)

	scrapedAt := raw.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	return &models.Mention{
		RestaurantName:  strings.TrimSpace(raw.RestaurantName),
		SourceKind:      kind,
		SourceURL:       raw.SourceURL,
		SourceID:        raw.SourceID,
		Title:           raw.Title,
		RawText:         text,
		Author:          raw.Author,
		Community:       raw.Community,
		Score:           score,
		CommentsCount:   comments,
		SentimentScore:  sentiment,
		SentimentLabel:  label,
		Aspects:         aspects,
		DishesMentioned: dishes,
		PriceMentioned:  raw.PriceMentioned,
		VibeExtracted:   raw.VibeExtracted,
		EngagementScore: float64(score) + 2*float64(comments),
		PostedAt:        postedAt,
		ScrapedAt:       scrapedAt,
	}, nil
}

// coerceInt accepts nil, numbers, numeric strings and booleans. Absent
// means zero; anything unparseable is a validation error.
func coerceInt(field string, v any) (int, error) {
	switch value := v.(type) {
	case nil:
		return 0, nil
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		return int(value), nil
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, nil
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(f), nil
		}
		return 0, &ValidationError{Field: field, Value: v}
	default:
		return 0, &ValidationError{Field: field, Value: v}
	}
}

// coerceFloat is like coerceInt but keeps the fraction and maps absence
// to nil rather than zero, since zero is a meaningful sentiment.
func coerceFloat(field string, v any) (*float64, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &value, nil
	case float32:
		f := float64(value)
		return &f, nil
	case int:
		f := float64(value)
		return &f, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, &ValidationError{Field: field, Value: v}
		}
		return &f, nil
	default:
		return nil, &ValidationError{Field: field, Value: v}
	}
}

// timeLayouts covers ISO-8601 with and without a zone suffix. Zoneless
// timestamps are taken as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(field string, v any) (*time.Time, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if value.IsZero() {
			return nil, nil
		}
		t := value.UTC()
		return &t, nil
	case *time.Time:
		if value == nil || value.IsZero() {
			return nil, nil
		}
		t := value.UTC()
		return &t, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
				t = t.UTC()
				return &t, nil
			}
		}
		return nil, &ValidationError{Field: field, Value: v}
	default:
		return nil, &ValidationError{Field: field, Value: v}
	}
}

// coerceList accepts nil, string slices, []any, a JSON-array-shaped
// string, or a comma-joined string. The result is always a non-nil
// slice with trimmed, non-empty entries.
func coerceList(field string, v any) ([]string, error) {
	switch value := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return trimEntries(value), nil
	case []any:
		entries := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, &ValidationError{Field: field, Value: v}
			}
			entries = append(entries, s)
		}
		return trimEntries(entries), nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return []string{}, nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var entries []string
			if err := json.Unmarshal([]byte(trimmed), &entries); err == nil {
				return trimEntries(entries), nil
			}
			// fall through to comma-split for bracketed but non-JSON input
		}
		return trimEntries(strings.Split(trimmed, ",")), nil
	default:
		return nil, &ValidationError{Field: field, Value: v}
	}
}

// truncateText cuts s at max bytes, backing up to a rune boundary so a
// multibyte character straddling the cut never leaves invalid UTF-8 in
// the stored text.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func trimEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
