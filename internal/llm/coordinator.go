package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// Extractor is what the Coordinator paces: the LLM client in
// production, a fake in tests.
type Extractor interface {
	ExtractRestaurants(ctx context.Context, text string) ([]ExtractedRestaurant, error)
	AnalyzeSentiment(ctx context.Context, text string) (*SentimentAnalysis, error)
}

const (
	defaultMinInterval      = 2 * time.Second
	defaultTransportBackoff = 5 * time.Second
	defaultMaxAttempts      = 3
)

// Coordinator throttles and retries calls to the extraction
// collaborator. It enforces a minimum interval from the end of one call
// to the start of the next, so a burst of scraped content stays inside
// the provider's request-per-minute ceiling. It is deliberately
// single-flight: callers invoke it sequentially, never concurrently.
//
// Both failure classes degrade to "no data" after the retry budget is
// spent: an empty/invalid payload retries with linear backoff, a
// transport error with a fixed longer backoff. Neither ever propagates
// to the caller.
type Coordinator struct {
	extractor        Extractor
	minInterval      time.Duration
	transportBackoff time.Duration
	maxAttempts      int

	lastCallEnd time.Time

	// Injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewCoordinator creates a coordinator around an extractor. A
// non-positive minInterval or maxAttempts falls back to the defaults.
func NewCoordinator(extractor Extractor, minInterval time.Duration, maxAttempts int) *Coordinator {
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Coordinator{
		extractor:        extractor,
		minInterval:      minInterval,
		transportBackoff: defaultTransportBackoff,
		maxAttempts:      maxAttempts,
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

// ProcessContent extracts restaurants from one content item and, when
// any were found, analyzes the item's sentiment. The sentiment call is
// skipped entirely for content that yields no restaurants. Failures
// surface as (nil, nil), never as errors.
func (c *Coordinator) ProcessContent(ctx context.Context, text string) ([]ExtractedRestaurant, *SentimentAnalysis) {
	restaurants := c.extractWithRetry(ctx, text)
	if len(restaurants) == 0 {
		return nil, nil
	}

	sentiment := c.sentimentWithRetry(ctx, text)
	return restaurants, sentiment
}

func (c *Coordinator) extractWithRetry(ctx context.Context, text string) []ExtractedRestaurant {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.throttle()
		restaurants, err := c.extractor.ExtractRestaurants(ctx, text)
		c.lastCallEnd = c.now()

		if err == nil {
			return restaurants
		}
		if !c.backoff(err, attempt) {
			break
		}
	}
	log.Printf("⚠️ Extraction gave up after %d attempts, treating content as empty", c.maxAttempts)
	return nil
}

func (c *Coordinator) sentimentWithRetry(ctx context.Context, text string) *SentimentAnalysis {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.throttle()
		analysis, err := c.extractor.AnalyzeSentiment(ctx, text)
		c.lastCallEnd = c.now()

		if err == nil {
			return analysis
		}
		if !c.backoff(err, attempt) {
			break
		}
	}
	log.Printf("⚠️ Sentiment analysis gave up after %d attempts", c.maxAttempts)
	return nil
}

// throttle sleeps until the minimum interval since the previous call's
// end has elapsed.
func (c *Coordinator) throttle() {
	if c.lastCallEnd.IsZero() {
		return
	}
	elapsed := c.now().Sub(c.lastCallEnd)
	if wait := c.minInterval - elapsed; wait > 0 {
		c.sleep(wait)
	}
}

// backoff sleeps between retry attempts and reports whether another
// attempt should be made. Empty payloads back off linearly; transport
// errors use the longer fixed backoff.
func (c *Coordinator) backoff(err error, attempt int) bool {
	if attempt >= c.maxAttempts {
		return false
	}
	if errors.Is(err, ErrEmptyPayload) {
		log.Printf("⚠️ Empty extraction payload (attempt %d/%d), retrying", attempt, c.maxAttempts)
		c.sleep(time.Duration(attempt) * c.minInterval)
	} else {
		log.Printf("⚠️ Extraction transport error (attempt %d/%d): %v", attempt, c.maxAttempts, err)
		c.sleep(c.transportBackoff)
	}
	return true
}
