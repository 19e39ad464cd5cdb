// Package worker schedules and runs aggregation passes in the
// background.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"table-buzz/internal/config"
	"table-buzz/internal/embeddings"
	"table-buzz/internal/ingest"
	"table-buzz/internal/llm"
	"table-buzz/internal/places"
	"table-buzz/internal/scrapers"
)

// ErrPassInProgress is returned when a pass is triggered while another
// one is still running. Passes never overlap: the extraction rate
// floor makes a second concurrent pass both pointless and unsafe for
// the provider budget.
var ErrPassInProgress = errors.New("aggregation pass already in progress")

// ErrWorkerStopped is returned when a pass is triggered after Stop.
var ErrWorkerStopped = errors.New("worker has been stopped")

// WorkerService manages the scheduled aggregation pass for the
// application. One pass scrapes all configured sources, runs the
// pipeline over the results and stores the outcome.
type WorkerService struct {
	cfg      *config.Config
	pipeline *ingest.Pipeline
	reddit   *scrapers.RedditScraper
	feeds    *scrapers.FeedScraper
	blogs    *scrapers.BlogScraper

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	passing bool
	stopped bool
	mu      sync.RWMutex

	lastStats *ingest.PipelineStats
}

// NewWorkerService wires the pipeline and its collaborators from
// configuration.
func NewWorkerService(db *gorm.DB, cfg *config.Config) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.City)
	coordinator := llm.NewCoordinator(llmClient, time.Duration(cfg.MinCallIntervalSeconds)*time.Second, cfg.MaxRetries)
	finder := places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey)
	embedder := embeddings.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	pipeline := ingest.NewPipeline(db, coordinator, finder, embedder, cfg.City)

	return &WorkerService{
		cfg:      cfg,
		pipeline: pipeline,
		reddit:   scrapers.NewRedditScraper(cfg.RedditBaseURL, cfg.Subreddits),
		feeds:    scrapers.NewFeedScraper(scrapers.DefaultFeeds),
		blogs:    scrapers.NewBlogScraper(scrapers.DefaultBlogPages),
		cron:     cron.New(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the scheduled pass and starts the cron runner.
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil
	}

	_, err := ws.cron.AddFunc(ws.cfg.CronSchedule, func() {
		if err := ws.RunPass(); err != nil {
			log.Printf("⚠️ Scheduled pass skipped: %v", err)
		}
	})
	if err != nil {
		return err
	}

	ws.cron.Start()
	ws.running = true
	log.Printf("⏰ Aggregation pass scheduled: %s", ws.cfg.CronSchedule)
	return nil
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	if ws.stopped {
		ws.mu.Unlock()
		return
	}
	ws.running = false
	ws.stopped = true
	ws.mu.Unlock()

	log.Println("Stopping background worker...")
	<-ws.cron.Stop().Done()
	ws.cancel()
	ws.wg.Wait()
	log.Println("Background worker stopped")
}

// RunPass executes one full scrape-and-aggregate pass synchronously.
// Returns ErrPassInProgress when one is already running.
func (ws *WorkerService) RunPass() error {
	ws.mu.Lock()
	if ws.stopped {
		ws.mu.Unlock()
		return ErrWorkerStopped
	}
	if ws.passing {
		ws.mu.Unlock()
		return ErrPassInProgress
	}
	ws.passing = true
	// Add while still holding the lock so Stop cannot observe an empty
	// WaitGroup between the passing flip and the Add.
	ws.wg.Add(1)
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		ws.passing = false
		ws.mu.Unlock()
		ws.wg.Done()
	}()

	contents := ws.scrapeAll()
	stats := ws.pipeline.Run(ws.ctx, contents)

	ws.mu.Lock()
	ws.lastStats = stats
	ws.mu.Unlock()
	return nil
}

// TriggerPass starts a pass in the background for the admin endpoint.
func (ws *WorkerService) TriggerPass() error {
	ws.mu.RLock()
	stopped := ws.stopped
	inFlight := ws.passing
	ws.mu.RUnlock()
	if stopped {
		return ErrWorkerStopped
	}
	if inFlight {
		return ErrPassInProgress
	}

	go func() {
		if err := ws.RunPass(); err != nil {
			log.Printf("⚠️ Triggered pass skipped: %v", err)
		}
	}()
	return nil
}

// LastStats returns the stats of the most recently completed pass, or
// nil when none has run yet.
func (ws *WorkerService) LastStats() *ingest.PipelineStats {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.lastStats
}

// Rescore recomputes all scores from stored mentions.
func (ws *WorkerService) Rescore() (int, error) {
	return ws.pipeline.Rescore()
}

func (ws *WorkerService) scrapeAll() []scrapers.ScrapedContent {
	log.Println("🔍 Scraping all content sources...")

	var contents []scrapers.ScrapedContent
	contents = append(contents, ws.reddit.ScrapeAll(ws.ctx, "week", ws.cfg.LimitPerSource)...)
	contents = append(contents, ws.feeds.ScrapeAll(ws.ctx, ws.cfg.LimitPerSource)...)
	contents = append(contents, ws.blogs.ScrapeAll(ws.ctx)...)

	log.Printf("📄 Scraped %d content items", len(contents))
	return contents
}
