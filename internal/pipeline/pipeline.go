// Package pipeline wires scraping, analysis and persistence into the two
// batch operations the CLI, scheduler and HTTP server all share.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marketintel/marketintel/internal/store"
	"github.com/marketintel/marketintel/pkg/analyzer"
	"github.com/marketintel/marketintel/pkg/source"
)

// ScrapeOutcome reports one scraping session.
type ScrapeOutcome struct {
	SessionID string   `json:"session_id"`
	Status    string   `json:"status"`
	Collected int      `json:"posts_collected"`
	Errors    []string `json:"errors,omitempty"`
}

// Scrape runs all sources once inside a tracked session. Each session owns
// its own dedup state; source failures are recorded on the session and do
// not stop the remaining sources.
func Scrape(ctx context.Context, st store.Store, sources []source.Source, log *logrus.Logger) (*ScrapeOutcome, error) {
	session := &store.Session{ID: uuid.New().String()}
	if err := st.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	processor := source.NewProcessor(log)
	collected := 0
	var errs []string

	for _, src := range sources {
		raw, err := src.Collect(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}

		posts := processor.Process(raw)
		if err := st.UpsertPosts(ctx, posts); err != nil {
			errs = append(errs, fmt.Sprintf("%s store: %v", src.Name(), err))
			continue
		}

		log.WithFields(logrus.Fields{"source": src.Name(), "posts": len(posts)}).Info("collected")
		collected += len(posts)
	}

	status := store.SessionCompleted
	if collected == 0 && len(errs) > 0 {
		status = store.SessionFailed
	}
	if err := st.FinishSession(ctx, session.ID, status, collected, errs); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}

	return &ScrapeOutcome{
		SessionID: session.ID,
		Status:    status,
		Collected: collected,
		Errors:    errs,
	}, nil
}

// AnalyzeOptions filters which stored posts one analysis batch covers.
type AnalyzeOptions struct {
	// Hours restricts the batch to posts from the last N hours;
	// zero or negative means all stored posts.
	Hours int
	// Limit caps the number of posts analyzed; zero means no cap.
	Limit int
}

// AnalyzeOutcome is the batch-level analysis response.
type AnalyzeOutcome struct {
	Analyzed   int              `json:"tweets_analyzed"`
	Processed  int              `json:"total_tweets_processed"`
	Aggregated analyzer.Summary `json:"aggregated_signals"`
}

// maxBatchPosts bounds an unlimited analysis batch.
const maxBatchPosts = 10000

// Analyze loads the selected posts, fits a fresh extractor on that corpus,
// runs the per-post pipeline and persists the resulting signals. Extractor
// fitting failure is fatal to the batch; per-post and per-signal failures
// are logged and skipped so the batch always completes.
func Analyze(ctx context.Context, st store.Store, cfg analyzer.Config, opts AnalyzeOptions, log *logrus.Logger) (*AnalyzeOutcome, error) {
	listOpts := store.ListOpts{Limit: opts.Limit}
	if listOpts.Limit <= 0 {
		listOpts.Limit = maxBatchPosts
	}
	if opts.Hours > 0 {
		listOpts.Since = time.Now().UTC().Add(-time.Duration(opts.Hours) * time.Hour)
	}

	posts, err := st.ListPosts(ctx, listOpts)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	posts = source.Deduplicate(posts)
	if len(posts) == 0 {
		return nil, fmt.Errorf("no posts match the analysis window")
	}

	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Content
	}

	a := analyzer.New(cfg, log)
	if err := a.Fit(texts); err != nil {
		return nil, err
	}

	results := a.AnalyzeBatch(posts)

	saved := 0
	for i := range results {
		sig := store.NewSignal(results[i])
		if err := st.UpsertSignal(ctx, &sig); err != nil {
			log.WithError(err).WithField("post", sig.PostID).Warn("signal save failed")
			continue
		}
		saved++
	}

	log.WithFields(logrus.Fields{
		"posts":    len(posts),
		"analyzed": len(results),
		"saved":    saved,
	}).Info("analysis batch complete")

	return &AnalyzeOutcome{
		Analyzed:   saved,
		Processed:  len(posts),
		Aggregated: a.Aggregate(results),
	}, nil
}
