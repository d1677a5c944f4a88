// Package analyzer derives per-post trading signals from text and engagement
// features and aggregates them into batch statistics.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/marketintel/marketintel/pkg/source"
)

// ErrEmptyPost is returned for posts with no usable text content.
var ErrEmptyPost = errors.New("post has no content")

// Result is the per-post signal record. Features holds the projected TF-IDF
// coordinates feature_0..feature_{k-1}; it is empty when the extractor was
// unfitted or the per-document transform failed.
type Result struct {
	PostID          string             `json:"-"`
	Features        map[string]float64 `json:"tfidf_vector"`
	SentimentScore  float64            `json:"sentiment_score"`
	SentimentLabel  string             `json:"sentiment_label"`
	EngagementScore float64            `json:"engagement_score"`
	Custom          CustomFeatures     `json:"custom_features"`
	CompositeSignal float64            `json:"composite_signal"`
}

// Config holds the recognized analyzer tunables.
type Config struct {
	MaxFeatures     int
	NComponents     int
	ConfidenceLevel float64
}

// Analyzer runs the single-post pipeline and batch aggregation. Create one
// per analysis batch, call Fit on the batch corpus, then analyze. The
// pipeline is synchronous and CPU-bound by design.
type Analyzer struct {
	extractor       *Extractor
	confidenceLevel float64
	log             *logrus.Logger
}

// New creates an Analyzer. Zero config fields fall back to defaults.
func New(cfg Config, log *logrus.Logger) *Analyzer {
	level := cfg.ConfidenceLevel
	if level <= 0 || level >= 1 {
		level = DefaultConfidenceLevel
	}
	return &Analyzer{
		extractor:       NewExtractor(cfg.MaxFeatures, cfg.NComponents),
		confidenceLevel: level,
		log:             log,
	}
}

// Extractor exposes the underlying feature extractor.
func (a *Analyzer) Extractor() *Extractor { return a.extractor }

// Fit fits the feature extractor on the batch corpus. Fitting failure is
// fatal to the batch's analysis and is surfaced, never retried.
func (a *Analyzer) Fit(texts []string) error {
	if err := a.extractor.Fit(texts); err != nil {
		return fmt.Errorf("fit analyzer: %w", err)
	}
	return nil
}

// AnalyzePost runs every stage of the pipeline on one post. A failed
// per-document transform degrades to an empty feature map and the rest of
// the stages still run; only a post with no content fails outright.
func (a *Analyzer) AnalyzePost(post source.Post) (Result, error) {
	if post.Content == "" {
		return Result{}, ErrEmptyPost
	}

	features := map[string]float64{}
	if a.extractor.Fitted() {
		f, err := a.extractor.Transform(post.Content)
		if err != nil {
			a.log.WithError(err).WithField("post", post.ID).Warn("feature extraction failed")
		} else {
			features = f
		}
	}

	sentimentScore, sentimentLabel := SentimentScore(post.Content)
	engagementScore := EngagementScore(post.Likes, post.Reposts, post.Replies)
	custom := ExtractCustomFeatures(post.Content, post.Mentions, post.Hashtags)

	return Result{
		PostID:          post.ID,
		Features:        features,
		SentimentScore:  sentimentScore,
		SentimentLabel:  sentimentLabel,
		EngagementScore: engagementScore,
		Custom:          custom,
		CompositeSignal: CompositeSignal(sentimentScore, engagementScore, custom),
	}, nil
}

// AnalyzeBatch analyzes posts sequentially. A failing post is logged and
// skipped; one malformed post never aborts the batch, so the result length
// reflects successfully analyzed posts only.
func (a *Analyzer) AnalyzeBatch(posts []source.Post) []Result {
	results := make([]Result, 0, len(posts))

	for _, post := range posts {
		result, err := a.AnalyzePost(post)
		if err != nil {
			a.log.WithError(err).WithField("post", post.ID).Warn("skipping post")
			continue
		}
		results = append(results, result)
	}

	return results
}

// Aggregate reduces batch results to summary statistics at the configured
// confidence level.
func (a *Analyzer) Aggregate(results []Result) Summary {
	return AggregateSignals(results, a.confidenceLevel)
}
