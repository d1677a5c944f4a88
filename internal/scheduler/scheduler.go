// Package scheduler runs periodic scraping and analysis.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketintel/marketintel/internal/pipeline"
	"github.com/marketintel/marketintel/internal/store"
	"github.com/marketintel/marketintel/pkg/analyzer"
	"github.com/marketintel/marketintel/pkg/source"
)

// Scheduler runs scraping and analysis on fixed intervals.
type Scheduler struct {
	store       store.Store
	sources     []source.Source
	analyzerCfg analyzer.Config
	scrapeInt   time.Duration
	analyzeInt  time.Duration
	// analyzeHours is the lookback window for scheduled analysis batches.
	analyzeHours int
	log          *logrus.Logger
}

// New creates a scheduler. Zero intervals fall back to defaults.
func New(
	st store.Store,
	sources []source.Source,
	analyzerCfg analyzer.Config,
	scrapeInt, analyzeInt time.Duration,
	log *logrus.Logger,
) *Scheduler {
	if scrapeInt == 0 {
		scrapeInt = 30 * time.Minute
	}
	if analyzeInt == 0 {
		analyzeInt = time.Hour
	}
	return &Scheduler{
		store:        st,
		sources:      sources,
		analyzerCfg:  analyzerCfg,
		scrapeInt:    scrapeInt,
		analyzeInt:   analyzeInt,
		analyzeHours: 24,
		log:          log,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	scrapeTicker := time.NewTicker(s.scrapeInt)
	analyzeTicker := time.NewTicker(s.analyzeInt)
	defer scrapeTicker.Stop()
	defer analyzeTicker.Stop()

	// Run immediately on start.
	s.log.Info("scheduler: initial scrape")
	s.scrape(ctx)
	s.log.Info("scheduler: initial analysis")
	s.analyze(ctx)

	s.log.WithFields(logrus.Fields{
		"scrape_interval":  s.scrapeInt.String(),
		"analyze_interval": s.analyzeInt.String(),
	}).Info("scheduler running")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-scrapeTicker.C:
			s.scrape(ctx)
		case <-analyzeTicker.C:
			s.analyze(ctx)
		}
	}
}

func (s *Scheduler) scrape(ctx context.Context) {
	outcome, err := pipeline.Scrape(ctx, s.store, s.sources, s.log)
	if err != nil {
		s.log.WithError(err).Error("scheduled scrape failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"session": outcome.SessionID,
		"posts":   outcome.Collected,
		"status":  outcome.Status,
	}).Info("scrape session finished")
}

func (s *Scheduler) analyze(ctx context.Context) {
	outcome, err := pipeline.Analyze(ctx, s.store, s.analyzerCfg,
		pipeline.AnalyzeOptions{Hours: s.analyzeHours}, s.log)
	if err != nil {
		s.log.WithError(err).Warn("scheduled analysis skipped")
		return
	}
	s.log.WithFields(logrus.Fields{
		"analyzed":    outcome.Analyzed,
		"mean_signal": outcome.Aggregated.MeanSignal,
	}).Info("analysis finished")
}
