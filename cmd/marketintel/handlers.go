package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/marketintel/marketintel/internal/config"
	"github.com/marketintel/marketintel/internal/pipeline"
	"github.com/marketintel/marketintel/internal/scheduler"
	"github.com/marketintel/marketintel/internal/store"
	"github.com/marketintel/marketintel/pkg/analyzer"
	"github.com/marketintel/marketintel/pkg/server"
	"github.com/marketintel/marketintel/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func analyzerConfig(cfg *config.Config) analyzer.Config {
	return analyzer.Config{
		MaxFeatures:     cfg.Analyzer.MaxFeatures,
		NComponents:     cfg.Analyzer.NComponents,
		ConfidenceLevel: cfg.Analyzer.ConfidenceLevel,
	}
}

func buildSources(cfg *config.Config, log *logrus.Logger) []source.Source {
	return []source.Source{
		source.NewNitter(cfg.Scraper.NitterURL, cfg.Scraper.Hashtags, log),
	}
}

func runScrape() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	outcome, err := pipeline.Scrape(context.Background(), db, buildSources(cfg, log), log)
	if err != nil {
		return err
	}

	fmt.Printf("session %s: %s, %d posts collected\n",
		outcome.SessionID, outcome.Status, outcome.Collected)
	for _, e := range outcome.Errors {
		fmt.Fprintf(os.Stderr, "  error: %s\n", e)
	}
	return nil
}

func runAnalyze(hours, limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	outcome, err := pipeline.Analyze(context.Background(), db, analyzerConfig(cfg),
		pipeline.AnalyzeOptions{Hours: hours, Limit: limit}, log)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Printf("analyzed %d of %d posts\n", outcome.Analyzed, outcome.Processed)
	printSummary(outcome.Aggregated)
	return nil
}

func runStats(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	signals, err := db.ListSignals(context.Background(), 0)
	if err != nil {
		return err
	}

	results := make([]analyzer.Result, len(signals))
	for i, sig := range signals {
		results[i] = sig.Result()
	}
	summary := analyzer.AggregateSignals(results, cfg.Analyzer.ConfidenceLevel)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	printSummary(summary)
	return nil
}

func printSummary(s analyzer.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mean signal\t%.4f\n", s.MeanSignal)
	fmt.Fprintf(w, "std signal\t%.4f\n", s.StdSignal)
	fmt.Fprintf(w, "confidence interval\t[%.4f, %.4f]\n",
		s.ConfidenceIntervalLower, s.ConfidenceIntervalUpper)
	fmt.Fprintf(w, "mean sentiment\t%.4f\n", s.MeanSentiment)
	fmt.Fprintf(w, "mean engagement\t%.4f\n", s.MeanEngagement)
	fmt.Fprintf(w, "total posts\t%d\n", s.TotalTweets)
	for label, count := range s.SentimentDistribution {
		fmt.Fprintf(w, "sentiment %s\t%d\n", label, count)
	}
	w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, buildSources(cfg, log), analyzerConfig(cfg), port, log)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger()

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	sources := buildSources(cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, sources, analyzerConfig(cfg),
		cfg.Schedule.ParseScrapeInterval(),
		cfg.Schedule.ParseAnalyzeInterval(),
		log,
	)

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("scheduler error")
		}
	}()

	srv := server.New(db, sources, analyzerConfig(cfg), port, log)
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
	}()

	return srv.ListenAndServe()
}
