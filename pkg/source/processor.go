package source

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketintel/marketintel/pkg/textproc"
)

// Processor cleans raw posts and assigns their content identity. Each
// scraping session owns one Processor; the embedded seen-set spans the whole
// session so the same post scraped twice across feeds is kept once.
type Processor struct {
	dedupe *textproc.Deduper
	log    *logrus.Logger
}

// NewProcessor creates a Processor with a fresh session deduper.
func NewProcessor(log *logrus.Logger) *Processor {
	return &Processor{
		dedupe: textproc.NewDeduper(),
		log:    log,
	}
}

// Process cleans each post's text, normalizes its timestamp, computes the
// content hash and drops posts whose cleaned content is empty or whose hash
// the session has already seen. Input order is preserved.
func (p *Processor) Process(raw []Post) []Post {
	processed := make([]Post, 0, len(raw))

	for _, post := range raw {
		cleaned := textproc.Clean(post.Content)
		if cleaned == "" {
			continue
		}

		hash := textproc.Hash(cleaned)
		if p.dedupe.Seen(hash) {
			continue
		}

		post.ID = hash
		post.Content = cleaned
		post.Username = textproc.Clean(post.Username)
		if post.Username == "" {
			post.Username = "unknown"
		}
		post.Mentions = cleanAll(post.Mentions)
		post.Hashtags = cleanAll(post.Hashtags)
		if post.PostedAt.IsZero() {
			post.PostedAt = time.Now().UTC()
		}
		if post.CollectedAt.IsZero() {
			post.CollectedAt = time.Now().UTC()
		}

		processed = append(processed, post)
	}

	p.log.WithFields(logrus.Fields{
		"raw":       len(raw),
		"processed": len(processed),
	}).Info("processed posts")

	return processed
}

// Deduplicate removes duplicate posts by content identity, keeping the first
// occurrence and preserving order. This batch-level pass is deliberately
// separate from the Processor's session-wide seen-set: it protects batch
// reprocessing of already-stored posts, where no session state exists.
func Deduplicate(posts []Post) []Post {
	seen := make(map[string]struct{}, len(posts))
	unique := make([]Post, 0, len(posts))

	for _, post := range posts {
		id := post.ID
		if id == "" {
			id = textproc.Identity(post.Content)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, post)
	}

	return unique
}

func cleanAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if cleaned := textproc.Clean(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
