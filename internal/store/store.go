// Package store persists posts, their derived signals and scraping sessions
// in SQLite.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/marketintel/marketintel/pkg/analyzer"
	"github.com/marketintel/marketintel/pkg/source"
)

// Scraping session states.
const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// Signal is the stored per-post signal record, keyed by the originating
// post's content identity.
type Signal struct {
	PostID          string                  `db:"post_id" json:"post_id"`
	FeaturesJSON    string                  `db:"tfidf" json:"-"`
	Features        map[string]float64      `db:"-" json:"tfidf_vector"`
	SentimentScore  float64                 `db:"sentiment_score" json:"sentiment_score"`
	SentimentLabel  string                  `db:"sentiment_label" json:"sentiment_label"`
	EngagementScore float64                 `db:"engagement_score" json:"engagement_score"`
	CustomJSON      string                  `db:"custom_features" json:"-"`
	Custom          analyzer.CustomFeatures `db:"-" json:"custom_features"`
	CompositeSignal float64                 `db:"composite_signal" json:"composite_signal"`
	ProcessedAt     time.Time               `db:"processed_at" json:"processed_at"`
}

// NewSignal builds a storable Signal from an analysis result.
func NewSignal(r analyzer.Result) Signal {
	return Signal{
		PostID:          r.PostID,
		Features:        r.Features,
		SentimentScore:  r.SentimentScore,
		SentimentLabel:  r.SentimentLabel,
		EngagementScore: r.EngagementScore,
		Custom:          r.Custom,
		CompositeSignal: r.CompositeSignal,
		ProcessedAt:     time.Now().UTC(),
	}
}

// Result converts a stored Signal back into an analysis result, so stored
// batches can be re-aggregated on demand.
func (s Signal) Result() analyzer.Result {
	return analyzer.Result{
		PostID:          s.PostID,
		Features:        s.Features,
		SentimentScore:  s.SentimentScore,
		SentimentLabel:  s.SentimentLabel,
		EngagementScore: s.EngagementScore,
		Custom:          s.Custom,
		CompositeSignal: s.CompositeSignal,
	}
}

// Session tracks one scraping run.
type Session struct {
	ID             string     `db:"id" json:"id"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Status         string     `db:"status" json:"status"`
	PostsCollected int        `db:"posts_collected" json:"posts_collected"`
	ErrorsJSON     string     `db:"errors" json:"-"`
	Errors         []string   `db:"-" json:"errors"`
}

// ListOpts controls post listing.
type ListOpts struct {
	Since time.Time
	Limit int
}

// Store is the persistence interface.
type Store interface {
	UpsertPost(ctx context.Context, post *source.Post) error
	UpsertPosts(ctx context.Context, posts []source.Post) error
	GetPost(ctx context.Context, id string) (*source.Post, error)
	ListPosts(ctx context.Context, opts ListOpts) ([]source.Post, error)
	CountPosts(ctx context.Context) (int, error)

	UpsertSignal(ctx context.Context, sig *Signal) error
	GetSignal(ctx context.Context, postID string) (*Signal, error)
	ListSignals(ctx context.Context, limit int) ([]Signal, error)

	CreateSession(ctx context.Context, s *Session) error
	FinishSession(ctx context.Context, id, status string, collected int, errs []string) error
	GetSession(ctx context.Context, id string) (*Session, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertPost(ctx context.Context, post *source.Post) error {
	mentionsJSON, _ := json.Marshal(post.Mentions)
	hashtagsJSON, _ := json.Marshal(post.Hashtags)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, username, content, likes, reposts, replies, mentions, hashtags, external_id, url, posted_at, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			likes = excluded.likes,
			reposts = excluded.reposts,
			replies = excluded.replies,
			collected_at = excluded.collected_at
	`, post.ID, post.Username, post.Content, post.Likes, post.Reposts, post.Replies,
		string(mentionsJSON), string(hashtagsJSON), post.ExternalID, post.URL,
		post.PostedAt, post.CollectedAt)
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", post.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertPosts(ctx context.Context, posts []source.Post) error {
	for i := range posts {
		if err := s.UpsertPost(ctx, &posts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*source.Post, error) {
	var post source.Post
	if err := s.db.GetContext(ctx, &post, "SELECT * FROM posts WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	json.Unmarshal([]byte(post.MentionsJSON), &post.Mentions)
	json.Unmarshal([]byte(post.HashtagsJSON), &post.Hashtags)
	return &post, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context, opts ListOpts) ([]source.Post, error) {
	query := "SELECT * FROM posts WHERE 1=1"
	var args []any

	if !opts.Since.IsZero() {
		query += " AND posted_at >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY posted_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var posts []source.Post
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	for i := range posts {
		json.Unmarshal([]byte(posts[i].MentionsJSON), &posts[i].Mentions)
		json.Unmarshal([]byte(posts[i].HashtagsJSON), &posts[i].Hashtags)
	}
	return posts, nil
}

func (s *SQLiteStore) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM posts"); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) UpsertSignal(ctx context.Context, sig *Signal) error {
	featuresJSON, _ := json.Marshal(sig.Features)
	customJSON, _ := json.Marshal(sig.Custom)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_signals (post_id, tfidf, sentiment_score, sentiment_label, engagement_score, custom_features, composite_signal, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			tfidf = excluded.tfidf,
			sentiment_score = excluded.sentiment_score,
			sentiment_label = excluded.sentiment_label,
			engagement_score = excluded.engagement_score,
			custom_features = excluded.custom_features,
			composite_signal = excluded.composite_signal,
			processed_at = excluded.processed_at
	`, sig.PostID, string(featuresJSON), sig.SentimentScore, sig.SentimentLabel,
		sig.EngagementScore, string(customJSON), sig.CompositeSignal, sig.ProcessedAt)
	if err != nil {
		return fmt.Errorf("upsert signal %s: %w", sig.PostID, err)
	}
	return nil
}

func (s *SQLiteStore) GetSignal(ctx context.Context, postID string) (*Signal, error) {
	var sig Signal
	if err := s.db.GetContext(ctx, &sig, "SELECT * FROM post_signals WHERE post_id = ?", postID); err != nil {
		return nil, fmt.Errorf("get signal %s: %w", postID, err)
	}
	json.Unmarshal([]byte(sig.FeaturesJSON), &sig.Features)
	json.Unmarshal([]byte(sig.CustomJSON), &sig.Custom)
	return &sig, nil
}

func (s *SQLiteStore) ListSignals(ctx context.Context, limit int) ([]Signal, error) {
	if limit <= 0 {
		limit = 1000
	}

	var sigs []Signal
	err := s.db.SelectContext(ctx, &sigs,
		"SELECT * FROM post_signals ORDER BY processed_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}

	for i := range sigs {
		json.Unmarshal([]byte(sigs[i].FeaturesJSON), &sigs[i].Features)
		json.Unmarshal([]byte(sigs[i].CustomJSON), &sigs[i].Custom)
	}
	return sigs, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now().UTC()
	}
	if sess.Status == "" {
		sess.Status = SessionRunning
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_sessions (id, started_at, status, posts_collected, errors)
		VALUES (?, ?, ?, ?, '[]')
	`, sess.ID, sess.StartedAt, sess.Status, sess.PostsCollected)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SQLiteStore) FinishSession(ctx context.Context, id, status string, collected int, errs []string) error {
	if errs == nil {
		errs = []string{}
	}
	errsJSON, _ := json.Marshal(errs)

	_, err := s.db.ExecContext(ctx, `
		UPDATE scrape_sessions
		SET completed_at = ?, status = ?, posts_collected = ?, errors = ?
		WHERE id = ?
	`, time.Now().UTC(), status, collected, string(errsJSON), id)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.db.GetContext(ctx, &sess, "SELECT * FROM scrape_sessions WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	json.Unmarshal([]byte(sess.ErrorsJSON), &sess.Errors)
	return &sess, nil
}
