package source

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketintel/marketintel/pkg/textproc"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestProcessCleansAndHashes(t *testing.T) {
	p := NewProcessor(quietLogger())

	posts := p.Process([]Post{
		{Username: "  trader_a  ", Content: "Nifty   breakout today"},
	})
	require.Len(t, posts, 1)

	got := posts[0]
	assert.Equal(t, "Nifty breakout today", got.Content)
	assert.Equal(t, "trader_a", got.Username)
	assert.Equal(t, textproc.Hash("Nifty breakout today"), got.ID)
	assert.False(t, got.PostedAt.IsZero())
	assert.False(t, got.CollectedAt.IsZero())
}

func TestProcessDropsEmptyAndWhitespaceOnly(t *testing.T) {
	p := NewProcessor(quietLogger())

	posts := p.Process([]Post{
		{Content: ""},
		{Content: "   \t\n  "},
		{Content: "real content"},
	})
	require.Len(t, posts, 1)
	assert.Equal(t, "real content", posts[0].Content)
}

func TestProcessDedupesWhitespaceVariants(t *testing.T) {
	// The same text with different spacing normalizes to one identity.
	p := NewProcessor(quietLogger())

	posts := p.Process([]Post{
		{Content: "Buy nifty calls"},
		{Content: "Buy  nifty\tcalls"},
		{Content: "Buy nifty calls "},
	})
	assert.Len(t, posts, 1)
}

func TestProcessDedupeSpansCalls(t *testing.T) {
	// The seen-set is session-wide, so a repeat in a later feed is dropped.
	p := NewProcessor(quietLogger())

	first := p.Process([]Post{{Content: "sensex crash incoming"}})
	require.Len(t, first, 1)

	second := p.Process([]Post{{Content: "sensex crash incoming"}})
	assert.Empty(t, second)
}

func TestProcessPreservesOrderAndTimestamps(t *testing.T) {
	p := NewProcessor(quietLogger())
	posted := time.Date(2026, 8, 1, 9, 15, 0, 0, time.UTC)

	posts := p.Process([]Post{
		{Content: "first post", PostedAt: posted},
		{Content: "second post"},
		{Content: "third post"},
	})
	require.Len(t, posts, 3)
	assert.Equal(t, "first post", posts[0].Content)
	assert.Equal(t, "second post", posts[1].Content)
	assert.Equal(t, "third post", posts[2].Content)
	assert.Equal(t, posted, posts[0].PostedAt)
}

func TestProcessDefaultsMissingUsername(t *testing.T) {
	p := NewProcessor(quietLogger())

	posts := p.Process([]Post{{Content: "anonymous tip"}})
	require.Len(t, posts, 1)
	assert.Equal(t, "unknown", posts[0].Username)
}

func TestDeduplicateFirstOccurrenceWins(t *testing.T) {
	posts := []Post{
		{ID: "a", Content: "one", Likes: 5},
		{ID: "b", Content: "two"},
		{ID: "a", Content: "one", Likes: 99},
		{ID: "c", Content: "three"},
	}
	unique := Deduplicate(posts)
	require.Len(t, unique, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{unique[0].ID, unique[1].ID, unique[2].ID})
	assert.Equal(t, 5, unique[0].Likes)
}

func TestDeduplicateFallsBackToContentIdentity(t *testing.T) {
	// Stored posts always carry an ID; raw ones fall back to hashing content.
	posts := []Post{
		{Content: "Buy nifty calls"},
		{Content: "Buy  nifty calls"},
	}
	assert.Len(t, Deduplicate(posts), 1)
}

func TestExtractMentionsAndHashtags(t *testing.T) {
	text := "@trader_a and @quant_b watching #nifty50 and #BankNifty today"
	assert.Equal(t, []string{"trader_a", "quant_b"}, ExtractMentions(text))
	assert.Equal(t, []string{"nifty50", "BankNifty"}, ExtractHashtags(text))
	assert.Empty(t, ExtractMentions("no handles here"))
	assert.Empty(t, ExtractHashtags("no tags here"))
}
