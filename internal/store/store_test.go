package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketintel/marketintel/pkg/analyzer"
	"github.com/marketintel/marketintel/pkg/source"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testPost(id string) source.Post {
	now := time.Now().UTC().Truncate(time.Second)
	return source.Post{
		ID:          id,
		Username:    "trader_a",
		Content:     "nifty breakout today " + id,
		Likes:       100,
		Reposts:     20,
		Replies:     5,
		Mentions:    []string{"quant_b"},
		Hashtags:    []string{"nifty50"},
		ExternalID:  "ext-" + id,
		URL:         "https://example.com/" + id,
		PostedAt:    now,
		CollectedAt: now,
	}
}

func TestPostRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	post := testPost("p1")
	require.NoError(t, st.UpsertPost(ctx, &post))

	got, err := st.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, post.Content, got.Content)
	assert.Equal(t, post.Username, got.Username)
	assert.Equal(t, post.Likes, got.Likes)
	assert.Equal(t, []string{"quant_b"}, got.Mentions)
	assert.Equal(t, []string{"nifty50"}, got.Hashtags)
}

func TestUpsertPostUpdatesEngagement(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	post := testPost("p1")
	require.NoError(t, st.UpsertPost(ctx, &post))

	post.Likes = 500
	post.Reposts = 80
	require.NoError(t, st.UpsertPost(ctx, &post))

	got, err := st.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 500, got.Likes)
	assert.Equal(t, 80, got.Reposts)

	count, err := st.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListPostsSinceAndLimit(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		post := testPost(id)
		post.PostedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, st.UpsertPost(ctx, &post))
	}

	recent, err := st.ListPosts(ctx, ListOpts{Since: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "p3", recent[0].ID)
	assert.Equal(t, "p2", recent[1].ID)

	limited, err := st.ListPosts(ctx, ListOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "p3", limited[0].ID)
}

func TestSignalRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	post := testPost("p1")
	require.NoError(t, st.UpsertPost(ctx, &post))

	sig := NewSignal(analyzer.Result{
		PostID:          "p1",
		Features:        map[string]float64{"feature_0": 0.42, "feature_1": -0.1},
		SentimentScore:  0.5,
		SentimentLabel:  analyzer.LabelPositive,
		EngagementScore: 0.3,
		Custom:          analyzer.CustomFeatures{WordCount: 4, HasMarketHashtag: 1},
		CompositeSignal: 0.36,
	})
	require.NoError(t, st.UpsertSignal(ctx, &sig))

	got, err := st.GetSignal(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, sig.SentimentScore, got.SentimentScore)
	assert.Equal(t, sig.SentimentLabel, got.SentimentLabel)
	assert.Equal(t, sig.CompositeSignal, got.CompositeSignal)
	assert.Equal(t, sig.Features, got.Features)
	assert.Equal(t, 1, got.Custom.HasMarketHashtag)

	back := got.Result()
	assert.Equal(t, "p1", back.PostID)
	assert.Equal(t, sig.CompositeSignal, back.CompositeSignal)
}

func TestUpsertSignalReplacesExisting(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	post := testPost("p1")
	require.NoError(t, st.UpsertPost(ctx, &post))

	sig := NewSignal(analyzer.Result{PostID: "p1", CompositeSignal: 0.1})
	require.NoError(t, st.UpsertSignal(ctx, &sig))

	sig.CompositeSignal = 0.9
	require.NoError(t, st.UpsertSignal(ctx, &sig))

	sigs, err := st.ListSignals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, 0.9, sigs[0].CompositeSignal)
}

func TestSessionLifecycle(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	sess := &Session{ID: uuid.NewString()}
	require.NoError(t, st.CreateSession(ctx, sess))
	assert.Equal(t, SessionRunning, sess.Status)

	running, err := st.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionRunning, running.Status)
	assert.Nil(t, running.CompletedAt)

	errs := []string{"nitter: connection refused"}
	require.NoError(t, st.FinishSession(ctx, sess.ID, SessionCompleted, 42, errs))

	done, err := st.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, done.Status)
	assert.Equal(t, 42, done.PostsCollected)
	assert.Equal(t, errs, done.Errors)
	require.NotNil(t, done.CompletedAt)
	assert.False(t, done.CompletedAt.IsZero())
}

func TestGetMissingRowsFail(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	_, err := st.GetPost(ctx, "absent")
	assert.Error(t, err)
	_, err = st.GetSignal(ctx, "absent")
	assert.Error(t, err)
	_, err = st.GetSession(ctx, "absent")
	assert.Error(t, err)
}
