package store

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id           TEXT PRIMARY KEY,
    username     TEXT NOT NULL DEFAULT 'unknown',
    content      TEXT NOT NULL,
    likes        INTEGER NOT NULL DEFAULT 0,
    reposts      INTEGER NOT NULL DEFAULT 0,
    replies      INTEGER NOT NULL DEFAULT 0,
    mentions     TEXT NOT NULL DEFAULT '[]',
    hashtags     TEXT NOT NULL DEFAULT '[]',
    external_id  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    posted_at    DATETIME NOT NULL,
    collected_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at);
CREATE INDEX IF NOT EXISTS idx_posts_username ON posts(username);

CREATE TABLE IF NOT EXISTS post_signals (
    post_id          TEXT PRIMARY KEY REFERENCES posts(id),
    tfidf            TEXT NOT NULL DEFAULT '{}',
    sentiment_score  REAL NOT NULL DEFAULT 0,
    sentiment_label  TEXT NOT NULL DEFAULT 'neutral',
    engagement_score REAL NOT NULL DEFAULT 0,
    custom_features  TEXT NOT NULL DEFAULT '{}',
    composite_signal REAL NOT NULL DEFAULT 0,
    processed_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_composite ON post_signals(composite_signal);
CREATE INDEX IF NOT EXISTS idx_signals_sentiment ON post_signals(sentiment_score);

CREATE TABLE IF NOT EXISTS scrape_sessions (
    id              TEXT PRIMARY KEY,
    started_at      DATETIME NOT NULL,
    completed_at    DATETIME,
    status          TEXT NOT NULL DEFAULT 'running',
    posts_collected INTEGER NOT NULL DEFAULT 0,
    errors          TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON scrape_sessions(started_at);
`
