// Package source collects raw stock-hashtag posts and prepares them for
// analysis.
package source

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Post is the standardized post model shared by scraping, storage and
// analysis. ID is the content identity: the SHA-256 digest of the cleaned
// text, assigned by the Processor.
type Post struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Content      string    `json:"content" db:"content"`
	Likes        int       `json:"likes" db:"likes"`
	Reposts      int       `json:"reposts" db:"reposts"`
	Replies      int       `json:"replies" db:"replies"`
	Mentions     []string  `json:"mentions" db:"-"`
	Hashtags     []string  `json:"hashtags" db:"-"`
	ExternalID   string    `json:"external_id" db:"external_id"`
	URL          string    `json:"url" db:"url"`
	PostedAt     time.Time `json:"posted_at" db:"posted_at"`
	CollectedAt  time.Time `json:"collected_at" db:"collected_at"`
	MentionsJSON string    `json:"-" db:"mentions"`
	HashtagsJSON string    `json:"-" db:"hashtags"`
}

// Source is the interface every post collector implements.
type Source interface {
	Name() string
	Collect(ctx context.Context) ([]Post, error)
}

var (
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
)

// ExtractMentions returns the mention handles found in text, without the
// leading @.
func ExtractMentions(text string) []string {
	return captures(mentionPattern, text)
}

// ExtractHashtags returns the hashtag strings found in text, without the
// leading #.
func ExtractHashtags(text string) []string {
	return captures(hashtagPattern, text)
}

func captures(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
