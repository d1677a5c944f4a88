package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// Nitter collects posts for market hashtags via Nitter search RSS feeds.
// The browser-automation path the upstream site would otherwise require is
// out of scope here; the RSS route surfaces the same text and author data
// with plain sequential HTTP.
type Nitter struct {
	client    *http.Client
	parser    *gofeed.Parser
	nitterURL string
	hashtags  []string
	log       *logrus.Logger
}

// NewNitter creates a Nitter collector for the given hashtags.
func NewNitter(nitterURL string, hashtags []string, log *logrus.Logger) *Nitter {
	if nitterURL == "" {
		nitterURL = "https://nitter.net"
	}
	return &Nitter{
		client:    &http.Client{Timeout: 30 * time.Second},
		parser:    gofeed.NewParser(),
		nitterURL: strings.TrimRight(nitterURL, "/"),
		hashtags:  hashtags,
		log:       log,
	}
}

func (n *Nitter) Name() string { return "nitter" }

// Collect fetches recent posts for each configured hashtag. A failing
// hashtag feed is logged and skipped; the remaining feeds still collect.
func (n *Nitter) Collect(ctx context.Context) ([]Post, error) {
	var all []Post

	for _, tag := range n.hashtags {
		posts, err := n.collectHashtag(ctx, tag)
		if err != nil {
			n.log.WithError(err).WithField("hashtag", tag).Warn("hashtag collection failed")
			continue
		}
		all = append(all, posts...)
	}

	return all, nil
}

func (n *Nitter) collectHashtag(ctx context.Context, tag string) ([]Post, error) {
	feedURL := fmt.Sprintf("%s/search/rss?q=%s", n.nitterURL, url.QueryEscape("#"+tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request #%s: %w", tag, err)
	}
	req.Header.Set("User-Agent", "marketintel/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch #%s: %w", tag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("#%s status %d", tag, resp.StatusCode)
	}

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse #%s: %w", tag, err)
	}

	var posts []Post
	for _, entry := range feed.Items {
		posted := time.Now().UTC()
		if entry.PublishedParsed != nil {
			posted = entry.PublishedParsed.UTC()
		}

		content := stripTags(entry.Description)
		if content == "" {
			content = entry.Title
		}

		username := "unknown"
		if entry.Author != nil && entry.Author.Name != "" {
			username = strings.TrimPrefix(entry.Author.Name, "@")
		}

		link := strings.Replace(entry.Link, n.nitterURL, "https://x.com", 1)

		posts = append(posts, Post{
			Username:    username,
			Content:     truncate(content, 2000),
			Mentions:    ExtractMentions(content),
			Hashtags:    ExtractHashtags(content),
			ExternalID:  entry.GUID,
			URL:         link,
			PostedAt:    posted,
			CollectedAt: time.Now().UTC(),
		})
	}

	return posts, nil
}
