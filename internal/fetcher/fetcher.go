// Package fetcher downloads the creator content feed and turns its newest
// entry into the text the sponsorship evaluator matches keywords against.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Content is a single piece of creator content currently on screen.
type Content struct {
	GUID  string
	Title string
	Link  string
	Text  string
}

// Fetcher downloads and parses content feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch downloads and parses a feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Axees/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// FetchLatest fetches url and returns its newest entry.
func (f *Fetcher) FetchLatest(ctx context.Context, url string) (Content, bool, error) {
	feed, err := f.Fetch(ctx, url)
	if err != nil {
		return Content{}, false, err
	}
	c, ok := Latest(feed)
	return c, ok, nil
}

// ItemGUID returns the GUID for a feed item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// ContentText joins the searchable text of an item: title, description
// and categories.
func ContentText(item *gofeed.Item) string {
	parts := []string{item.Title, item.Description}
	parts = append(parts, item.Categories...)
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Latest picks the most recently published item of feed. Items without a
// date lose to dated ones; among equals the first in document order wins.
func Latest(feed *gofeed.Feed) (Content, bool) {
	if feed == nil || len(feed.Items) == 0 {
		return Content{}, false
	}
	best := feed.Items[0]
	for _, item := range feed.Items[1:] {
		if newer(item, best) {
			best = item
		}
	}
	return Content{
		GUID:  ItemGUID(best),
		Title: best.Title,
		Link:  best.Link,
		Text:  ContentText(best),
	}, true
}

func newer(a, b *gofeed.Item) bool {
	if a.PublishedParsed == nil {
		return false
	}
	if b.PublishedParsed == nil {
		return true
	}
	return a.PublishedParsed.After(*b.PublishedParsed)
}
