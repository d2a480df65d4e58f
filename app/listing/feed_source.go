package listing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedSource treats an RSS/Atom feed as a ranked listing: rank is the 1-based
// item position. Feeds are a single page; requests beyond the first page
// return nothing.
type FeedSource struct {
	name       string
	feedURL    string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	parser     *gofeed.Parser
}

var _ Source = (*FeedSource)(nil)

func NewFeedSource(name, feedURL string, httpClient *http.Client, userAgent string, timeout time.Duration) *FeedSource {
	return &FeedSource{
		name:       name,
		feedURL:    feedURL,
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		parser:     gofeed.NewParser(),
	}
}

func (s *FeedSource) Name() string {
	return s.name
}

func (s *FeedSource) FetchPage(ctx context.Context, page int) ([]RawItem, error) {
	if page > 1 {
		return nil, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Page: page, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{Page: page, Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	items := make([]RawItem, 0, len(feed.Items))
	for i, feedItem := range feed.Items {
		externalID := feedItem.GUID
		if externalID == "" {
			externalID = feedItem.Link
		}
		if externalID == "" {
			continue
		}

		item := RawItem{
			ExternalID:  externalID,
			Rank:        i + 1,
			Title:       feedItem.Title,
			URL:         feedItem.Link,
			CommentsURL: feedItem.Link,
		}
		if len(feedItem.Authors) > 0 && feedItem.Authors[0] != nil {
			item.Author = feedItem.Authors[0].Name
		}

		items = append(items, item)
	}

	return items, nil
}
