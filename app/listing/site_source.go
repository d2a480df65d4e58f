package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var numberExpr = regexp.MustCompile(`\d+`)

// SiteSource scrapes an HN-style ranked listing page. Stories are table rows
// with class "athing"; the sibling row carries score, author and comment
// count. Pages are addressed with a ?p=N query parameter.
type SiteSource struct {
	name       string
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

var _ Source = (*SiteSource)(nil)

func NewSiteSource(name, rawURL string, httpClient *http.Client, userAgent string, timeout time.Duration) (*SiteSource, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL %s: %w", rawURL, err)
	}
	return &SiteSource{
		name:       name,
		baseURL:    base,
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}, nil
}

func (s *SiteSource) Name() string {
	return s.name
}

// FetchPage retrieves and parses a single listing page. All failures are
// transient FetchErrors; the client decides about retries.
func (s *SiteSource) FetchPage(ctx context.Context, page int) ([]RawItem, error) {
	pageURL := *s.baseURL
	query := pageURL.Query()
	query.Set("p", strconv.Itoa(page))
	pageURL.RawQuery = query.Encode()

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, pageURL.String(), nil)
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

	items, err := parseListing(resp.Body, s.baseURL)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}

	return items, nil
}

// parseListing extracts raw items from a listing page document.
func parseListing(r io.Reader, baseURL *url.URL) ([]RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var items []RawItem

	doc.Find("tr.athing").Each(func(i int, row *goquery.Selection) {
		externalID, ok := row.Attr("id")
		if !ok || externalID == "" {
			return
		}

		titleLink := row.Find("span.titleline > a").First()
		title := strings.TrimSpace(titleLink.Text())
		href, _ := titleLink.Attr("href")
		if title == "" || href == "" {
			return
		}

		item := RawItem{
			ExternalID:  externalID,
			Title:       title,
			Rank:        parseLeadingNumber(row.Find("span.rank").First().Text()),
			CommentsURL: baseURL.Scheme + "://" + baseURL.Host + "/item?id=" + externalID,
		}

		if strings.HasPrefix(href, "item?id=") {
			// Discussion-only thread hosted on the listing site itself.
			item.URL = item.CommentsURL
		} else {
			resolved, err := baseURL.Parse(href)
			if err != nil {
				return
			}
			item.URL = resolved.String()
		}

		meta := row.Next()
		if meta.Length() > 0 {
			item.Score = parseLeadingNumber(meta.Find("span.score").First().Text())
			item.Author = strings.TrimSpace(meta.Find("a.hnuser").First().Text())

			meta.Find("a").Each(func(_ int, a *goquery.Selection) {
				text := a.Text()
				if strings.Contains(text, "comment") {
					item.CommentCount = parseLeadingNumber(text)
				}
			})
		}

		items = append(items, item)
	})

	return items, nil
}

func parseLeadingNumber(text string) int {
	match := numberExpr.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
