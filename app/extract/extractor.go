package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/publicsuffix"

	"hnpulse/app/database"
	"hnpulse/app/listing"
)

// ErrContentTooShort marks an item whose extracted text is below the
// configured minimum. Such items are excluded from persistence entirely.
var ErrContentTooShort = errors.New("content below minimum length")

// ExtractionError is a per-item normalization failure. The batch skips the
// item and continues.
type ExtractionError struct {
	ExternalID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.ExternalID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Extractor normalizes a raw listing item into an Article record: registrable
// domain, readable-text content length, thin-content filtering.
type Extractor struct {
	httpClient       *http.Client
	userAgent        string
	timeout          time.Duration
	minContentLength int
}

func NewExtractor(httpClient *http.Client, userAgent string, timeout time.Duration, minContentLength int) *Extractor {
	return &Extractor{
		httpClient:       httpClient,
		userAgent:        userAgent,
		timeout:          timeout,
		minContentLength: minContentLength,
	}
}

// Run normalizes one raw item. Errors are *ExtractionError; a wrapped
// ErrContentTooShort means the item was readable but too thin to keep.
func (e *Extractor) Run(ctx context.Context, item listing.RawItem) (database.Article, error) {
	parsed, err := url.Parse(item.URL)
	if err != nil || parsed.Host == "" {
		return database.Article{}, &ExtractionError{ExternalID: item.ExternalID, Err: fmt.Errorf("invalid URL %q", item.URL)}
	}

	contentLength, err := e.measureContent(ctx, parsed)
	if err != nil {
		return database.Article{}, &ExtractionError{ExternalID: item.ExternalID, Err: err}
	}

	if contentLength < e.minContentLength {
		slog.Debug("Item below content threshold",
			"external_id", item.ExternalID, "length", contentLength, "min", e.minContentLength)
		return database.Article{}, &ExtractionError{ExternalID: item.ExternalID, Err: ErrContentTooShort}
	}

	return database.Article{
		ExternalID:    item.ExternalID,
		Title:         item.Title,
		CanonicalURL:  parsed.String(),
		Domain:        registrableDomain(parsed),
		Author:        item.Author,
		Score:         item.Score,
		CommentCount:  item.CommentCount,
		Rank:          item.Rank,
		ContentLength: contentLength,
	}, nil
}

// measureContent fetches the article page and measures its readable text.
func (e *Extractor) measureContent(ctx context.Context, pageURL *url.URL) (int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return 0, fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(whitespaceExpr.ReplaceAllString(article.TextContent, " "))
	return len(text), nil
}

// registrableDomain derives the public-suffix-aware registrable domain:
// sub.example.co.uk resolves to example.co.uk. Hosts without a public suffix
// (IPs, localhost) fall back to the bare host.
func registrableDomain(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
