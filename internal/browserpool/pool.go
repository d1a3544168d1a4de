package browserpool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"
)

// Reason is a validation failure classification.
type Reason string

const (
	ReasonDNSError           Reason = "DNS_ERROR"
	ReasonConnectionRefused  Reason = "CONNECTION_REFUSED"
	ReasonTimeout            Reason = "TIMEOUT"
	ReasonHTTP4xx            Reason = "HTTP_4XX"
	ReasonHTTP5xx            Reason = "HTTP_5XX"
	ReasonErrorPageDetected  Reason = "ERROR_PAGE_DETECTED"
	ReasonValidationError    Reason = "VALIDATION_ERROR"
)

// errorPagePatterns is the fixed regex set used to detect a soft-404 or
// access-denied page that still returned a 2xx status.
var errorPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)404 not found`),
	regexp.MustCompile(`(?i)page not found`),
	regexp.MustCompile(`(?i)access denied`),
	regexp.MustCompile(`(?i)forbidden`),
	regexp.MustCompile(`(?i)unauthorized`),
}

const fetchTimeout = 30 * time.Second

// resultCacheSize bounds the number of distinct URLs whose navigation
// result is remembered across Validate calls.
const resultCacheSize = 1024

// Metadata is the page metadata the Validation Agent persists on success.
type Metadata struct {
	Title       string
	Description string
	Keywords    string
	Author      string
	OGImage     string
	Favicon     string
}

// Result is the outcome of fetching and classifying one bookmark's URL.
type Result struct {
	Valid      bool
	Reason     Reason
	StatusCode int
	Metadata   Metadata
}

// Pool bounds concurrent outbound fetches to a fixed shared capacity,
// enforced here rather than by agent-side accounting, and remembers each
// URL's last navigation result so a repeat Validate call for the same URL
// within the cache window skips the network round trip entirely.
type Pool struct {
	sem      *semaphore.Weighted
	client   *http.Client
	capacity int64
	results  *lru.Cache[string, Result]
}

// New builds a Pool that allows at most capacity concurrent fetches.
func New(capacity int64) *Pool {
	if capacity <= 0 {
		capacity = 3
	}
	results, err := lru.New[string, Result](resultCacheSize)
	if err != nil {
		panic(err) // only errors on a non-positive size, never the case here
	}
	return &Pool{
		sem:      semaphore.NewWeighted(capacity),
		client:   &http.Client{Timeout: fetchTimeout},
		capacity: capacity,
		results:  results,
	}
}

// Capacity reports the maximum number of concurrent fetches this pool
// allows.
func (p *Pool) Capacity() int64 {
	return p.capacity
}

// Validate acquires a pool slot, fetches url, and classifies the outcome.
// It blocks until a slot is free or ctx is cancelled. A cached result from
// a prior Validate call for the same url is returned without acquiring a
// slot or touching the network.
func (p *Pool) Validate(ctx context.Context, url string) (Result, error) {
	if cached, ok := p.results.Get(url); ok {
		return cached, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("acquire browser pool slot: %w", err)
	}
	defer p.sem.Release(1)

	result := p.fetch(ctx, url)
	p.results.Add(url, result)
	return result, nil
}

func (p *Pool) fetch(ctx context.Context, url string) Result {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Valid: false, Reason: ReasonValidationError}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Valid: false, Reason: classifyFetchError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return Result{Valid: false, Reason: ReasonValidationError, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 500 {
		return Result{Valid: false, Reason: ReasonHTTP5xx, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return Result{Valid: false, Reason: ReasonHTTP4xx, StatusCode: resp.StatusCode}
	}

	if isErrorPage(body) {
		return Result{Valid: false, Reason: ReasonErrorPageDetected, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Result{Valid: true, StatusCode: resp.StatusCode}
	}

	return Result{
		Valid:      true,
		StatusCode: resp.StatusCode,
		Metadata:   extractMetadata(doc),
	}
}

func classifyFetchError(err error) Reason {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return ReasonTimeout
	case strings.Contains(msg, "no such host"):
		return ReasonDNSError
	case strings.Contains(msg, "connection refused"):
		return ReasonConnectionRefused
	default:
		return ReasonValidationError
	}
}

func isErrorPage(body []byte) bool {
	for _, pattern := range errorPagePatterns {
		if pattern.Match(body) {
			return true
		}
	}
	return false
}

func extractMetadata(doc *goquery.Document) Metadata {
	meta := Metadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	meta.Description = metaContent(doc, "description", "og:description")
	meta.Keywords = metaContent(doc, "keywords")
	meta.Author = metaContent(doc, "author")
	meta.OGImage = metaContent(doc, "og:image")
	if href, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); ok {
		meta.Favicon = href
	}
	return meta
}

// metaContent returns the content of the first <meta> tag (by name= or
// property=) matching any of names.
func metaContent(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		selector := fmt.Sprintf(`meta[name="%s"], meta[property="%s"]`, name, name)
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			return content
		}
	}
	return ""
}
