// Package deadlink probes bookmark URLs for reachability with a bounded
// worker pool.
package deadlink

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/urlnorm"
)

const (
	// DefaultConcurrency is the worker count when Options leaves it unset.
	DefaultConcurrency = 10
	// MaxConcurrency caps the worker count regardless of configuration.
	MaxConcurrency = 20
	// DefaultTimeout is the per-request timeout when Options leaves it unset.
	DefaultTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	accept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Options configures a check run.
type Options struct {
	Concurrency    int
	Timeout        time.Duration
	ExcludeDomains []string
}

// Result is the outcome of probing one bookmark's URL.
type Result struct {
	Bookmark   model.Bookmark
	Alive      bool
	StatusCode int    // 0 = transport-level failure
	Error      string // normalized category for dead results
}

// ResultFunc receives each result in completion order from a single
// goroutine, so it may persist without its own locking.
type ResultFunc func(Result)

// ProgressFunc is called after each probe with (completed, total).
type ProgressFunc func(completed, total int)

// Check probes every bookmark URL concurrently. Non-HTTP(S) URLs and URLs
// on excluded domains are skipped without a result. Cancellation stops
// submitting new work; probes already in flight finish and are reported.
func Check(ctx context.Context, bookmarks []model.Bookmark, opts Options, onResult ResultFunc, onProgress ProgressFunc) []Result {
	excludeMap := buildExcludeMap(opts.ExcludeDomains)

	jobs := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if probeable(b.URL, excludeMap) {
			jobs = append(jobs, b)
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	// Suppress noisy http.Client logging (unsolicited responses etc).
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	client := newClient(opts.Timeout)
	queue := make(chan model.Bookmark)
	resultCh := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < concurrency(opts.Concurrency); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range queue {
				r := probe(client, b.URL)
				r.Bookmark = b
				resultCh <- r
			}
		}()
	}

	submitted := 0
submit:
	for _, b := range jobs {
		select {
		case <-ctx.Done():
			break submit
		case queue <- b:
			submitted++
		}
	}
	close(queue)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single collector: results arrive in completion order.
	results := make([]Result, 0, submitted)
	for r := range resultCh {
		results = append(results, r)
		if onResult != nil {
			onResult(r)
		}
		if onProgress != nil {
			onProgress(len(results), len(jobs))
		}
	}
	return results
}

// CheckUnique probes each distinct normalized URL once and fans the
// outcome out to every bookmark sharing it. The per-result callback still
// fires once per bookmark.
func CheckUnique(ctx context.Context, bookmarks []model.Bookmark, opts Options, onResult ResultFunc, onProgress ProgressFunc) []Result {
	byNorm := make(map[string][]model.Bookmark)
	representatives := make([]model.Bookmark, 0)
	for _, b := range bookmarks {
		key := urlnorm.Normalize(b.URL)
		if _, seen := byNorm[key]; !seen {
			representatives = append(representatives, b)
		}
		byNorm[key] = append(byNorm[key], b)
	}

	var fanned []Result
	Check(ctx, representatives, opts, func(r Result) {
		key := urlnorm.Normalize(r.Bookmark.URL)
		for _, b := range byNorm[key] {
			out := r
			out.Bookmark = b
			fanned = append(fanned, out)
			if onResult != nil {
				onResult(out)
			}
		}
	}, nil)

	if onProgress != nil {
		onProgress(len(fanned), len(fanned))
	}
	return fanned
}

func concurrency(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// probe checks one URL. HEAD first; a 405 means the server rejects HEAD,
// so retry once with GET before judging.
func probe(client *http.Client, rawURL string) Result {
	resp, err := do(client, http.MethodHead, rawURL)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = do(client, http.MethodGet, rawURL)
	}
	if err != nil {
		return Result{Error: normalizeError(err.Error())}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return Result{Alive: true, StatusCode: resp.StatusCode}
	}
	return Result{StatusCode: resp.StatusCode, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
}

func do(client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	return client.Do(req)
}

func probeable(rawURL string, excludeMap map[string]bool) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !isExcludedDomain(u.Hostname(), excludeMap)
}

func buildExcludeMap(domains []string) map[string]bool {
	m := make(map[string]bool, len(domains))
	for _, d := range domains {
		m[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return m
}

// isExcludedDomain matches the host exactly or as a subdomain of an
// excluded domain ("api.github.com" matches "github.com").
func isExcludedDomain(host string, excludeMap map[string]bool) bool {
	host = strings.ToLower(host)
	if excludeMap[host] {
		return true
	}
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError collapses verbose transport errors into short categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
