// Package urlnorm canonicalizes URLs for duplicate comparison.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// trackingParams are query parameter names stripped during normalization
// (compared case-insensitively).
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"source":       true,
	"mc_cid":       true,
	"mc_eid":       true,
}

// Normalize returns the canonical form of a URL used as the exact-duplicate
// grouping key: lowercased host without a leading "www.", no trailing slash,
// tracking parameters removed, remaining query parameters sorted by key, and
// the fragment dropped. Unparseable input falls back to lowercased trimmed
// text. Normalize is idempotent.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	host := normalizeHost(u.Host)
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = "/"
	}

	query := sortedQuery(u.Query())

	normalized := u.Scheme + "://" + host + path
	if query != "" {
		normalized += "?" + query
	}
	return normalized
}

// Signature derives the coarser key used for fuzzy comparison: host plus
// slash-trimmed path, ignoring scheme and query. Two URLs differing only by
// protocol or tracking parameters collapse to the same signature.
func Signature(raw string) string {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = "/"
	}
	return normalizeHost(u.Host) + path
}

// Similarity returns a normalized edit-distance ratio in [0,1] between the
// signatures of two URLs. Equal signatures score 1.0.
func Similarity(a, b string) float64 {
	sigA := Signature(a)
	sigB := Signature(b)

	if sigA == sigB {
		return 1.0
	}

	maxLen := len(sigA)
	if len(sigB) > maxLen {
		maxLen = len(sigB)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(sigA, sigB)
	return 1.0 - float64(dist)/float64(maxLen)
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// sortedQuery rebuilds a query string with tracking parameters removed and
// the remaining keys sorted. Blank values are kept.
func sortedQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if trackingParams[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
