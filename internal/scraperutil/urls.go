package scraperutil

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// trackingParams are stripped during normalization so the same listing shared
// through different channels hashes to the same id.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid",
}

// NormalizeURL canonicalizes a listing URL: ensures an https scheme, drops
// common tracking query params, strips a leading "www." and a trailing slash.
// On parse failure the input is returned unchanged.
func NormalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	u.Host = strings.TrimPrefix(u.Host, "www.")

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// ExtractDomain returns the registrable hostname of a URL after
// normalization, or "" if the URL cannot be parsed.
func ExtractDomain(raw string) string {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ToAbsoluteURL resolves a possibly relative image/link URL against the page
// URL. Protocol-relative ("//cdn..."), root-relative ("/img...") and
// path-relative forms are all handled; already-absolute URLs pass through.
func ToAbsoluteURL(rawURL, baseURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return rawURL
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return base.ResolveReference(ref).String()
}

// GenerateIDFromURL derives the stable listing id: a truncated SHA-256 of the
// normalized URL. Two shares of the same listing always map to the same id.
func GenerateIDFromURL(rawURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return hex.EncodeToString(sum[:])[:16]
}

// FileNameFromURL returns the final path segment of a URL ("" on failure).
// Portals serve the same photo from several cache-busted or CDN-mirrored
// URLs; the filename is the stable part used for dedup.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	return p
}
