package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohmanhakim/campus-crawler/pkg/hashutil"
)

// Normalize trims a trailing "/" run from a URL string.
//
// Deliberately minimal: no scheme lowercasing, no percent-encoding
// normalization. Identity decisions belong to Fingerprint, not here.
//
// Properties:
//   - Pure: no state, no memory
//   - Idempotent: Normalize(Normalize(url)) == Normalize(url)
func Normalize(rawURL string) string {
	if strings.HasSuffix(rawURL, "/") {
		return strings.TrimRight(rawURL, "/")
	}
	return rawURL
}

// Fingerprint computes the identity key of a URL: the SHA-256 hex digest of
// "{host}/{path}/{params}/{query}/{fragment}".
//
// The scheme is excluded, so the http and https spellings of a page collide.
// The params slot is the semicolon path-parameter component; Go's net/url
// keeps it inside Path, so the slot stays empty - the digest is still
// deterministic for any given input string.
func Fingerprint(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// unparseable strings still need a stable identity
		digest, _ := hashutil.HashString(rawURL, hashutil.HashAlgoSHA256)
		return digest
	}
	key := fmt.Sprintf("%s/%s/%s/%s/%s",
		parsed.Host, parsed.Path, "", parsed.RawQuery, parsed.Fragment)
	digest, _ := hashutil.HashString(key, hashutil.HashAlgoSHA256)
	return digest
}

// Authority returns a URL's politeness-delay key: the lowercased host with a
// single leading "www." stripped. A string with no parseable host falls back
// to the raw input minus a leading "www.".
func Authority(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(rawURL, "www.")
	}
	host := lowerASCII(parsed.Host)
	return strings.TrimPrefix(host, "www.")
}

// Defragment strips the #fragment from a URL string.
// Idempotent: Defragment(Defragment(url)) == Defragment(url).
func Defragment(rawURL string) string {
	if i := strings.Index(rawURL, "#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Resolve resolves a possibly-relative ref URL against a base URL.
// If ref is absolute, it is returned as-is. Otherwise it is resolved
// relative to base using net/url.URL.ResolveReference.
func Resolve(base string, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse ref URL %q: %w", ref, err)
	}

	resolved := baseURL.ResolveReference(refURL)
	return resolved.String(), nil
}

// lowerASCII converts ASCII characters to lowercase, allocating a copy only
// when the input contains an uppercase ASCII letter.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
