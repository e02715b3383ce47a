package admit

import (
	"net/url"
	"strconv"
	"strings"
)

/*
Admissibility - decides whether a URL is in-scope and trap-free.

Valid is a pure predicate over the URL string alone: no crawl history, no
network, no clock. Rules run in a fixed order and the first failure wins.

The rules are the product of a long series of trial and error to see what
links are good and what aren't, and of identifying traps from the URL shape
alone (calendar traps, infinite listing pagination, wiki action endpoints).
*/

// Valid decides whether to crawl this URL. Unparseable input is rejected.
func Valid(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	domain := strings.ToLower(parsed.Host)
	path := strings.ToLower(parsed.Path)

	if _, ok := validSchemes[parsed.Scheme]; !ok {
		return false
	}

	if fileExtPattern.MatchString(path) {
		return false
	}

	// caused frequently by sli.ics.uci.edu; typically has too many redirections.
	// bad queries typically lead to a 4XX error, which gleans no information anyway
	if containsAny(parsed.RawQuery, invalidQueries) {
		return false
	}

	// filter only domain specific; avoid stepping out of boundaries
	if !allowedDomain(domain, path) {
		return false
	}

	// some websites have a robots.txt that explicitly states Disallow: /
	if _, ok := invalidDomains[domain]; ok {
		return false
	}

	for blockedDomain, prefixes := range invalidPaths {
		if domain != blockedDomain && domain != "www."+blockedDomain {
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return false
			}
		}
	}

	// avoid paths that include things like "files/pdf" (one specific example):
	// https://www.informatics.uci.edu/files/pdf/InformaticsBrochure-March2018
	if containsAny(parsed.Path, invalidPathSegments) {
		return false
	}

	pathParts := splitNonEmpty(parsed.Path, "/")
	queryParts := strings.Split(parsed.RawQuery, "&")

	if isCalendarTrap(parsed.Path, pathParts, queryParts) {
		return false
	}

	// avoid invalid fragments; obsolete since we defragment all links
	if containsAny(parsed.Fragment, invalidFragments) {
		return false
	}

	if isPaginationTrap(pathParts) {
		return false
	}

	return true
}

func allowedDomain(domain, path string) bool {
	for _, valid := range validDomains {
		if domain == valid || strings.HasSuffix(domain, "."+valid) {
			return true
		}
	}
	return domain == "today.uci.edu" &&
		strings.HasPrefix(path, "/department/information_computer_sciences/")
}

// isCalendarTrap rejects anything that looks like it contains a calendar
// date, in any path segment, any query segment, or the full path. One
// exception: a trailing YYYY/MM/DD/slug is a news-article pattern, not a trap.
func isCalendarTrap(path string, pathParts, queryParts []string) bool {
	var dateShaped bool
	for _, part := range pathParts {
		if calendarTrapPattern.MatchString(part) {
			dateShaped = true
			break
		}
	}
	if !dateShaped {
		for _, part := range queryParts {
			if calendarTrapPattern.MatchString(part) {
				dateShaped = true
				break
			}
		}
	}
	if !dateShaped {
		dateShaped = calendarTrapPattern.MatchString(path)
	}
	if !dateShaped {
		return false
	}

	return !isNewsArticlePath(pathParts)
}

// isNewsArticlePath reports whether the last four path segments form exactly
// YYYY/MM/DD/slug: four digits, two digits, two digits, non-empty slug.
func isNewsArticlePath(pathParts []string) bool {
	n := len(pathParts)
	if n <= 3 {
		return false
	}
	return anyNumberPattern.MatchString(pathParts[n-4]) && len(pathParts[n-4]) == 4 &&
		anyNumberPattern.MatchString(pathParts[n-3]) && len(pathParts[n-3]) == 2 &&
		anyNumberPattern.MatchString(pathParts[n-2]) && len(pathParts[n-2]) == 2 &&
		len(pathParts[n-1]) > 0
}

// isPaginationTrap rejects /page/N listings with N past the cutoff;
// if the path /page/X can exist at all, something is up beyond 500
func isPaginationTrap(pathParts []string) bool {
	n := len(pathParts)
	if n < 2 || pathParts[n-2] != "page" {
		return false
	}
	pageNum, err := strconv.Atoi(pathParts[n-1])
	if err != nil {
		return false
	}
	return pageNum > maxListingPage
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func splitNonEmpty(s, sep string) []string {
	var parts []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
