package pages

import (
	"bytes"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/campus-crawler/internal/admit"
	"github.com/rohmanhakim/campus-crawler/internal/stats"
	"github.com/rohmanhakim/campus-crawler/internal/tokenize"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/urlutil"
)

/*
Page processor - turns one fetched page into deliverable data and links.

Stateless and per-worker; everything here is a pure function of
(URL, parsed document). The frontier and aggregate never appear in
this package.
*/

// Document is the parsed DOM handed between Parse, ProcessPage, and
// ExtractNextLinks.
type Document = goquery.Document

// Parse builds a document from raw response bytes.
func Parse(body []byte) (*goquery.Document, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &PageError{Message: err.Error(), Cause: ErrCauseUnparseableBody}
	}
	return doc, nil
}

// ProcessPage produces the per-page statistics record for a fetched page.
// The page identity is the defragmented response URL.
//
// Precondition: the admissibility filter ran upstream, so the authority
// must be inside uci.edu; anything else is reported as a fatal invariant
// violation.
func ProcessPage(pageURL string, doc *goquery.Document, lex tokenize.Lexicon) (stats.PageRecord, failure.ClassifiedError) {
	authority := urlutil.Authority(pageURL)
	if !strings.Contains(authority, "uci.edu") {
		return stats.PageRecord{}, &PageError{
			Message: "processing " + pageURL + " despite it not being a valid URL",
			Cause:   ErrCauseOutOfScopePage,
		}
	}

	record := stats.NewPageRecord()

	words := lex.Words(Text(doc))

	// DELIVERABLE: UNIQUE PAGES (DOWNLOADED) and LONGEST PAGE
	uniqueURL := urlutil.Defragment(pageURL)
	record.URLWordCounts[uniqueURL] = tokenize.TotalCount(words)

	// DELIVERABLE: MOST COMMON WORDS
	record.Words = words

	// DELIVERABLE: UNIQUE URLS (SEEN)
	record.URLsSeenOnPage = len(resolvedLinkSet(pageURL, doc))

	// DELIVERABLE: SUBDOMAIN COUNT
	record.Subdomains[authority] = 1

	return record, nil
}

// ExtractNextLinks extracts the next links for the crawler to crawl
// through: every a[href] resolved against baseURL, defragmented,
// deduplicated, and filtered through the admissibility predicate.
//
// baseURL is the requested URL, not the response's final URL, to keep
// relative-link resolution predictable under redirects. URLs differing
// only by fragment collapse into one.
func ExtractNextLinks(baseURL string, doc *goquery.Document) []string {
	links := make([]string, 0)
	for link := range resolvedLinkSet(baseURL, doc) {
		if admit.Valid(link) {
			links = append(links, link)
		}
	}
	sort.Strings(links)
	return links
}

// resolvedLinkSet collects the set of defragmented outbound links,
// each href resolved against base.
func resolvedLinkSet(base string, doc *goquery.Document) map[string]struct{} {
	unique := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved, err := urlutil.Resolve(base, href)
		if err != nil {
			return
		}
		unique[urlutil.Defragment(resolved)] = struct{}{}
	})
	return unique
}

// Text extracts all text from the document with inter-element whitespace:
// every text node is trimmed and the non-empty pieces are joined by a
// single space, mirroring a whitespace-separator DOM text dump.
func Text(doc *goquery.Document) string {
	var pieces []string
	for _, root := range doc.Nodes {
		collectText(root, &pieces)
	}
	return strings.Join(pieces, " ")
}

func collectText(node *html.Node, pieces *[]string) {
	if node.Type == html.TextNode {
		if trimmed := strings.TrimSpace(node.Data); trimmed != "" {
			*pieces = append(*pieces, trimmed)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, pieces)
	}
}
