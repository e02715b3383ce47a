package admit

import "regexp"

/*
This file contains all constant tables consulted by Valid.

Any schemes, domains, queries, fragments, etc. that make a URL valid or
invalid live here. The tables are the product of empirical trap discovery:
new traps found during crawling are handled by extending a table, not by
editing control flow.
*/

var validSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// the crawl parameters; do not crawl past these
// does not include today.uci.edu/department/information_computer_sciences,
// which is unfortunately hardcoded in Valid
var validDomains = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

// hosts whose robots.txt at the root disallows all;
// these return a 608 from the cache server if attempted
var invalidDomains = map[string]struct{}{
	"intranet.ics.uci.edu": {},
}

// handling disallowed paths is contingent on each authority's robots.txt,
// so there is no "one set fits all"; these prefixes were observed to return
// a 608 during crawling and found disallowed in the robots.txt
var invalidPaths = map[string][]string{
	"ics.uci.edu": {"/people", "/happening"},
	"cs.uci.edu":  {"/people", "/happening"},
	// informatics and stat also expose /wp-admin/admin-ajax.php under
	// /wp-admin; while reachable, it contains literally zero data except a 0.
	"informatics.uci.edu": {"/wp-admin", "/research"},
	"stat.uci.edu":        {"/wp-admin"},
	"www-db.ics.uci.edu":  {"/cgi-bin", "/web-images", "/downloads", "/glimpse_index", "/pages/internal"},
	// not actually disallowed, but this host publishes a lot of blogs with a
	// bunch of tags per blog; several tags point to the same content
	"ngs.ics.uci.edu": {"/tag"},
}

// paths containing these substrings should be skipped
var invalidPathSegments = []string{
	"files/pdf",
	"file/pdf",
	"/-/",
	"/seminar/Nanda",
	"/accounts:",
}

var invalidQueries = []string{
	// these queries are associated with actions that do not produce a webpage
	"action=login",
	"action=download",
	"action=upload",
	"action=edit",
	"action=search",
	"action=source",
	"share=",
	// these queries are associated with calendar actions that do not produce a webpage
	"ical=",
	"outlook=",
	"outlook-ical=",
	// redirect_to is never a good query
	"redirect_to",
	// wiki revision/media endpoints reproduce existing pages
	"rev=",
	"do=media",
	"do=login",
	"do=backlink",
	"idx=",
}

// these fragments are associated with links producing the exact same page,
// pointing at a different section. Mostly obsolete since links are
// defragmented at extraction; retained as a minor belt-and-suspenders check.
var invalidFragments = []string{
	"comment-",
	"respond",
}

// anything that looks like a calendar is probably evil:
// YYYY-M-D, D-M-YYYY, YYYY-M, or M-YYYY, with any non-digit run as delimiter
var calendarTrapPattern = regexp.MustCompile(
	`\d{4}\D+\d{1,2}\D+\d{1,2}|\d{1,2}\D+\d{1,2}\D+\d{4}|\d{4}\D+\d{1,2}|\d{1,2}\D+\d{4}`)

var anyNumberPattern = regexp.MustCompile(`^\d+$`)

// some sites expose pages 1..infinity of the same listing
const maxListingPage = 500

// binary and asset extensions that glean no text
var fileExtPattern = regexp.MustCompile(`\.(css|js|bmp|gif|jpe?g|ico` +
	`|png|tiff?|mid|mp2|mp3|mp4` +
	`|wav|avi|mov|mpeg|ram|m4v|mkv|ogg|ogv|pdf` +
	`|ps|eps|tex|ppt|pptx|ppsx|doc|docx|xls|xlsx|names` +
	`|data|dat|exe|bz2|tar|msi|bin|7z|psd|dmg|iso` +
	`|epub|dll|cnf|tgz|sha1|odc` +
	`|thmx|mso|arff|rtf|jar|csv` +
	`|rm|smil|wmv|swf|wma|zip|rar|gz)$`)
