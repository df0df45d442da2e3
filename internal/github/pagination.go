// internal/github/pagination.go
package github

import (
	"regexp"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// NextLink extracts the rel="next" URL from a Link header, or "" if there is none.
func NextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) == 3 && matches[2] == "next" {
			return matches[1]
		}
	}
	return ""
}

// HasNextPage reports whether the Link header advertises a next page.
func HasNextPage(linkHeader string) bool {
	return NextLink(linkHeader) != ""
}
