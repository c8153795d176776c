package bay

import (
	"net/url"
	"strings"
)

// pathSegment escapes s the way the API expects path parameters: everything
// outside the RFC 3986 unreserved set is percent-encoded and spaces become %20.
func pathSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
