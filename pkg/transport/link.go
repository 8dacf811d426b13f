package transport

import "strings"

// ParseLinkNext extracts the URL with rel="next" from an RFC 5988 Link
// header. Returns empty string if no next link is present.
//
// Format: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func ParseLinkNext(header string) string {
	if header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)

		// Each part is: <url>; param; param
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		urlPart := strings.TrimSpace(segments[0])
		if !hasRel(segments[1:], "next") {
			continue
		}

		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}

	return ""
}

// hasRel reports whether any rel parameter lists want. rel may hold several
// space-separated relation types and may be quoted or bare.
func hasRel(params []string, want string) bool {
	for _, p := range params {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		for _, rel := range strings.Fields(value) {
			if strings.EqualFold(rel, want) {
				return true
			}
		}
	}
	return false
}
