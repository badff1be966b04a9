package conditional

import "strings"

const weakPrefix = "W/"

// Weak formats a raw version as a weak entity tag, e.g. W/"1700000000".
func Weak(version string) string {
	return weakPrefix + `"` + version + `"`
}

// Opaque strips the weak marker and quotes from a single entity tag.
func Opaque(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, weakPrefix)
	if len(tag) >= 2 && tag[0] == '"' && tag[len(tag)-1] == '"' {
		tag = tag[1 : len(tag)-1]
	}
	return tag
}

// Matches reports whether a precondition header value (If-Match or
// If-None-Match) names the given version. The header may be "*" or a
// comma-separated list of tags; comparison is weak. An empty header never
// matches.
func Matches(header, version string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		opaque := Opaque(candidate)
		if opaque == "" {
			continue
		}
		if opaque == "*" || opaque == version {
			return true
		}
	}
	return false
}
