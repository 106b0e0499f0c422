package retrieval

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DisplayName derives the display source name shown in context labels,
// citations, and metadata. URLs become host plus up to 50 characters of path
// (raw origin truncated to 60 characters if parsing fails); file paths keep
// only the final component; an unknown origin displays literally.
func DisplayName(origin string) string {
	if origin == "" || origin == "unknown" {
		return "unknown"
	}
	if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return truncate(origin, 60)
		}
		return u.Host + truncate(u.Path, 50)
	}
	return filepath.Base(origin)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
