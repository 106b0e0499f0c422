package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	longPath := "/" + strings.Repeat("a", 80)

	cases := []struct {
		name   string
		origin string
		want   string
	}{
		{"file path keeps base", "/tmp/uploads/report.pdf", "report.pdf"},
		{"bare filename", "report.pdf", "report.pdf"},
		{"url host and path", "https://example.com/docs/intro", "example.com/docs/intro"},
		{"url path truncated to 50", "https://example.com" + longPath, "example.com" + longPath[:50]},
		{"unknown literal", "unknown", "unknown"},
		{"empty origin", "", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DisplayName(tc.origin))
		})
	}
}

func TestDisplayNameUnparseableURL(t *testing.T) {
	origin := "https://" + strings.Repeat("%zz", 40)
	got := DisplayName(origin)
	assert.Equal(t, string([]rune(origin)[:60]), got)
	assert.Len(t, []rune(got), 60)
}
