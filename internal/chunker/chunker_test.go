package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func repeatText(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString("lorem ipsum dolor sit amet ")
	}
	return string([]rune(b.String())[:n])
}

func TestSplitSizesAndOverlap(t *testing.T) {
	c := New(800, 200)
	text := repeatText(3200)
	passages := c.Split([]domain.Unit{{Text: text}}, "doc.pdf")
	require.Len(t, passages, 5)

	for i, p := range passages {
		assert.LessOrEqual(t, len([]rune(p.Text)), 800)
		assert.Equal(t, i, p.Seq)
		assert.Equal(t, "doc.pdf", p.Origin)
	}
	// Each passage after the first repeats the trailing 200 runes of its
	// predecessor.
	for i := 1; i < len(passages); i++ {
		prev := []rune(passages[i-1].Text)
		cur := []rune(passages[i].Text)
		assert.Equal(t, string(prev[len(prev)-200:]), string(cur[:200]))
	}
}

func TestSplitRoundTrip(t *testing.T) {
	c := New(800, 200)
	for _, n := range []int{1, 199, 800, 801, 1400, 3207} {
		text := repeatText(n)
		passages := c.Split([]domain.Unit{{Text: text}}, "a.txt")
		require.NotEmpty(t, passages)

		var b strings.Builder
		b.WriteString(passages[0].Text)
		for _, p := range passages[1:] {
			b.WriteString(string([]rune(p.Text)[200:]))
		}
		assert.Equal(t, text, b.String(), "length %d", n)
	}
}

func TestSplitEmpty(t *testing.T) {
	c := New(800, 200)
	assert.Empty(t, c.Split(nil, "a.txt"))
	assert.Empty(t, c.Split([]domain.Unit{{Text: ""}}, "a.txt"))
}

func TestSplitShortText(t *testing.T) {
	c := New(800, 200)
	passages := c.Split([]domain.Unit{{Text: "short"}}, "a.txt")
	require.Len(t, passages, 1)
	assert.Equal(t, "short", passages[0].Text)
	assert.Nil(t, passages[0].Page)
}

func TestSplitDoesNotCrossPageBoundaries(t *testing.T) {
	c := New(800, 200)
	p1, p2 := 1, 2
	units := []domain.Unit{
		{Text: repeatText(1000), Page: &p1},
		{Text: repeatText(500), Page: &p2},
	}
	passages := c.Split(units, "doc.pdf")
	require.Len(t, passages, 3)

	assert.Equal(t, 1, *passages[0].Page)
	assert.Equal(t, 1, *passages[1].Page)
	assert.Equal(t, 2, *passages[2].Page)

	// No overlap across the page boundary: the page-2 passage starts the
	// second unit from scratch.
	assert.Equal(t, string([]rune(units[1].Text)[:500]), passages[2].Text)

	// Sequence indexes keep counting across units.
	for i, p := range passages {
		assert.Equal(t, i, p.Seq)
	}
}

func TestNewClampsBadParameters(t *testing.T) {
	c := New(0, -1)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize())
	assert.Equal(t, DefaultOverlap, c.Overlap())

	c = New(100, 100)
	assert.Equal(t, 25, c.Overlap())
}
