package chunker

import (
	"docqa/internal/domain"
)

// Defaults match the reference chunking parameters.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 200
)

// Chunker splits extracted text into fixed-size passages with overlap.
// Sizes are measured in runes so multi-byte text is never cut mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkSize returns the configured maximum passage length in runes.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap length in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split produces passages from the given extraction units. Every passage
// after the first within a unit repeats the trailing overlap of its
// predecessor; overlap never crosses a unit boundary, so page metadata stays
// accurate. Sequence indexes are global across the whole document. Empty
// input yields an empty slice; the ingestion flow treats that as a failure.
func (c *Chunker) Split(units []domain.Unit, origin string) []domain.Passage {
	var passages []domain.Passage
	seq := 0
	for _, u := range units {
		runes := []rune(u.Text)
		if len(runes) == 0 {
			continue
		}
		step := c.chunkSize - c.overlap
		for start := 0; ; start += step {
			end := start + c.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			passages = append(passages, domain.Passage{
				Text:   string(runes[start:end]),
				Origin: origin,
				Page:   u.Page,
				Seq:    seq,
			})
			seq++
			if end == len(runes) {
				break
			}
		}
	}
	return passages
}
