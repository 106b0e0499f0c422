// Package summarize produces the short summary returned when a web page is
// ingested.
package summarize

import "context"

// Summarizer produces a brief summary of the provided text. source is the
// display name of where the text came from, for citation purposes.
type Summarizer interface {
	Summarize(ctx context.Context, text, source string) (string, error)
}
