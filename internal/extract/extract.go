package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

// Extractor turns a file or a fetched web page into plain-text extraction
// units. PDF files produce one unit per page; web pages and plain-text files
// produce a single unit.
type Extractor struct {
	client *http.Client
}

func New() *Extractor {
	return &Extractor{client: &http.Client{Timeout: 30 * time.Second}}
}

// FromFile extracts text from a local file. PDFs are read page by page so
// page numbers survive into passage metadata.
func (e *Extractor) FromFile(path string) ([]domain.Unit, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return e.fromPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, path)
	}
	return []domain.Unit{{Text: text}}, nil
}

func (e *Extractor) fromPDF(path string) ([]domain.Unit, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var units []domain.Unit
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages rather than failing the document
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pageNum := i
		units = append(units, domain.Unit{Text: text, Page: &pageNum})
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, path)
	}
	return units, nil
}

// FromURL fetches a web page and strips it down to plain text.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) ([]domain.Unit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	text := StripHTML(string(body))
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, rawURL)
	}
	return []domain.Unit{{Text: text}}, nil
}
