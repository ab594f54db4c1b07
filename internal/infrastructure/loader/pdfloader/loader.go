package pdfloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

const maxDocumentBytes = 64 << 20

// Loader reads a PDF from a local path, an http(s) URL, or an uploaded
// reader, and yields one Page per physical page in document order.
type Loader struct {
	httpClient *http.Client
}

func New(fetchTimeout time.Duration) *Loader {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Loader{
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

func (l *Loader) LoadSource(ctx context.Context, source string) ([]domain.Page, error) {
	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = l.fetch(ctx, source)
	} else {
		raw, err = os.ReadFile(source)
		if err != nil {
			err = domain.WrapError(domain.ErrLoad, "read document file", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return parsePages(source, raw)
}

func (l *Loader) LoadReader(_ context.Context, name string, r io.Reader) ([]domain.Page, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read uploaded document", err)
	}
	return parsePages(name, raw)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "create fetch request", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "fetch document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, domain.WrapError(domain.ErrLoad, "fetch document",
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read fetched document", err)
	}
	return raw, nil
}

func parsePages(source string, raw []byte) ([]domain.Page, error) {
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrLoad, "parse pdf", errors.New("empty document"))
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "parse pdf", err)
	}

	pages := make([]domain.Page, 0, reader.NumPage())
	for number := 1; number <= reader.NumPage(); number++ {
		page := reader.Page(number)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, domain.WrapError(domain.ErrLoad, "extract page text",
				fmt.Errorf("page %d: %w", number, err))
		}
		pages = append(pages, domain.Page{
			Text:   text,
			Number: number,
			Source: source,
		})
	}

	if len(pages) == 0 {
		return nil, domain.WrapError(domain.ErrLoad, "parse pdf", errors.New("document has no pages"))
	}
	return pages, nil
}
