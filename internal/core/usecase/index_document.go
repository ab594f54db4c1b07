package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
)

// IndexDocumentUseCase runs the blocking upload pipeline:
// load -> chunk -> embed -> index. Any stage failure aborts the whole
// build; there is never a partial index.
type IndexDocumentUseCase struct {
	loader   ports.DocumentLoader
	chunker  ports.Chunker
	embedder ports.Embedder
	store    ports.IndexStore
	log      *slog.Logger
}

func NewIndexDocumentUseCase(
	loader ports.DocumentLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	store ports.IndexStore,
	log *slog.Logger,
) *IndexDocumentUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &IndexDocumentUseCase{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// BuildFromSource indexes a document addressed by path or URL; used for
// the process-wide default corpus at startup.
func (uc *IndexDocumentUseCase) BuildFromSource(ctx context.Context, source string) (ports.Index, error) {
	pages, err := uc.loader.LoadSource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load document source: %w", err)
	}
	return uc.build(ctx, collectionName(source), pages)
}

// BuildFromUpload indexes an uploaded file.
func (uc *IndexDocumentUseCase) BuildFromUpload(ctx context.Context, filename string, file io.Reader) (ports.Index, error) {
	pages, err := uc.loader.LoadReader(ctx, filename, file)
	if err != nil {
		return nil, fmt.Errorf("load uploaded document: %w", err)
	}
	return uc.build(ctx, collectionName(filename), pages)
}

func (uc *IndexDocumentUseCase) build(ctx context.Context, collection string, pages []domain.Page) (ports.Index, error) {
	chunks := uc.chunker.Split(pages)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrLoad, "chunk document", errors.New("document has no indexable text"))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)))
	}

	index, err := uc.store.Build(ctx, collection, chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	uc.log.Info("document_indexed",
		"collection", index.Collection(),
		"pages", len(pages),
		"chunks", index.Len(),
	)
	return index, nil
}

func collectionName(source string) string {
	return fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(source))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.pdf"
	}
	return base
}
