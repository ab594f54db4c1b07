package pdfloader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

func TestLoadReaderRejectsNonPDF(t *testing.T) {
	loader := New(time.Second)
	_, err := loader.LoadReader(context.Background(), "notes.txt", bytes.NewBufferString("plain text, not a pdf"))
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}

func TestLoadReaderRejectsEmptyInput(t *testing.T) {
	loader := New(time.Second)
	_, err := loader.LoadReader(context.Background(), "empty.pdf", bytes.NewReader(nil))
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}

func TestLoadSourceMissingFile(t *testing.T) {
	loader := New(time.Second)
	_, err := loader.LoadSource(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}

func TestLoadSourceInvalidLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pdf")
	if err := os.WriteFile(path, []byte("%PDF-not-really"), 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	loader := New(time.Second)
	_, err := loader.LoadSource(context.Background(), path)
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}

func TestLoadSourceFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	loader := New(time.Second)
	_, err := loader.LoadSource(context.Background(), server.URL+"/missing.pdf")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}

func TestLoadSourceFetchUnreachableHost(t *testing.T) {
	loader := New(100 * time.Millisecond)
	_, err := loader.LoadSource(context.Background(), "http://127.0.0.1:1/nothing.pdf")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected load error kind, got %v", err)
	}
}
