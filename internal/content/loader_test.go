package content

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
)

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLoader(limit int) *Loader {
	l := NewLoader(limit)
	l.SetLogger(quietLogger())
	return l
}

func TestParseDocumentNormalizes(t *testing.T) {
	doc, err := ParseDocument([]byte(`
title: Guide
sections:
  - title: Getting Started!
    open: true
    blocks:
      - type: text
        content: hello
  - title: "  "
    level: 2
    fixedHeight: 4
  - id: custom
    title: Custom
`))
	if err != nil {
		t.Fatal(err)
	}

	fixed := 4.0
	want := []interfaces.Section{
		{ID: "getting-started", Title: "Getting Started!", Level: 1, Open: true, Blocks: []interfaces.ContentBlock{{Type: "text", Content: "hello"}}},
		{ID: "section-2", Title: "  ", Level: 2, FixedHeight: &fixed},
		{ID: "custom", Title: "Custom", Level: 1},
	}
	if d := cmp.Diff(want, doc.Sections); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestParseDocumentRejects(t *testing.T) {
	tests := map[string]string{
		"no sections":   "title: empty\n",
		"duplicate ids": "sections:\n  - id: a\n  - title: A\n",
		"unknown field": "sections:\n  - id: a\n    colour: red\n",
		"bad yaml":      "sections: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(body)); err == nil {
				t.Error("document accepted")
			}
		})
	}
}

func TestParseDocumentValidationErrors(t *testing.T) {
	for _, body := range []string{"title: empty\n", "sections:\n  - id: a\n  - title: A\n"} {
		_, err := ParseDocument([]byte(body))
		var ctxErr *errors.ContextualError
		if !stderrors.As(err, &ctxErr) {
			t.Fatalf("ParseDocument(%q) error %v is not contextual", body, err)
		}
		if ctxErr.Type != errors.ErrorTypeValidation || ctxErr.Component != "parser" {
			t.Errorf("got %s error from %s, want validation from parser", ctxErr.Type, ctxErr.Component)
		}
	}
}

func TestLoadKeepsPathOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.yaml", "a.yaml", "b.yaml"} {
		paths = append(paths, writeDoc(t, dir, name, "sections:\n  - id: only\n"))
	}

	docs, err := newTestLoader(2).Load(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	var titles []string
	for _, doc := range docs {
		titles = append(titles, doc.Title)
	}
	if d := cmp.Diff([]string{"c", "a", "b"}, titles); d != "" {
		t.Errorf("titles (-want +got):\n%s", d)
	}
	if docs[0].Path != paths[0] {
		t.Errorf("Path = %q, want %q", docs[0].Path, paths[0])
	}
}

func TestLoadReturnsPartialResults(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.yaml", "title: Good\nsections:\n  - id: s\n")
	bad := writeDoc(t, dir, "bad.yaml", "sections: [\n")
	missing := filepath.Join(dir, "missing.yaml")

	docs, err := newTestLoader(0).Load(context.Background(), []string{bad, good, missing})
	if len(docs) != 1 || docs[0].Title != "Good" {
		t.Fatalf("docs = %+v", docs)
	}

	var ctxErr *errors.ContextualError
	if !stderrors.As(err, &ctxErr) {
		t.Fatalf("error %v is not a ContextualError", err)
	}
	if ctxErr.Type != errors.ErrorTypeContent || ctxErr.GetUserMessage() != "2 errors occurred during operation" {
		t.Errorf("unexpected error %+v", ctxErr)
	}
	if !strings.Contains(ctxErr.Error(), "bad.yaml") || !strings.Contains(ctxErr.Message, "missing.yaml") {
		t.Errorf("error does not name the failing files: %v", ctxErr)
	}
}

func TestLoadCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.yaml", "sections:\n  - id: a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestLoader(1).Load(ctx, []string{path}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Getting Started!", "getting-started"},
		{"  API -- v2 ", "api-v2"},
		{"Über Größe", "über-größe"},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
