package content

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
)

// DefaultLoadConcurrency bounds the number of documents read at once
const DefaultLoadConcurrency = 4

// Loader reads YAML documents from disk
type Loader struct {
	limit    int
	logger   *logging.Logger
	readFile func(string) ([]byte, error)
}

var _ interfaces.DocumentLoader = (*Loader)(nil)

// NewLoader creates a loader reading at most limit files concurrently
func NewLoader(limit int) *Loader {
	if limit <= 0 {
		limit = DefaultLoadConcurrency
	}
	return &Loader{
		limit:    limit,
		logger:   logging.GetContentLogger(),
		readFile: os.ReadFile,
	}
}

// SetLogger replaces the loader's logger
func (l *Loader) SetLogger(logger *logging.Logger) {
	l.logger = logger
}

// Load reads every path concurrently. Documents come back in path order.
// Files that fail are skipped and reported together in the returned error,
// so a partial result and a non-nil error can be returned together.
func (l *Loader) Load(ctx context.Context, paths []string) ([]interfaces.Document, error) {
	docs := make([]*interfaces.Document, len(paths))
	failures := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			doc, err := l.loadFile(path)
			if err != nil {
				l.logger.LogDocumentLoad(path, 0, time.Since(start), err)
				failures[i] = err
				return nil
			}
			l.logger.LogDocumentLoad(path, len(doc.Sections), time.Since(start), nil)
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	chain := errors.NewErrorChain(l.logger)
	loaded := make([]interfaces.Document, 0, len(paths))
	for i := range paths {
		if failures[i] != nil {
			chain.Add(failures[i])
			continue
		}
		loaded = append(loaded, *docs[i])
	}

	if chain.HasErrors() {
		return loaded, chain.ToCombinedError(errors.ErrorTypeContent, "loader")
	}
	return loaded, nil
}

func (l *Loader) loadFile(path string) (*interfaces.Document, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc.Path = path
	if doc.Title == "" {
		base := filepath.Base(path)
		doc.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

// ParseDocument decodes and normalizes one YAML document. Unknown fields
// are rejected.
func ParseDocument(data []byte) (*interfaces.Document, error) {
	var doc interfaces.Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if err := normalizeSections(doc.Sections); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalizeSections fills in missing IDs and levels and rejects duplicate
// IDs
func normalizeSections(sections []interfaces.Section) error {
	if len(sections) == 0 {
		return errors.NewValidationError("parser").
			WithOperation("normalize").
			WithMessage("document has no sections").
			WithoutStackTrace().
			Build()
	}

	seen := make(map[string]int, len(sections))
	for i := range sections {
		s := &sections[i]
		if s.ID == "" {
			s.ID = slug(s.Title)
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("section-%d", i+1)
		}
		if s.Level <= 0 {
			s.Level = 1
		}
		if prev, dup := seen[s.ID]; dup {
			return errors.NewValidationError("parser").
				WithOperation("normalize").
				WithMessage(fmt.Sprintf("sections %d and %d share the ID %q", prev+1, i+1, s.ID)).
				WithContext("section", s.ID).
				WithoutStackTrace().
				Build()
		}
		seen[s.ID] = i
	}
	return nil
}

// slug lowercases title and joins its letter and digit runs with dashes
func slug(title string) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}
