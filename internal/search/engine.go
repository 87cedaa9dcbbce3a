// Package search finds content entries by relational filters and by exact or
// fuzzy text.
//
// Exact search delegates substring matching to the storage engine. Fuzzy
// search loads the candidate set without a text predicate and keeps the
// candidates whose folded values contain the folded query.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/normalize"
	"github.com/presenterapp/presenter/internal/store"
)

// Source is the read side of the store the engine runs against.
type Source interface {
	FindContentEntries(ctx context.Context, q store.EntryQuery) ([]*domain.ContentEntry, error)
	ListValuesForEntries(ctx context.Context, entryIDs []string, definitionID string) (map[string][]*domain.AttributeValue, error)
	ListAllAttributes(ctx context.Context) ([]*domain.AttributeDefinition, error)
}

// Criteria describes one search. Empty fields impose no constraint.
type Criteria struct {
	Text  string
	// Exact matches Text as a substring with SQLite LIKE instead of folding
	// marks. LIKE ignores case for ASCII letters only: "CON" finds "Con",
	// but "ĐƯỜNG" does not find "đường".
	Exact bool

	BookTypeID string
	BookID     string
	// AttributeDefinitionID restricts results to entries holding a value for
	// the definition, and scopes text matching to that value.
	AttributeDefinitionID string
	// TagIDs matches entries carrying any of the tags.
	TagIDs []string
}

// HasText reports whether the criteria carry a text filter.
func (c Criteria) HasText() bool {
	return strings.TrimSpace(c.Text) != ""
}

// InBook pins the criteria to one book. The book type filter is dropped.
func (c Criteria) InBook(bookID string) Criteria {
	c.BookID = bookID
	c.BookTypeID = ""
	return c
}

// Engine executes searches.
type Engine struct {
	source Source
	logger *slog.Logger
}

// NewEngine creates an engine reading from source.
func NewEngine(source Source, logger *slog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger,
	}
}

// Search returns the entries matching c, newest first.
//
// Malformed stored values never fail a search; only storage errors are
// returned.
func (e *Engine) Search(ctx context.Context, c Criteria) ([]*domain.ContentEntry, error) {
	text := strings.TrimSpace(c.Text)

	q := store.EntryQuery{
		BookTypeID:            c.BookTypeID,
		BookID:                c.BookID,
		AttributeDefinitionID: c.AttributeDefinitionID,
		TagIDs:                c.TagIDs,
	}
	if c.Exact {
		q.Contains = text
	}

	candidates, err := e.source.FindContentEntries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	if c.Exact || text == "" {
		e.logger.Debug("search finished",
			"exact", c.Exact,
			"has_text", text != "",
			"results", len(candidates),
		)
		return candidates, nil
	}

	needle := normalize.Text(text)
	if needle == "" {
		// Text made only of punctuation folds to nothing and filters nothing.
		return candidates, nil
	}

	matches, err := e.fuzzyFilter(ctx, candidates, needle, c.AttributeDefinitionID)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("fuzzy search finished",
		"needle", needle,
		"candidates", len(candidates),
		"results", len(matches),
	)
	return matches, nil
}

// fuzzyFilter keeps, in order, the candidates with a value whose folded
// searchable text contains needle.
func (e *Engine) fuzzyFilter(ctx context.Context, candidates []*domain.ContentEntry, needle, definitionID string) ([]*domain.ContentEntry, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	values, err := e.source.ListValuesForEntries(ctx, ids, definitionID)
	if err != nil {
		return nil, fmt.Errorf("load candidate values: %w", err)
	}

	types, err := e.fieldTypes(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*domain.ContentEntry
	for _, c := range candidates {
		for _, v := range values[c.ID] {
			if strings.Contains(normalize.Text(e.searchableText(v, types)), needle) {
				matches = append(matches, c)
				break
			}
		}
	}
	return matches, nil
}

func (e *Engine) fieldTypes(ctx context.Context) (map[string]domain.FieldType, error) {
	defs, err := e.source.ListAllAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attribute definitions: %w", err)
	}
	types := make(map[string]domain.FieldType, len(defs))
	for _, d := range defs {
		types[d.ID] = d.Type
	}
	return types, nil
}

// searchableText is the text a value is matched against. Flexible content
// contributes block names, contents and file names; anything else, including
// a block list that fails to decode, is matched raw.
func (e *Engine) searchableText(v *domain.AttributeValue, types map[string]domain.FieldType) string {
	if types[v.AttributeDefinitionID] != domain.FieldFlexibleContent {
		return v.Raw
	}

	blocks, err := domain.DecodeBlocks(v.Raw)
	if err != nil {
		e.logger.Debug("matching undecodable flexible content raw",
			"value_id", v.ID,
			"error", err,
		)
		return v.Raw
	}

	parts := make([]string, 0, len(blocks)*2)
	for _, b := range blocks {
		if b.Kind.IsFile() {
			parts = append(parts, b.FileName())
			continue
		}
		parts = append(parts, b.Name, b.Content)
	}
	return strings.Join(parts, "\n")
}
