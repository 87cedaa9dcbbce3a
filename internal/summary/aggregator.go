// Package summary groups search results by book and renders the short
// summaries shown for each entry.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// DefaultMaxLength bounds summary text, in runes.
const DefaultMaxLength = 80

// summaryAttributes is how many leading attributes an entry summary shows.
const summaryAttributes = 2

// Source loads single attribute values.
type Source interface {
	GetAttributeValue(ctx context.Context, entryID, definitionID string) (*domain.AttributeValue, error)
}

// EntrySummary is an entry with its rendered summary lines.
type EntrySummary struct {
	Entry *domain.ContentEntry `json:"entry"`
	Lines []Line               `json:"lines"`
}

// BookGroup is the slice of results belonging to one book, in result order.
type BookGroup struct {
	Book    *domain.Book   `json:"book"`
	Entries []EntrySummary `json:"entries"`
}

// Count returns the number of entries in the group.
func (g BookGroup) Count() int { return len(g.Entries) }

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxLength sets the summary text bound. Non-positive values disable
// truncation.
func WithMaxLength(n int) Option {
	return func(a *Aggregator) { a.maxLen = n }
}

// WithConcurrency caps parallel value loads within a group.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) { a.concurrency = n }
}

// Aggregator turns an ordered result list into annotated book groups.
type Aggregator struct {
	source      Source
	logger      *slog.Logger
	maxLen      int
	concurrency int
}

// NewAggregator creates an aggregator reading values from source.
func NewAggregator(source Source, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:      source,
		logger:      logger,
		maxLen:      DefaultMaxLength,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize groups entries by book in first-seen order, keeping the order of
// entries within each group. attributesByBook holds each book's effective
// attributes. Entries whose book is missing from books are dropped.
//
// Summaries of a group load concurrently and are joined before the group is
// emitted. Only storage failures are returned.
func (a *Aggregator) Summarize(
	ctx context.Context,
	entries []*domain.ContentEntry,
	books map[string]*domain.Book,
	attributesByBook map[string][]*domain.AttributeDefinition,
) ([]BookGroup, error) {
	var (
		order   []string
		grouped = make(map[string][]*domain.ContentEntry)
	)
	for _, e := range entries {
		if _, ok := books[e.BookID]; !ok {
			a.logger.Debug("dropping entry of unknown book", "entry_id", e.ID, "book_id", e.BookID)
			continue
		}
		if _, seen := grouped[e.BookID]; !seen {
			order = append(order, e.BookID)
		}
		grouped[e.BookID] = append(grouped[e.BookID], e)
	}

	groups := make([]BookGroup, 0, len(order))
	for _, bookID := range order {
		summaries, err := a.summarizeGroup(ctx, grouped[bookID], attributesByBook[bookID])
		if err != nil {
			return nil, err
		}
		groups = append(groups, BookGroup{Book: books[bookID], Entries: summaries})
	}
	return groups, nil
}

func (a *Aggregator) summarizeGroup(ctx context.Context, entries []*domain.ContentEntry, defs []*domain.AttributeDefinition) ([]EntrySummary, error) {
	summaries := make([]EntrySummary, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, e := range entries {
		g.Go(func() error {
			lines, err := a.SummarizeEntry(gctx, e, defs)
			if err != nil {
				return err
			}
			summaries[i] = EntrySummary{Entry: e, Lines: lines}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// SummarizeEntry renders the summary lines of one entry from the first two
// of defs.
func (a *Aggregator) SummarizeEntry(ctx context.Context, e *domain.ContentEntry, defs []*domain.AttributeDefinition) ([]Line, error) {
	if len(defs) == 0 {
		text := addedOn(e.DateAdded)
		return []Line{{Text: text, Full: text}}, nil
	}

	n := min(len(defs), summaryAttributes)
	lines := make([]Line, 0, n)
	for _, def := range defs[:n] {
		v, err := a.value(ctx, e.ID, def.ID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, renderValue(def, v, a.maxLen))
	}
	return lines, nil
}

// RenderAll renders every attribute of defs for the detail view, pairing each
// definition with its value. Missing values render as placeholders.
func (a *Aggregator) RenderAll(ctx context.Context, e *domain.ContentEntry, defs []*domain.AttributeDefinition) ([]Line, error) {
	lines := make([]Line, 0, len(defs))
	for _, def := range defs {
		v, err := a.value(ctx, e.ID, def.ID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, renderValue(def, v, 0))
	}
	return lines, nil
}

// value loads a value, treating a missing row as no value.
func (a *Aggregator) value(ctx context.Context, entryID, definitionID string) (*domain.AttributeValue, error) {
	v, err := a.source.GetAttributeValue(ctx, entryID, definitionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load value of %s for entry %s: %w", definitionID, entryID, err)
	}
	return v, nil
}
