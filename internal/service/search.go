package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/search"
	"github.com/presenterapp/presenter/internal/store"
	"github.com/presenterapp/presenter/internal/summary"
)

// SearchService runs content searches and shapes their results for display.
// One search runs at a time; a call made while another is in flight fails
// with errors.ErrBusy instead of waiting.
type SearchService struct {
	store      store.Store
	engine     *search.Engine
	aggregator *summary.Aggregator
	filters    *search.FilterState
	logger     *slog.Logger
	busy       atomic.Bool
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, engine *search.Engine, aggregator *summary.Aggregator, filters *search.FilterState, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:      store,
		engine:     engine,
		aggregator: aggregator,
		filters:    filters,
		logger:     logger,
	}
}

// SearchRequest describes a search from the user's point of view.
type SearchRequest struct {
	Text  string
	Exact bool

	BookTypeID            string
	BookID                string
	AttributeDefinitionID string
	// TagIDs filters by tag. Nil uses the shared tag selection; an empty,
	// non-nil slice searches without a tag filter.
	TagIDs []string

	// InBook pins the search to one book, overriding BookTypeID and BookID.
	InBook string
}

// Results are the grouped matches of a search.
type Results struct {
	Groups []summary.BookGroup `json:"groups"`
	Total  int                 `json:"total"`
}

// Search runs req and groups the matches by book. Storage failures come back
// as errors coded STORAGE; malformed stored values only affect the summaries.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*Results, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("search rejected, another one is running")
		return nil, domainerrors.ErrBusy
	}
	defer s.busy.Store(false)

	start := time.Now()

	criteria := s.criteria(req)
	entries, err := s.engine.Search(ctx, criteria)
	if err != nil {
		return nil, s.fail(err)
	}

	groups, err := s.summarize(ctx, entries)
	if err != nil {
		return nil, s.fail(err)
	}

	total := 0
	for _, g := range groups {
		total += g.Count()
	}

	s.logger.Debug("search completed",
		"text", req.Text,
		"exact", req.Exact,
		"books", len(groups),
		"results", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Results{Groups: groups, Total: total}, nil
}

// Busy reports whether a search is in flight.
func (s *SearchService) Busy() bool {
	return s.busy.Load()
}

func (s *SearchService) criteria(req SearchRequest) search.Criteria {
	tagIDs := req.TagIDs
	if tagIDs == nil {
		tagIDs = s.filters.SelectedTags()
	}

	c := search.Criteria{
		Text:                  req.Text,
		Exact:                 req.Exact,
		BookTypeID:            req.BookTypeID,
		BookID:                req.BookID,
		AttributeDefinitionID: req.AttributeDefinitionID,
		TagIDs:                tagIDs,
	}
	if req.InBook != "" {
		c = c.InBook(req.InBook)
	}
	return c
}

// summarize looks up the books and effective attributes of the matches and
// hands them to the aggregator.
func (s *SearchService) summarize(ctx context.Context, entries []*domain.ContentEntry) ([]summary.BookGroup, error) {
	if len(entries) == 0 {
		return []summary.BookGroup{}, nil
	}

	bookIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.BookID] {
			seen[e.BookID] = true
			bookIDs = append(bookIDs, e.BookID)
		}
	}

	books, err := s.store.GetBooksByIDs(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListAllAttributes(ctx)
	if err != nil {
		return nil, err
	}

	attributes := make(map[string][]*domain.AttributeDefinition, len(books))
	for bookID, b := range books {
		attributes[bookID] = attributesOf(b, all)
	}

	return s.aggregator.Summarize(ctx, entries, books, attributes)
}

// attributesOf picks a book's effective attributes out of every definition.
func attributesOf(b *domain.Book, all []*domain.AttributeDefinition) []*domain.AttributeDefinition {
	var common, private []*domain.AttributeDefinition
	for _, d := range all {
		if bt, ok := d.Scope.BookTypeID(); ok && bt == b.BookTypeID {
			common = append(common, d)
		} else if id, ok := d.Scope.BookID(); ok && id == b.ID {
			private = append(private, d)
		}
	}
	return domain.EffectiveAttributes(common, private)
}

func (s *SearchService) fail(err error) error {
	s.logger.Error("search failed", "error", err)
	return translate(err, "search")
}

// FilterOptions returns the picker contents for a book type and book
// selection.
func (s *SearchService) FilterOptions(ctx context.Context, sel search.Selection) (*search.FilterOptions, error) {
	opts, err := search.LoadFilterOptions(ctx, s.store, sel)
	if err != nil {
		return nil, translate(err, "filter options")
	}
	return opts, nil
}

// SelectedTags returns the shared tag selection.
func (s *SearchService) SelectedTags() []string {
	return s.filters.SelectedTags()
}

// SelectTags replaces the shared tag selection.
func (s *SearchService) SelectTags(tagIDs []string) {
	s.filters.SetSelectedTags(tagIDs)
}
