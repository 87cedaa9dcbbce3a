package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// entryFilter is one condition of a content search.
type entryFilter interface {
	// SQL returns the WHERE fragment; e is content_entries and b is books.
	SQL() string
	Args() []any
}

type bookTypeFilter struct{ bookTypeID string }

func (f bookTypeFilter) SQL() string { return "b.book_type_id = ?" }
func (f bookTypeFilter) Args() []any { return []any{f.bookTypeID} }

type bookFilter struct{ bookID string }

func (f bookFilter) SQL() string { return "e.book_id = ?" }
func (f bookFilter) Args() []any { return []any{f.bookID} }

// tagsFilter matches entries linked to any of the tags.
type tagsFilter struct{ tagIDs []string }

func (f tagsFilter) SQL() string {
	return `EXISTS (SELECT 1 FROM content_entry_tags t
		WHERE t.content_entry_id = e.id AND t.tag_id IN (` + placeholders(len(f.tagIDs)) + `))`
}

func (f tagsFilter) Args() []any { return stringArgs(f.tagIDs) }

// valueFilter requires a value row, optionally for one definition and
// optionally containing a substring.
type valueFilter struct {
	definitionID string
	contains     string
}

func (f valueFilter) SQL() string {
	var b strings.Builder
	b.WriteString(`EXISTS (SELECT 1 FROM attribute_values v WHERE v.content_entry_id = e.id`)
	if f.definitionID != "" {
		b.WriteString(` AND v.attribute_definition_id = ?`)
	}
	if f.contains != "" {
		b.WriteString(` AND v.value LIKE ? ESCAPE '\'`)
	}
	b.WriteString(`)`)
	return b.String()
}

func (f valueFilter) Args() []any {
	var args []any
	if f.definitionID != "" {
		args = append(args, f.definitionID)
	}
	if f.contains != "" {
		args = append(args, "%"+escapeLike(f.contains)+"%")
	}
	return args
}

// entryFilterBuilder ANDs the filters that apply to a query.
type entryFilterBuilder struct {
	filters []entryFilter
}

func newEntryFilterBuilder(q store.EntryQuery) *entryFilterBuilder {
	fb := &entryFilterBuilder{}
	if q.BookTypeID != "" {
		fb.filters = append(fb.filters, bookTypeFilter{q.BookTypeID})
	}
	if q.BookID != "" {
		fb.filters = append(fb.filters, bookFilter{q.BookID})
	}
	if tagIDs := dedupe(q.TagIDs); len(tagIDs) > 0 {
		fb.filters = append(fb.filters, tagsFilter{tagIDs})
	}
	if q.AttributeDefinitionID != "" || q.Contains != "" {
		fb.filters = append(fb.filters, valueFilter{
			definitionID: q.AttributeDefinitionID,
			contains:     q.Contains,
		})
	}
	return fb
}

// Build returns the WHERE clause (without the keyword) and its arguments.
func (fb *entryFilterBuilder) Build() (string, []any) {
	if len(fb.filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(fb.filters))
	var args []any
	for _, f := range fb.filters {
		parts = append(parts, f.SQL())
		args = append(args, f.Args()...)
	}
	return strings.Join(parts, " AND "), args
}

// String names the active filters, for logging.
func (fb *entryFilterBuilder) String() string {
	if len(fb.filters) == 0 {
		return "(no filters)"
	}
	names := make([]string, 0, len(fb.filters))
	for _, f := range fb.filters {
		names = append(names, fmt.Sprintf("%T", f))
	}
	return strings.Join(names, ", ")
}

// FindContentEntries returns the distinct entries matching q, newest first.
func (s *Store) FindContentEntries(ctx context.Context, q store.EntryQuery) ([]*domain.ContentEntry, error) {
	fb := newEntryFilterBuilder(q)
	where, args := fb.Build()

	query := `SELECT ` + entryColumns + ` FROM content_entries e
		JOIN books b ON b.id = e.book_id`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += entryOrder

	entries, err := s.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find content entries: %w", err)
	}

	s.logger.Debug("content entries found", "filters", fb.String(), "count", len(entries))
	return entries, nil
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
