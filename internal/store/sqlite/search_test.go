package sqlite

import (
	"context"
	"testing"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// searchFixture is a small library spanning two types, three books and tags.
type searchFixture struct {
	hymnal, sermons    *domain.BookType
	hymns, carols, sun *domain.Book
	lyrics, title      *domain.AttributeDefinition
	advent, easter     *domain.Tag
	e1, e2, e3, e4, e5 *domain.ContentEntry
}

func newSearchFixture(t *testing.T, s *Store) *searchFixture {
	t.Helper()
	ctx := context.Background()
	f := &searchFixture{}

	f.hymnal = createBookType(t, s, "Hymnal")
	f.sermons = createBookType(t, s, "Sermons")
	f.hymns = createBook(t, s, f.hymnal.ID, "Hymns")
	f.carols = createBook(t, s, f.hymnal.ID, "Carols")
	f.sun = createBook(t, s, f.sermons.ID, "Sunday")
	f.lyrics = createAttribute(t, s, domain.CommonScope(f.hymnal.ID), "Lyrics", domain.FieldText)
	f.title = createAttribute(t, s, domain.CommonScope(f.sermons.ID), "Title", domain.FieldText)
	f.advent = createTag(t, s, "advent")
	f.easter = createTag(t, s, "easter")

	f.e1 = saveEntry(t, s, f.hymns.ID, 1, map[string]string{f.lyrics.ID: "Con đường"})
	f.e2 = saveEntry(t, s, f.hymns.ID, 2, map[string]string{f.lyrics.ID: "con duong"})
	f.e3 = saveEntry(t, s, f.carols.ID, 3, map[string]string{f.lyrics.ID: "Silent night 100%"})
	f.e4 = saveEntry(t, s, f.sun.ID, 4, map[string]string{f.title.ID: "Grace_notes"})
	f.e5 = saveEntry(t, s, f.carols.ID, 5, nil)

	if err := s.SetEntryTags(ctx, f.e1.ID, []string{f.advent.ID, f.easter.ID}); err != nil {
		t.Fatalf("SetEntryTags: %v", err)
	}
	if err := s.SetEntryTags(ctx, f.e3.ID, []string{f.easter.ID}); err != nil {
		t.Fatalf("SetEntryTags: %v", err)
	}
	return f
}

func entryIDs(entries []*domain.ContentEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func assertIDs(t *testing.T, got []*domain.ContentEntry, want ...*domain.ContentEntry) {
	t.Helper()
	gotIDs := entryIDs(got)
	wantIDs := entryIDs(want)
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("got %v, want %v", gotIDs, wantIDs)
	}
	for i := range gotIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("got %v, want %v", gotIDs, wantIDs)
		}
	}
}

func TestFindContentEntries(t *testing.T) {
	s := newTestStore(t)
	f := newSearchFixture(t, s)

	tests := []struct {
		name  string
		query store.EntryQuery
		want  []*domain.ContentEntry
	}{
		{"no filters newest first", store.EntryQuery{}, []*domain.ContentEntry{f.e5, f.e4, f.e3, f.e2, f.e1}},
		{"book type", store.EntryQuery{BookTypeID: f.hymnal.ID}, []*domain.ContentEntry{f.e5, f.e3, f.e2, f.e1}},
		{"book", store.EntryQuery{BookID: f.hymns.ID}, []*domain.ContentEntry{f.e2, f.e1}},
		{"type and book conflict", store.EntryQuery{BookTypeID: f.sermons.ID, BookID: f.hymns.ID}, nil},
		{"tags are ORed and deduplicated", store.EntryQuery{TagIDs: []string{f.advent.ID, f.easter.ID}}, []*domain.ContentEntry{f.e3, f.e1}},
		{"tags ANDed with book", store.EntryQuery{TagIDs: []string{f.easter.ID}, BookID: f.carols.ID}, []*domain.ContentEntry{f.e3}},
		{"attribute requires a value", store.EntryQuery{AttributeDefinitionID: f.lyrics.ID}, []*domain.ContentEntry{f.e3, f.e2, f.e1}},
		{"contains is exact modulo ASCII case", store.EntryQuery{Contains: "Con đường"}, []*domain.ContentEntry{f.e1}},
		{"contains ignores ASCII case", store.EntryQuery{Contains: "SILENT"}, []*domain.ContentEntry{f.e3}},
		{"contains scoped to attribute", store.EntryQuery{Contains: "grace", AttributeDefinitionID: f.lyrics.ID}, nil},
		{"percent is literal", store.EntryQuery{Contains: "100%"}, []*domain.ContentEntry{f.e3}},
		{"underscore is literal", store.EntryQuery{Contains: "e_n"}, []*domain.ContentEntry{f.e4}},
		{"wildcard characters do not match freely", store.EntryQuery{Contains: "t_n"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindContentEntries(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("FindContentEntries: %v", err)
			}
			assertIDs(t, got, tt.want...)
		})
	}
}

func TestListValuesForEntries(t *testing.T) {
	s := newTestStore(t)
	f := newSearchFixture(t, s)
	ctx := context.Background()

	all, err := s.ListValuesForEntries(ctx, []string{f.e1.ID, f.e4.ID, f.e5.ID, f.e1.ID}, "")
	if err != nil {
		t.Fatalf("ListValuesForEntries: %v", err)
	}
	if len(all[f.e1.ID]) != 1 || all[f.e1.ID][0].Raw != "Con đường" {
		t.Errorf("unexpected values for e1: %+v", all[f.e1.ID])
	}
	if len(all[f.e4.ID]) != 1 {
		t.Errorf("expected 1 value for e4, got %d", len(all[f.e4.ID]))
	}
	if _, ok := all[f.e5.ID]; ok {
		t.Errorf("e5 has no values and should be absent")
	}

	scoped, err := s.ListValuesForEntries(ctx, []string{f.e1.ID, f.e4.ID}, f.lyrics.ID)
	if err != nil {
		t.Fatalf("ListValuesForEntries: %v", err)
	}
	if len(scoped[f.e4.ID]) != 0 {
		t.Errorf("e4 has no lyrics, got %+v", scoped[f.e4.ID])
	}
	if len(scoped[f.e1.ID]) != 1 {
		t.Errorf("expected lyrics for e1, got %+v", scoped[f.e1.ID])
	}

	empty, err := s.ListValuesForEntries(ctx, nil, "")
	if err != nil {
		t.Fatalf("ListValuesForEntries(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty map, got %v", empty)
	}
}

func TestGetBooksByIDs_SkipsMissing(t *testing.T) {
	s := newTestStore(t)
	f := newSearchFixture(t, s)

	books, err := s.GetBooksByIDs(context.Background(), []string{f.hymns.ID, "book-missing", f.sun.ID})
	if err != nil {
		t.Fatalf("GetBooksByIDs: %v", err)
	}
	if len(books) != 2 || books[f.hymns.ID] == nil || books[f.sun.ID] == nil {
		t.Errorf("unexpected result: %v", books)
	}
}
