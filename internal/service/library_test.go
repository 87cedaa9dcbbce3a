package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/export"
	"github.com/presenterapp/presenter/internal/search"
	"github.com/presenterapp/presenter/internal/store/sqlite"
	"github.com/presenterapp/presenter/internal/summary"
)

type testServices struct {
	store   *sqlite.Store
	library *LibraryService
	search  *SearchService
	export  *ExportService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	return setupServicesWithSource(t, nil)
}

// setupServicesWithSource lets a test wrap the store the search engine reads.
func setupServicesWithSource(t *testing.T, wrap func(search.Source) search.Source) *testServices {
	t.Helper()
	logger := discardLogger()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "presenter.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var src search.Source = s
	if wrap != nil {
		src = wrap(s)
	}

	library := NewLibraryService(s, logger)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	library.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &testServices{
		store:   s,
		library: library,
		search: NewSearchService(s,
			search.NewEngine(src, logger),
			summary.NewAggregator(s, logger),
			search.NewFilterState(),
			logger,
		),
		export: NewExportService(library, export.YAMLWriter{}, logger),
	}
}

// hymnal builds the "Hymnal" type with one book and its two attributes.
type hymnal struct {
	bookType      *domain.BookType
	book          *domain.Book
	lyrics, verse *domain.AttributeDefinition
}

func setupHymnal(t *testing.T, svc *testServices) *hymnal {
	t.Helper()
	ctx := context.Background()

	bt, err := svc.library.CreateBookType(ctx, BookTypeRequest{Name: "Hymnal"})
	require.NoError(t, err)
	book, err := svc.library.CreateBook(ctx, BookRequest{Name: "Hymn Collection", BookTypeID: bt.ID})
	require.NoError(t, err)
	lyrics, err := svc.library.AddCommonAttribute(ctx, bt.ID, AttributeRequest{Name: "Lyrics", Type: domain.FieldText})
	require.NoError(t, err)
	verse, err := svc.library.AddCommonAttribute(ctx, bt.ID, AttributeRequest{Name: "Verse", Type: domain.FieldFlexibleContent})
	require.NoError(t, err)

	return &hymnal{bookType: bt, book: book, lyrics: lyrics, verse: verse}
}

func TestCreateBookType_Validation(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	_, err := svc.library.CreateBookType(ctx, BookTypeRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "name is required", domainerrors.UserMessage(err))

	types, err := svc.library.ListBookTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types, "nothing is written when validation fails")
}

func TestCreateBook_RequiresExistingType(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	_, err := svc.library.CreateBook(ctx, BookRequest{Name: "Orphan", BookTypeID: "bt-missing"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.library.CreateBook(ctx, BookRequest{Name: "No type"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "book_type_id")

	books, err := svc.library.ListBooks(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestAttributes_EffectiveAndConflicts(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	key, err := svc.library.AddPrivateAttribute(ctx, h.book.ID, AttributeRequest{Name: "Key", Type: domain.FieldText})
	require.NoError(t, err)

	_, err = svc.library.AddPrivateAttribute(ctx, h.book.ID, AttributeRequest{Name: "lyrics", Type: domain.FieldTextArea})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	_, err = svc.library.AddCommonAttribute(ctx, h.bookType.ID, AttributeRequest{Name: "Tempo", Type: "colour"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	defs, err := svc.library.EffectiveAttributes(ctx, h.book.ID)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, []string{h.lyrics.ID, h.verse.ID, key.ID}, []string{defs[0].ID, defs[1].ID, defs[2].ID})

	_, err = svc.library.EffectiveAttributes(ctx, "book-missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestAddCommonAttribute_ClashesWithPrivateOfAnyBook(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	second, err := svc.library.CreateBook(ctx, BookRequest{Name: "Psalms", BookTypeID: h.bookType.ID})
	require.NoError(t, err)
	key, err := svc.library.AddPrivateAttribute(ctx, second.ID, AttributeRequest{Name: "Key", Type: domain.FieldText})
	require.NoError(t, err)
	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: second.ID,
		Values: map[string]domain.Value{key.ID: domain.TextValue("G major")},
	})
	require.NoError(t, err)

	for _, name := range []string{"Key", "key", " KEY "} {
		_, err = svc.library.AddCommonAttribute(ctx, h.bookType.ID, AttributeRequest{Name: name, Type: domain.FieldText})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict), "%q: got %v", name, err)
	}

	common, err := svc.store.ListBookTypeAttributes(ctx, h.bookType.ID)
	require.NoError(t, err)
	assert.Len(t, common, 2, "rejected definitions are not stored")

	detail, err := svc.library.EntryDetail(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, detail.Fields, 3)
	assert.Equal(t, key.ID, detail.Fields[2].Definition.ID)
	assert.Equal(t, "G major", detail.Fields[2].Display)

	// A name used only by another type's books is free.
	other, err := svc.library.CreateBookType(ctx, BookTypeRequest{Name: "Sermons"})
	require.NoError(t, err)
	_, err = svc.library.AddCommonAttribute(ctx, other.ID, AttributeRequest{Name: "Key", Type: domain.FieldText})
	assert.NoError(t, err)
}

func TestSaveEntry_ValidatesValues(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	other, err := svc.library.CreateBookType(ctx, BookTypeRequest{Name: "Sermons"})
	require.NoError(t, err)
	topic, err := svc.library.AddCommonAttribute(ctx, other.ID, AttributeRequest{Name: "Topic", Type: domain.FieldText})
	require.NoError(t, err)

	tests := []struct {
		name   string
		values map[string]domain.Value
	}{
		{"attribute of another type", map[string]domain.Value{topic.ID: domain.TextValue("grace")}},
		{"number into flexible", map[string]domain.Value{h.verse.ID: domain.NumberValue(3)}},
		{"blocks into text", map[string]domain.Value{h.lyrics.ID: domain.BlocksValue(nil)}},
		{"unset value", map[string]domain.Value{h.lyrics.ID: {}}},
		{"invalid block kind", map[string]domain.Value{h.verse.ID: domain.BlocksValue([]domain.Block{{Kind: "Video"}})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.library.SaveEntry(ctx, EntryRequest{BookID: h.book.ID, Values: tt.values})
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}

	_, err = svc.library.SaveEntry(ctx, EntryRequest{BookID: "book-missing"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	entries, err := svc.library.ListEntries(ctx, h.book.ID)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected saves write nothing")
}

func TestSaveEntry_UnknownTagWritesNothing(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	_, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("Amazing grace")},
		TagIDs: []string{"tag-missing"},
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

	entries, err := svc.library.ListEntries(ctx, h.book.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	advent, err := svc.library.CreateTag(ctx, TagRequest{Name: "advent"})
	require.NoError(t, err)
	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("Amazing grace")},
		TagIDs: []string{advent.ID},
	})
	require.NoError(t, err)

	_, err = svc.library.SaveEntry(ctx, EntryRequest{
		ID:     entry.ID,
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("How sweet the sound")},
		TagIDs: []string{"tag-missing"},
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

	detail, err := svc.library.EntryDetail(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amazing grace", detail.Fields[0].Value.Text(), "failed update keeps the old value")
	tags, err := svc.library.TagsForEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, advent.ID, tags[0].ID)
}

func TestSaveEntry_UpdateKeepsSingleValue(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("Amazing grace")},
	})
	require.NoError(t, err)

	first, err := svc.store.GetAttributeValue(ctx, entry.ID, h.lyrics.ID)
	require.NoError(t, err)

	again, err := svc.library.SaveEntry(ctx, EntryRequest{
		ID:     entry.ID,
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("How sweet the sound")},
	})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)
	assert.True(t, entry.DateAdded.Equal(again.DateAdded))

	values, err := svc.store.ListAttributeValues(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, first.ID, values[0].ID)
	assert.Equal(t, "How sweet the sound", values[0].Raw)
}

func TestSaveEntry_EntryOfAnotherBook(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	otherBook, err := svc.library.CreateBook(ctx, BookRequest{Name: "Carols", BookTypeID: h.bookType.ID})
	require.NoError(t, err)
	entry, err := svc.library.SaveEntry(ctx, EntryRequest{BookID: h.book.ID})
	require.NoError(t, err)

	_, err = svc.library.SaveEntry(ctx, EntryRequest{ID: entry.ID, BookID: otherBook.ID})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestEntryDetail(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	tag, err := svc.library.FindOrCreateTag(ctx, "Easter")
	require.NoError(t, err)
	same, err := svc.library.FindOrCreateTag(ctx, "easter")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, same.ID)

	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("Christ the Lord is risen")},
		TagIDs: []string{tag.ID},
	})
	require.NoError(t, err)

	detail, err := svc.library.EntryDetail(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, h.book.ID, detail.Book.ID)
	require.Len(t, detail.Fields, 2)
	assert.Equal(t, "Christ the Lord is risen", detail.Fields[0].Display)
	assert.True(t, detail.Fields[1].Missing)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Easter", detail.Tags[0].Name)

	// Corrupt the stored flexible value behind the service's back.
	require.NoError(t, svc.store.SaveAttributeValue(ctx, &domain.AttributeValue{
		ContentEntryID:        entry.ID,
		AttributeDefinitionID: h.verse.ID,
		Raw:                   `[{"type":"NamedText",`,
	}))

	detail, err = svc.library.EntryDetail(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, detail.Fields[1].Malformed)
	assert.Equal(t, summary.FormatErrorText, detail.Fields[1].Display)

	_, err = svc.library.EntryDetail(ctx, "entry-missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDeleteBookType_Cascades(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{h.lyrics.ID: domain.TextValue("Amazing grace")},
	})
	require.NoError(t, err)

	require.NoError(t, svc.library.DeleteBookType(ctx, h.bookType.ID))

	_, err = svc.library.GetBook(ctx, h.book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	_, err = svc.library.GetEntry(ctx, entry.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	defs, err := svc.library.ListAttributes(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)

	values, err := svc.store.ListAttributeValues(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, values)

	err = svc.library.DeleteBookType(ctx, h.bookType.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestTags(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	a, err := svc.library.CreateTag(ctx, TagRequest{Name: "Advent"})
	require.NoError(t, err)
	b, err := svc.library.CreateTag(ctx, TagRequest{Name: "Lent"})
	require.NoError(t, err)

	_, err = svc.library.CreateTag(ctx, TagRequest{Name: "advent"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	require.NoError(t, svc.library.SetBookTags(ctx, h.book.ID, []string{b.ID, a.ID}))
	tags, err := svc.library.TagsForBook(ctx, h.book.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Lent", tags[0].Name)

	renamed, err := svc.library.RenameTag(ctx, b.ID, TagRequest{Name: "Lenten"})
	require.NoError(t, err)
	assert.Equal(t, "Lenten", renamed.Name)

	require.NoError(t, svc.library.DeleteTag(ctx, a.ID))
	tags, err = svc.library.TagsForBook(ctx, h.book.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	err = svc.library.SetEntryTags(ctx, "entry-missing", []string{b.ID})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
