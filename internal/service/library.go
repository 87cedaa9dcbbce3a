// Package service orchestrates library operations on top of the store:
// input validation, ID generation, error translation and logging.
package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/id"
	"github.com/presenterapp/presenter/internal/store"
	"github.com/presenterapp/presenter/internal/summary"
	"github.com/presenterapp/presenter/internal/validation"
)

// LibraryService manages book types, books, attributes, tags and entries.
type LibraryService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewLibraryService creates a new library service.
func NewLibraryService(store store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// BookTypeRequest creates or renames a book type.
type BookTypeRequest struct {
	Name string `json:"name" validate:"notblank,max=200"`
}

// BookRequest creates or updates a book.
type BookRequest struct {
	Name       string `json:"name" validate:"notblank,max=200"`
	BookTypeID string `json:"book_type_id" validate:"required"`
}

// AttributeRequest defines an attribute.
type AttributeRequest struct {
	Name string           `json:"name" validate:"notblank,max=200"`
	Type domain.FieldType `json:"type" validate:"fieldtype"`
}

// TagRequest creates or renames a tag.
type TagRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// EntryRequest saves a content entry and its values.
type EntryRequest struct {
	// ID selects an existing entry to update; empty creates one.
	ID     string `json:"id"`
	BookID string `json:"book_id" validate:"required"`
	// DateAdded applies to new entries; zero means now.
	DateAdded time.Time `json:"date_added"`
	// Values maps attribute definition IDs to values. Definitions not
	// listed keep their stored value.
	Values map[string]domain.Value `json:"-"`
	// TagIDs replaces the entry's tags; nil leaves them unchanged.
	TagIDs []string `json:"tag_ids"`
}

// --- Book types ---

// CreateBookType creates a book type.
func (s *LibraryService) CreateBookType(ctx context.Context, req BookTypeRequest) (*domain.BookType, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookTypeID, err := id.Generate(id.BookType)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate ID")
	}

	now := s.now().UTC()
	bt := &domain.BookType{
		ID:        bookTypeID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBookType(ctx, bt); err != nil {
		return nil, translate(err, "book type")
	}

	s.logger.Info("book type created", "book_type_id", bt.ID, "name", bt.Name)
	return bt, nil
}

// RenameBookType renames a book type.
func (s *LibraryService) RenameBookType(ctx context.Context, bookTypeID string, req BookTypeRequest) (*domain.BookType, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bt, err := s.store.GetBookType(ctx, bookTypeID)
	if err != nil {
		return nil, translate(err, "book type")
	}
	bt.Name = strings.TrimSpace(req.Name)
	bt.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBookType(ctx, bt); err != nil {
		return nil, translate(err, "book type")
	}
	return bt, nil
}

// GetBookType returns a book type.
func (s *LibraryService) GetBookType(ctx context.Context, bookTypeID string) (*domain.BookType, error) {
	bt, err := s.store.GetBookType(ctx, bookTypeID)
	return bt, translate(err, "book type")
}

// ListBookTypes returns every book type by name.
func (s *LibraryService) ListBookTypes(ctx context.Context) ([]*domain.BookType, error) {
	bts, err := s.store.ListBookTypes(ctx)
	return bts, translate(err, "book types")
}

// DeleteBookType deletes a book type with its books, their entries, and
// every attribute defined on either.
func (s *LibraryService) DeleteBookType(ctx context.Context, bookTypeID string) error {
	if err := s.store.DeleteBookType(ctx, bookTypeID); err != nil {
		return translate(err, "book type")
	}
	s.logger.Info("book type deleted", "book_type_id", bookTypeID)
	return nil
}

// --- Books ---

// CreateBook creates a book of an existing type.
func (s *LibraryService) CreateBook(ctx context.Context, req BookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireBookType(ctx, req.BookTypeID); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.Book)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate ID")
	}

	now := s.now().UTC()
	b := &domain.Book{
		ID:         bookID,
		Name:       strings.TrimSpace(req.Name),
		BookTypeID: req.BookTypeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, translate(err, "book")
	}

	s.logger.Info("book created", "book_id", b.ID, "book_type_id", b.BookTypeID, "name", b.Name)
	return b, nil
}

// UpdateBook renames a book or moves it to another type.
func (s *LibraryService) UpdateBook(ctx context.Context, bookID string, req BookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book")
	}
	if req.BookTypeID != b.BookTypeID {
		if err := s.requireBookType(ctx, req.BookTypeID); err != nil {
			return nil, err
		}
	}

	b.Name = strings.TrimSpace(req.Name)
	b.BookTypeID = req.BookTypeID
	b.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, translate(err, "book")
	}
	return b, nil
}

// GetBook returns a book.
func (s *LibraryService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	b, err := s.store.GetBook(ctx, bookID)
	return b, translate(err, "book")
}

// ListBooks returns every book, or the books of one type when bookTypeID is
// set.
func (s *LibraryService) ListBooks(ctx context.Context, bookTypeID string) ([]*domain.Book, error) {
	var (
		books []*domain.Book
		err   error
	)
	if bookTypeID == "" {
		books, err = s.store.ListBooks(ctx)
	} else {
		books, err = s.store.ListBooksByType(ctx, bookTypeID)
	}
	return books, translate(err, "books")
}

// DeleteBook deletes a book with its entries and private attributes.
func (s *LibraryService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return translate(err, "book")
	}
	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

func (s *LibraryService) requireBookType(ctx context.Context, bookTypeID string) error {
	_, err := s.store.GetBookType(ctx, bookTypeID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return domainerrors.ValidationWithDetails("book_type_id does not exist",
			map[string]string{"book_type_id": "does not exist"})
	}
	return translate(err, "book type")
}

// --- Attributes ---

// AddCommonAttribute defines an attribute shared by every book of a type.
// The name must not clash with the type's common attributes nor with a
// private attribute of any of its books, since the new definition joins
// every one of those books' effective sets.
func (s *LibraryService) AddCommonAttribute(ctx context.Context, bookTypeID string, req AttributeRequest) (*domain.AttributeDefinition, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBookType(ctx, bookTypeID); err != nil {
		return nil, translate(err, "book type")
	}

	existing, err := s.store.ListBookTypeAttributes(ctx, bookTypeID)
	if err != nil {
		return nil, translate(err, "attributes")
	}
	books, err := s.store.ListBooksByType(ctx, bookTypeID)
	if err != nil {
		return nil, translate(err, "books")
	}
	for _, b := range books {
		private, err := s.store.ListBookAttributes(ctx, b.ID)
		if err != nil {
			return nil, translate(err, "attributes")
		}
		existing = append(existing, private...)
	}
	return s.createAttribute(ctx, domain.CommonScope(bookTypeID), req, existing)
}

// AddPrivateAttribute defines an attribute on a single book.
func (s *LibraryService) AddPrivateAttribute(ctx context.Context, bookID string, req AttributeRequest) (*domain.AttributeDefinition, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book")
	}

	existing, err := s.effectiveFor(ctx, book)
	if err != nil {
		return nil, err
	}
	return s.createAttribute(ctx, domain.PrivateScope(bookID), req, existing)
}

func (s *LibraryService) createAttribute(ctx context.Context, scope domain.Scope, req AttributeRequest, existing []*domain.AttributeDefinition) (*domain.AttributeDefinition, error) {
	name := strings.TrimSpace(req.Name)
	if domain.HasAttributeNamed(existing, name) {
		return nil, domainerrors.Conflict("attribute \"" + name + "\" already exists")
	}

	defID, err := id.Generate(id.Attribute)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate ID")
	}

	def := &domain.AttributeDefinition{
		ID:        defID,
		Name:      name,
		Type:      req.Type,
		Scope:     scope,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateAttributeDefinition(ctx, def); err != nil {
		return nil, translate(err, "attribute")
	}

	s.logger.Info("attribute created",
		"attribute_id", def.ID,
		"name", def.Name,
		"type", def.Type,
		"scope", def.Scope.String(),
	)
	return def, nil
}

// DeleteAttribute deletes a definition and every value stored for it.
func (s *LibraryService) DeleteAttribute(ctx context.Context, definitionID string) error {
	if err := s.store.DeleteAttributeDefinition(ctx, definitionID); err != nil {
		return translate(err, "attribute")
	}
	s.logger.Info("attribute deleted", "attribute_id", definitionID)
	return nil
}

// ListAttributes returns every attribute definition in creation order.
func (s *LibraryService) ListAttributes(ctx context.Context) ([]*domain.AttributeDefinition, error) {
	defs, err := s.store.ListAllAttributes(ctx)
	return defs, translate(err, "attributes")
}

// EffectiveAttributes returns a book's attributes: its type's common ones,
// then its private ones, one per name.
func (s *LibraryService) EffectiveAttributes(ctx context.Context, bookID string) ([]*domain.AttributeDefinition, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book")
	}
	return s.effectiveFor(ctx, book)
}

func (s *LibraryService) effectiveFor(ctx context.Context, book *domain.Book) ([]*domain.AttributeDefinition, error) {
	common, err := s.store.ListBookTypeAttributes(ctx, book.BookTypeID)
	if err != nil {
		return nil, translate(err, "attributes")
	}
	private, err := s.store.ListBookAttributes(ctx, book.ID)
	if err != nil {
		return nil, translate(err, "attributes")
	}
	return domain.EffectiveAttributes(common, private), nil
}

// --- Tags ---

// CreateTag creates a tag. Names are unique regardless of case.
func (s *LibraryService) CreateTag(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagID, err := id.Generate(id.Tag)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate ID")
	}

	t := &domain.Tag{ID: tagID, Name: strings.TrimSpace(req.Name), CreatedAt: s.now().UTC()}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, translate(err, "tag \""+t.Name+"\"")
	}
	return t, nil
}

// RenameTag renames a tag.
func (s *LibraryService) RenameTag(ctx context.Context, tagID string, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, translate(err, "tag")
	}
	t.Name = strings.TrimSpace(req.Name)
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, translate(err, "tag \""+t.Name+"\"")
	}
	return t, nil
}

// FindOrCreateTag returns the tag with the given name, creating it if needed.
func (s *LibraryService) FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	t, err := s.store.GetTagByName(ctx, strings.TrimSpace(name))
	if err == nil {
		return t, nil
	}
	if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, translate(err, "tag")
	}
	return s.CreateTag(ctx, TagRequest{Name: name})
}

// ListTags returns every tag by name.
func (s *LibraryService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	return tags, translate(err, "tags")
}

// DeleteTag deletes a tag and unlinks it everywhere.
func (s *LibraryService) DeleteTag(ctx context.Context, tagID string) error {
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return translate(err, "tag")
	}
	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}

// SetBookTags replaces the tags of a book.
func (s *LibraryService) SetBookTags(ctx context.Context, bookID string, tagIDs []string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return translate(err, "book")
	}
	return translate(s.store.SetBookTags(ctx, bookID, tagIDs), "book tags")
}

// SetEntryTags replaces the tags of an entry.
func (s *LibraryService) SetEntryTags(ctx context.Context, entryID string, tagIDs []string) error {
	if _, err := s.store.GetContentEntry(ctx, entryID); err != nil {
		return translate(err, "entry")
	}
	return translate(s.store.SetEntryTags(ctx, entryID, tagIDs), "entry tags")
}

// TagsForEntry returns the tags of an entry in the order they were linked.
func (s *LibraryService) TagsForEntry(ctx context.Context, entryID string) ([]*domain.Tag, error) {
	tagIDs, err := s.store.GetEntryTagIDs(ctx, entryID)
	if err != nil {
		return nil, translate(err, "entry tags")
	}
	return s.tagsByID(ctx, tagIDs)
}

// TagsForBook returns the tags of a book in the order they were linked.
func (s *LibraryService) TagsForBook(ctx context.Context, bookID string) ([]*domain.Tag, error) {
	tagIDs, err := s.store.GetBookTagIDs(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book tags")
	}
	return s.tagsByID(ctx, tagIDs)
}

func (s *LibraryService) tagsByID(ctx context.Context, tagIDs []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		t, err := s.store.GetTag(ctx, tagID)
		if domainerrors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, translate(err, "tag")
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// --- Entries ---

// SaveEntry creates or updates an entry with its values in one write.
// Every value must belong to the book's effective attributes and match the
// attribute's field type; nothing is written otherwise.
func (s *LibraryService) SaveEntry(ctx context.Context, req EntryRequest) (*domain.ContentEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, req.BookID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Validationf("book %s does not exist", req.BookID)
	}
	if err != nil {
		return nil, translate(err, "book")
	}

	defs, err := s.effectiveFor(ctx, book)
	if err != nil {
		return nil, err
	}
	values, err := encodeValues(book, defs, req.Values)
	if err != nil {
		return nil, err
	}

	entry, err := s.entryFor(ctx, req, book)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveContentEntry(ctx, entry, values, req.TagIDs); err != nil {
		return nil, translate(err, "entry")
	}

	s.logger.Info("entry saved",
		"entry_id", entry.ID,
		"book_id", entry.BookID,
		"values", len(values),
	)
	return entry, nil
}

func (s *LibraryService) entryFor(ctx context.Context, req EntryRequest, book *domain.Book) (*domain.ContentEntry, error) {
	if req.ID != "" {
		entry, err := s.store.GetContentEntry(ctx, req.ID)
		if err != nil {
			return nil, translate(err, "entry")
		}
		if entry.BookID != book.ID {
			return nil, domainerrors.Validationf("entry %s belongs to another book", req.ID)
		}
		return entry, nil
	}

	entryID, err := id.Generate(id.Entry)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate ID")
	}
	added := req.DateAdded
	if added.IsZero() {
		added = s.now()
	}
	return &domain.ContentEntry{ID: entryID, BookID: book.ID, DateAdded: added.UTC()}, nil
}

// encodeValues checks values against defs and encodes them in attribute
// order.
func encodeValues(book *domain.Book, defs []*domain.AttributeDefinition, values map[string]domain.Value) ([]*domain.AttributeValue, error) {
	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.ID] = true
	}

	var unknown []string
	for defID := range values {
		if !known[defID] {
			unknown = append(unknown, defID)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, domainerrors.Validationf("attribute %s is not defined for book %q", unknown[0], book.Name)
	}

	out := make([]*domain.AttributeValue, 0, len(values))
	for _, d := range defs {
		v, ok := values[d.ID]
		if !ok {
			continue
		}
		if !v.CompatibleWith(d.Type) {
			return nil, domainerrors.ValidationWithDetails(
				d.Name+" does not accept this kind of value",
				map[string]string{d.Name: "expects " + string(d.Type)},
			)
		}
		raw, err := domain.EncodeValue(v)
		if err != nil {
			return nil, domainerrors.Validationf("%s: %v", d.Name, err)
		}
		out = append(out, &domain.AttributeValue{AttributeDefinitionID: d.ID, Raw: raw})
	}
	return out, nil
}

// GetEntry returns an entry.
func (s *LibraryService) GetEntry(ctx context.Context, entryID string) (*domain.ContentEntry, error) {
	e, err := s.store.GetContentEntry(ctx, entryID)
	return e, translate(err, "entry")
}

// ListEntries returns the entries of a book, newest first.
func (s *LibraryService) ListEntries(ctx context.Context, bookID string) ([]*domain.ContentEntry, error) {
	entries, err := s.store.ListContentEntries(ctx, bookID)
	return entries, translate(err, "entries")
}

// DeleteEntry deletes an entry with its values and tag links.
func (s *LibraryService) DeleteEntry(ctx context.Context, entryID string) error {
	if err := s.store.DeleteContentEntry(ctx, entryID); err != nil {
		return translate(err, "entry")
	}
	s.logger.Info("entry deleted", "entry_id", entryID)
	return nil
}

// DetailField pairs an attribute with the entry's value for it.
type DetailField struct {
	Definition *domain.AttributeDefinition `json:"definition"`
	// Raw is the stored form; empty when the entry has no value.
	Raw   string       `json:"raw"`
	Value domain.Value `json:"-"`
	// Display is the text shown for the value.
	Display   string `json:"display"`
	Missing   bool   `json:"missing,omitempty"`
	Malformed bool   `json:"malformed,omitempty"`
}

// EntryDetail is an entry with every effective attribute and its tags.
type EntryDetail struct {
	Entry  *domain.ContentEntry `json:"entry"`
	Book   *domain.Book         `json:"book"`
	Fields []DetailField        `json:"fields"`
	Tags   []*domain.Tag        `json:"tags"`
}

// EntryDetail loads an entry for display. Values that cannot be decoded are
// reported as malformed rather than failing the call.
func (s *LibraryService) EntryDetail(ctx context.Context, entryID string) (*EntryDetail, error) {
	entry, err := s.store.GetContentEntry(ctx, entryID)
	if err != nil {
		return nil, translate(err, "entry")
	}
	book, err := s.store.GetBook(ctx, entry.BookID)
	if err != nil {
		return nil, translate(err, "book")
	}
	defs, err := s.effectiveFor(ctx, book)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ListAttributeValues(ctx, entryID)
	if err != nil {
		return nil, translate(err, "values")
	}
	tags, err := s.TagsForEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	byDef := make(map[string]*domain.AttributeValue, len(stored))
	for _, v := range stored {
		byDef[v.AttributeDefinitionID] = v
	}

	fields := make([]DetailField, 0, len(defs))
	for _, d := range defs {
		f := DetailField{Definition: d}
		v, ok := byDef[d.ID]
		if !ok || v.IsBlank() {
			f.Missing = true
			fields = append(fields, f)
			continue
		}

		f.Raw = v.Raw
		decoded, err := domain.DecodeValue(d.Type, v.Raw)
		if err != nil {
			s.logger.Debug("stored value does not decode",
				"entry_id", entryID,
				"attribute_id", d.ID,
				"error", err,
			)
			f.Malformed = true
			f.Display = summary.FormatErrorText
		} else {
			f.Value = decoded
			f.Display = decoded.String()
		}
		fields = append(fields, f)
	}

	return &EntryDetail{Entry: entry, Book: book, Fields: fields, Tags: tags}, nil
}
