package search

import (
	"context"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
)

// OptionsSource lists what the filter pickers offer.
type OptionsSource interface {
	ListBookTypes(ctx context.Context) ([]*domain.BookType, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListAllAttributes(ctx context.Context) ([]*domain.AttributeDefinition, error)
}

// Selection is the book type and book currently picked in the filters.
type Selection struct {
	BookTypeID string
	BookID     string
}

// FilterOptions are the choices offered for a selection.
type FilterOptions struct {
	BookTypes []*domain.BookType
	// Books are narrowed to the selected book type.
	Books []*domain.Book
	// Attributes are narrowed to the selected book, else to the selected
	// type, and carry each name once.
	Attributes []*domain.AttributeDefinition
}

// LoadFilterOptions computes the picker contents for sel.
func LoadFilterOptions(ctx context.Context, src OptionsSource, sel Selection) (*FilterOptions, error) {
	bookTypes, err := src.ListBookTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list book types: %w", err)
	}
	books, err := src.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defs, err := src.ListAllAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}

	return &FilterOptions{
		BookTypes:  bookTypes,
		Books:      booksOfType(books, sel.BookTypeID),
		Attributes: domain.DedupeByName(attributesFor(defs, books, sel)),
	}, nil
}

func booksOfType(books []*domain.Book, bookTypeID string) []*domain.Book {
	if bookTypeID == "" {
		return books
	}
	var out []*domain.Book
	for _, b := range books {
		if b.BookTypeID == bookTypeID {
			out = append(out, b)
		}
	}
	return out
}

// attributesFor keeps the definitions visible under sel: those of the
// selected book (its type's common ones and its private ones), else those of
// the selected type and its books, else all.
func attributesFor(defs []*domain.AttributeDefinition, books []*domain.Book, sel Selection) []*domain.AttributeDefinition {
	var (
		typeID  string
		bookIDs = map[string]bool{}
	)

	switch {
	case sel.BookID != "":
		var book *domain.Book
		for _, b := range books {
			if b.ID == sel.BookID {
				book = b
				break
			}
		}
		if book == nil {
			return nil
		}
		typeID = book.BookTypeID
		bookIDs[book.ID] = true
	case sel.BookTypeID != "":
		typeID = sel.BookTypeID
		for _, b := range booksOfType(books, typeID) {
			bookIDs[b.ID] = true
		}
	default:
		return defs
	}

	var out []*domain.AttributeDefinition
	for _, d := range defs {
		if bt, ok := d.Scope.BookTypeID(); ok && bt == typeID {
			out = append(out, d)
			continue
		}
		if b, ok := d.Scope.BookID(); ok && bookIDs[b] {
			out = append(out, d)
		}
	}
	return out
}
