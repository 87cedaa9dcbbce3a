// Package store defines the persistence interface for the content library.
package store

import (
	"context"

	"github.com/presenterapp/presenter/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Deletes cascade fully: removing an entry removes its values and tag links,
// removing a book removes its entries, tag links and private attributes, and
// removing a book type removes its books and common attributes.
type Store interface {
	// Lifecycle
	Close() error

	// Book types
	CreateBookType(ctx context.Context, bt *domain.BookType) error
	UpdateBookType(ctx context.Context, bt *domain.BookType) error
	GetBookType(ctx context.Context, id string) (*domain.BookType, error)
	ListBookTypes(ctx context.Context) ([]*domain.BookType, error)
	DeleteBookType(ctx context.Context, id string) error

	// Books
	CreateBook(ctx context.Context, b *domain.Book) error
	UpdateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) (map[string]*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByType(ctx context.Context, bookTypeID string) ([]*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	UpdateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	SetBookTags(ctx context.Context, bookID string, tagIDs []string) error
	GetBookTagIDs(ctx context.Context, bookID string) ([]string, error)
	SetEntryTags(ctx context.Context, entryID string, tagIDs []string) error
	GetEntryTagIDs(ctx context.Context, entryID string) ([]string, error)

	// Attribute definitions
	CreateAttributeDefinition(ctx context.Context, def *domain.AttributeDefinition) error
	GetAttributeDefinition(ctx context.Context, id string) (*domain.AttributeDefinition, error)
	ListBookTypeAttributes(ctx context.Context, bookTypeID string) ([]*domain.AttributeDefinition, error)
	ListBookAttributes(ctx context.Context, bookID string) ([]*domain.AttributeDefinition, error)
	ListAllAttributes(ctx context.Context) ([]*domain.AttributeDefinition, error)
	DeleteAttributeDefinition(ctx context.Context, id string) error

	// Content entries
	SaveContentEntry(ctx context.Context, entry *domain.ContentEntry, values []*domain.AttributeValue, tagIDs []string) error
	GetContentEntry(ctx context.Context, id string) (*domain.ContentEntry, error)
	ListContentEntries(ctx context.Context, bookID string) ([]*domain.ContentEntry, error)
	DeleteContentEntry(ctx context.Context, id string) error

	// Attribute values
	SaveAttributeValue(ctx context.Context, v *domain.AttributeValue) error
	GetAttributeValue(ctx context.Context, entryID, definitionID string) (*domain.AttributeValue, error)
	ListAttributeValues(ctx context.Context, entryID string) ([]*domain.AttributeValue, error)

	// Search
	FindContentEntries(ctx context.Context, q EntryQuery) ([]*domain.ContentEntry, error)
	ListValuesForEntries(ctx context.Context, entryIDs []string, definitionID string) (map[string][]*domain.AttributeValue, error)
}

// EntryQuery holds the relational filters of a content search.
// Empty fields impose no constraint.
type EntryQuery struct {
	BookTypeID string
	BookID     string
	// AttributeDefinitionID restricts results to entries holding a value for
	// the definition, and scopes Contains to that definition's values.
	AttributeDefinitionID string
	// TagIDs matches entries linked to any of the tags.
	TagIDs []string
	// Contains is a case-insensitive substring matched against raw values
	// with the storage engine's LIKE semantics.
	Contains string
}
