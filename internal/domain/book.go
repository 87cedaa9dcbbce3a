package domain

import "time"

// BookType is a user-defined category of books.
// Attribute definitions scoped to a book type are shared by every book of that type.
type BookType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (bt *BookType) Touch() {
	bt.UpdatedAt = time.Now()
}

// Book groups content entries and may define private attributes of its own.
type Book struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BookTypeID string    `json:"book_type_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// ContentEntry is one record within a book. Its data lives in AttributeValues.
type ContentEntry struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	DateAdded time.Time `json:"date_added"`
}

// AttributeValue holds the stored string for one (entry, definition) pair.
// Raw is decoded according to the definition's FieldType; see DecodeValue.
type AttributeValue struct {
	ID                    string `json:"id"`
	ContentEntryID        string `json:"content_entry_id"`
	AttributeDefinitionID string `json:"attribute_definition_id"`
	Raw                   string `json:"value"`
}

// IsBlank reports whether the value is missing or whitespace only.
func (v *AttributeValue) IsBlank() bool {
	return v == nil || isBlank(v.Raw)
}
