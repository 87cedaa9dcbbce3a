package domain

import "time"

// Tag is a free-form label attachable to books and content entries.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BookTag links a book to a tag.
type BookTag struct {
	BookID string `json:"book_id"`
	TagID  string `json:"tag_id"`
}

// ContentEntryTag links a content entry to a tag.
type ContentEntryTag struct {
	ContentEntryID string `json:"content_entry_id"`
	TagID          string `json:"tag_id"`
}
