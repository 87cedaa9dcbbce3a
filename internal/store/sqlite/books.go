package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, name, book_type_id, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b         domain.Book
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&b.ID, &b.Name, &b.BookTypeID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book.
// Returns store.ErrInvalidInput if the book type does not exist.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, name, book_type_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID,
		b.Name,
		b.BookTypeID,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	switch {
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrInvalidInput.WithMessage("unknown book type").WithCause(err)
	}
	return err
}

// UpdateBook updates a book's name and type.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET name = ?, book_type_id = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.BookTypeID, formatTime(b.UpdatedAt), b.ID)
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput.WithMessage("unknown book type").WithCause(err)
	}
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs returns the books that exist among ids, keyed by ID.
// Missing IDs are simply absent from the map.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) (map[string]*domain.Book, error) {
	ids = dedupe(ids)
	out := make(map[string]*domain.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

// ListBooks returns all books ordered by name.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY name COLLATE NOCASE ASC, rowid ASC`)
}

// ListBooksByType returns the books of one type ordered by name.
func (s *Store) ListBooksByType(ctx context.Context, bookTypeID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE book_type_id = ?
		ORDER BY name COLLATE NOCASE ASC, rowid ASC`, bookTypeID)
}

// DeleteBook removes a book together with its entries (and their values and
// tag links), its tag links and its private attribute definitions.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteBookTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("book deleted", "book_id", id)
	return nil
}

// deleteBookTx performs the book cascade inside tx.
func deleteBookTx(ctx context.Context, tx *sql.Tx, bookID string) error {
	steps := []struct {
		what  string
		query string
	}{
		{"entry values", `DELETE FROM attribute_values WHERE content_entry_id IN (
			SELECT id FROM content_entries WHERE book_id = ?)`},
		{"entry tags", `DELETE FROM content_entry_tags WHERE content_entry_id IN (
			SELECT id FROM content_entries WHERE book_id = ?)`},
		{"entries", `DELETE FROM content_entries WHERE book_id = ?`},
		{"book tags", `DELETE FROM book_tags WHERE book_id = ?`},
		{"private attribute values", `DELETE FROM attribute_values WHERE attribute_definition_id IN (
			SELECT id FROM attribute_definitions WHERE book_id = ?)`},
		{"private attributes", `DELETE FROM attribute_definitions WHERE book_id = ?`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, bookID); err != nil {
			return fmt.Errorf("delete %s: %w", step.what, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return affectedOrNotFound(res)
}
