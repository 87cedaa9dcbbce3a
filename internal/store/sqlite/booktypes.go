package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// bookTypeColumns must match the scan order in scanBookType.
const bookTypeColumns = `id, name, created_at, updated_at`

func scanBookType(scanner interface{ Scan(dest ...any) error }) (*domain.BookType, error) {
	var (
		bt        domain.BookType
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&bt.ID, &bt.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if bt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if bt.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &bt, nil
}

// CreateBookType inserts a new book type.
func (s *Store) CreateBookType(ctx context.Context, bt *domain.BookType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_types (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		bt.ID,
		bt.Name,
		formatTime(bt.CreatedAt),
		formatTime(bt.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// UpdateBookType renames a book type.
// Returns store.ErrNotFound if the book type does not exist.
func (s *Store) UpdateBookType(ctx context.Context, bt *domain.BookType) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE book_types SET name = ?, updated_at = ? WHERE id = ?`,
		bt.Name, formatTime(bt.UpdatedAt), bt.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// GetBookType retrieves a book type by ID.
// Returns store.ErrNotFound if the book type does not exist.
func (s *Store) GetBookType(ctx context.Context, id string) (*domain.BookType, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookTypeColumns+` FROM book_types WHERE id = ?`, id)

	bt, err := scanBookType(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bt, nil
}

// ListBookTypes returns all book types ordered by name.
func (s *Store) ListBookTypes(ctx context.Context) ([]*domain.BookType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookTypeColumns+` FROM book_types ORDER BY name COLLATE NOCASE ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []*domain.BookType{}
	for rows.Next() {
		bt, err := scanBookType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, bt)
	}
	return types, rows.Err()
}

// DeleteBookType removes a book type together with its books (and everything
// they own) and its common attribute definitions, in one transaction.
// Returns store.ErrNotFound if the book type does not exist.
func (s *Store) DeleteBookType(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	bookIDs, err := queryIDs(ctx, tx, `SELECT id FROM books WHERE book_type_id = ?`, id)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	for _, bookID := range bookIDs {
		if err := deleteBookTx(ctx, tx, bookID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attribute_values WHERE attribute_definition_id IN (
			SELECT id FROM attribute_definitions WHERE book_type_id = ?)`, id); err != nil {
		return fmt.Errorf("delete common attribute values: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attribute_definitions WHERE book_type_id = ?`, id); err != nil {
		return fmt.Errorf("delete common attributes: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM book_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book type: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("book type deleted", "book_type_id", id, "books", len(bookIDs))
	return nil
}

// queryIDs runs a single-column query and collects the results.
func queryIDs(ctx context.Context, q execer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}
