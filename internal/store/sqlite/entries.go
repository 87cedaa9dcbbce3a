package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/id"
	"github.com/presenterapp/presenter/internal/store"
)

// entryColumns must match the scan order in scanEntry.
const entryColumns = `e.id, e.book_id, e.date_added`

// entryOrder is the default listing order: newest first.
const entryOrder = ` ORDER BY e.date_added DESC, e.rowid DESC`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.ContentEntry, error) {
	var (
		e         domain.ContentEntry
		dateAdded string
	)

	if err := scanner.Scan(&e.ID, &e.BookID, &dateAdded); err != nil {
		return nil, err
	}

	var err error
	if e.DateAdded, err = parseTime(dateAdded); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.ContentEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.ContentEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveContentEntry creates the entry if it does not exist yet, upserts each
// value and, when tagIDs is non-nil, replaces the entry's tags, all in one
// transaction. An existing entry keeps its book and DateAdded. Values without
// an ID are assigned one.
func (s *Store) SaveContentEntry(ctx context.Context, entry *domain.ContentEntry, values []*domain.AttributeValue, tagIDs []string) error {
	if entry.ID == "" || entry.BookID == "" {
		return store.ErrInvalidInput.WithMessage("entry id and book id are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content_entries (id, book_id, date_added)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		entry.ID,
		entry.BookID,
		formatTime(entry.DateAdded),
	)
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput.WithMessage("book does not exist").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert content entry: %w", err)
	}

	for _, v := range values {
		v.ContentEntryID = entry.ID
		if err := upsertValue(ctx, tx, v); err != nil {
			return err
		}
	}

	if tagIDs != nil {
		if err := replaceLinksTx(ctx, tx, "content_entry_tags", "content_entry_id", entry.ID, tagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("content entry saved", "entry_id", entry.ID, "values", len(values))
	return nil
}

// GetContentEntry retrieves an entry by ID.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) GetContentEntry(ctx context.Context, entryID string) (*domain.ContentEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM content_entries e WHERE e.id = ?`, entryID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListContentEntries returns a book's entries, newest first.
func (s *Store) ListContentEntries(ctx context.Context, bookID string) ([]*domain.ContentEntry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM content_entries e WHERE e.book_id = ?`+entryOrder, bookID)
}

// DeleteContentEntry removes an entry with its values and tag links.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) DeleteContentEntry(ctx context.Context, entryID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attribute_values WHERE content_entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("delete attribute values: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM content_entry_tags WHERE content_entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("delete content_entry_tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM content_entries WHERE id = ?`, entryID)
	if err != nil {
		return fmt.Errorf("delete content entry: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("content entry deleted", "entry_id", entryID)
	return nil
}

// upsertValue stores v, updating the existing row for the same
// (entry, definition) pair if there is one. v.ID is set to the stored row's ID.
func upsertValue(ctx context.Context, q execer, v *domain.AttributeValue) error {
	if v.ContentEntryID == "" || v.AttributeDefinitionID == "" {
		return store.ErrInvalidInput.WithMessage("entry id and attribute definition id are required")
	}

	if v.ID == "" {
		generated, err := id.Generate(id.Value)
		if err != nil {
			return fmt.Errorf("generate value id: %w", err)
		}
		v.ID = generated
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO attribute_values (id, content_entry_id, attribute_definition_id, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (content_entry_id, attribute_definition_id)
		DO UPDATE SET value = excluded.value
		RETURNING id`,
		v.ID,
		v.ContentEntryID,
		v.AttributeDefinitionID,
		v.Raw,
	).Scan(&v.ID)
	if isForeignKeyViolation(err) {
		return store.ErrInvalidInput.WithMessage("entry or attribute definition does not exist").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("upsert attribute value: %w", err)
	}
	return nil
}
