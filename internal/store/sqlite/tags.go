package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)

	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a new tag into the database.
// Returns store.ErrAlreadyExists on a duplicate name (case-insensitive).
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES (?, ?, ?)`,
		t.ID,
		t.Name,
		formatTime(t.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// UpdateTag renames a tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, t.Name, t.ID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// GetTag retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, tagID)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByName retrieves a tag by name, ignoring case.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ? COLLATE NOCASE`, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag and every book and entry link to it.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_tags WHERE tag_id = ?`, tagID); err != nil {
		return fmt.Errorf("delete book_tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM content_entry_tags WHERE tag_id = ?`, tagID); err != nil {
		return fmt.Errorf("delete content_entry_tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}

	return tx.Commit()
}

// SetBookTags replaces all tags for a book in a single transaction.
func (s *Store) SetBookTags(ctx context.Context, bookID string, tagIDs []string) error {
	return s.replaceLinks(ctx, "book_tags", "book_id", bookID, tagIDs)
}

// GetBookTagIDs returns the tag IDs associated with a book.
func (s *Store) GetBookTagIDs(ctx context.Context, bookID string) ([]string, error) {
	ids, err := queryIDs(ctx, s.db, `
		SELECT tag_id FROM book_tags WHERE book_id = ? ORDER BY rowid`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query book_tags: %w", err)
	}
	return ids, nil
}

// SetEntryTags replaces all tags for a content entry in a single transaction.
func (s *Store) SetEntryTags(ctx context.Context, entryID string, tagIDs []string) error {
	return s.replaceLinks(ctx, "content_entry_tags", "content_entry_id", entryID, tagIDs)
}

// GetEntryTagIDs returns the tag IDs associated with a content entry.
func (s *Store) GetEntryTagIDs(ctx context.Context, entryID string) ([]string, error) {
	ids, err := queryIDs(ctx, s.db, `
		SELECT tag_id FROM content_entry_tags WHERE content_entry_id = ? ORDER BY rowid`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query content_entry_tags: %w", err)
	}
	return ids, nil
}

func (s *Store) replaceLinks(ctx context.Context, table, ownerColumn, ownerID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceLinksTx(ctx, tx, table, ownerColumn, ownerID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// replaceLinksTx deletes every row of table owned by ownerID and inserts one
// row per tag. table and ownerColumn are trusted constants.
func replaceLinksTx(ctx context.Context, tx *sql.Tx, table, ownerColumn, ownerID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE `+ownerColumn+` = ?`, ownerID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	for _, tagID := range dedupe(tagIDs) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerColumn+`, tag_id) VALUES (?, ?)`,
			ownerID, tagID)
		if isForeignKeyViolation(err) {
			return store.ErrInvalidInput.WithMessage("unknown tag or owner").WithCause(err)
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}

	return nil
}
