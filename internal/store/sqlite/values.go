package sqlite

import (
	"context"
	"database/sql"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// valueColumns must match the scan order in scanValue.
const valueColumns = `id, content_entry_id, attribute_definition_id, value`

// maxInArgs bounds the size of generated IN lists.
const maxInArgs = 500

func scanValue(scanner interface{ Scan(dest ...any) error }) (*domain.AttributeValue, error) {
	var v domain.AttributeValue
	if err := scanner.Scan(&v.ID, &v.ContentEntryID, &v.AttributeDefinitionID, &v.Raw); err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveAttributeValue upserts a single value. A second save for the same
// (entry, definition) pair updates the first row and keeps its ID.
func (s *Store) SaveAttributeValue(ctx context.Context, v *domain.AttributeValue) error {
	return upsertValue(ctx, s.db, v)
}

// GetAttributeValue returns the value an entry holds for a definition.
// Returns store.ErrNotFound when none has been saved.
func (s *Store) GetAttributeValue(ctx context.Context, entryID, definitionID string) (*domain.AttributeValue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+valueColumns+` FROM attribute_values
		WHERE content_entry_id = ? AND attribute_definition_id = ?`,
		entryID, definitionID)

	v, err := scanValue(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListAttributeValues returns every value stored for an entry.
func (s *Store) ListAttributeValues(ctx context.Context, entryID string) ([]*domain.AttributeValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+valueColumns+` FROM attribute_values
		WHERE content_entry_id = ? ORDER BY rowid`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []*domain.AttributeValue{}
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListValuesForEntries loads the values of many entries at once, keyed by
// entry ID. A non-empty definitionID restricts the result to that definition.
func (s *Store) ListValuesForEntries(ctx context.Context, entryIDs []string, definitionID string) (map[string][]*domain.AttributeValue, error) {
	entryIDs = dedupe(entryIDs)
	out := make(map[string][]*domain.AttributeValue, len(entryIDs))

	for start := 0; start < len(entryIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(entryIDs))
		chunk := entryIDs[start:end]

		query := `SELECT ` + valueColumns + ` FROM attribute_values
			WHERE content_entry_id IN (` + placeholders(len(chunk)) + `)`
		args := stringArgs(chunk)
		if definitionID != "" {
			query += ` AND attribute_definition_id = ?`
			args = append(args, definitionID)
		}
		query += ` ORDER BY rowid`

		if err := s.collectValues(ctx, out, query, args); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *Store) collectValues(ctx context.Context, out map[string][]*domain.AttributeValue, query string, args []any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return err
		}
		out[v.ContentEntryID] = append(out[v.ContentEntryID], v)
	}
	return rows.Err()
}
