package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

// attributeColumns must match the scan order in scanAttribute.
const attributeColumns = `id, name, field_type, book_type_id, book_id, created_at`

// attributeOrder lists definitions in creation order.
const attributeOrder = ` ORDER BY created_at ASC, rowid ASC`

func scanAttribute(scanner interface{ Scan(dest ...any) error }) (*domain.AttributeDefinition, error) {
	var (
		def        domain.AttributeDefinition
		fieldType  string
		bookTypeID sql.NullString
		bookID     sql.NullString
		createdAt  string
	)

	if err := scanner.Scan(&def.ID, &def.Name, &fieldType, &bookTypeID, &bookID, &createdAt); err != nil {
		return nil, err
	}

	def.Type = domain.FieldType(fieldType)
	switch {
	case bookTypeID.Valid:
		def.Scope = domain.CommonScope(bookTypeID.String)
	case bookID.Valid:
		def.Scope = domain.PrivateScope(bookID.String)
	}

	var err error
	if def.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Store) queryAttributes(ctx context.Context, query string, args ...any) ([]*domain.AttributeDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []*domain.AttributeDefinition{}
	for rows.Next() {
		def, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// CreateAttributeDefinition inserts a definition scoped to a book type or book.
// Returns store.ErrInvalidInput for an invalid scope or a missing owner.
func (s *Store) CreateAttributeDefinition(ctx context.Context, def *domain.AttributeDefinition) error {
	if !def.Scope.Valid() {
		return store.ErrInvalidInput.WithMessage("attribute scope is required")
	}

	bookTypeID, _ := def.Scope.BookTypeID()
	bookID, _ := def.Scope.BookID()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attribute_definitions (id, name, field_type, book_type_id, book_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		def.ID,
		def.Name,
		string(def.Type),
		nullString(bookTypeID),
		nullString(bookID),
		formatTime(def.CreatedAt),
	)
	switch {
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrInvalidInput.WithMessage("attribute owner does not exist").WithCause(err)
	}
	return err
}

// GetAttributeDefinition retrieves a definition by ID.
// Returns store.ErrNotFound if the definition does not exist.
func (s *Store) GetAttributeDefinition(ctx context.Context, id string) (*domain.AttributeDefinition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM attribute_definitions WHERE id = ?`, id)

	def, err := scanAttribute(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

// ListBookTypeAttributes returns the common definitions of a book type.
func (s *Store) ListBookTypeAttributes(ctx context.Context, bookTypeID string) ([]*domain.AttributeDefinition, error) {
	return s.queryAttributes(ctx,
		`SELECT `+attributeColumns+` FROM attribute_definitions WHERE book_type_id = ?`+attributeOrder,
		bookTypeID)
}

// ListBookAttributes returns the private definitions of a book.
func (s *Store) ListBookAttributes(ctx context.Context, bookID string) ([]*domain.AttributeDefinition, error) {
	return s.queryAttributes(ctx,
		`SELECT `+attributeColumns+` FROM attribute_definitions WHERE book_id = ?`+attributeOrder,
		bookID)
}

// ListAllAttributes returns every definition in creation order.
func (s *Store) ListAllAttributes(ctx context.Context) ([]*domain.AttributeDefinition, error) {
	return s.queryAttributes(ctx,
		`SELECT `+attributeColumns+` FROM attribute_definitions`+attributeOrder)
}

// DeleteAttributeDefinition removes a definition and all values stored for it.
// Returns store.ErrNotFound if the definition does not exist.
func (s *Store) DeleteAttributeDefinition(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attribute_values WHERE attribute_definition_id = ?`, id); err != nil {
		return fmt.Errorf("delete attribute values: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM attribute_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete attribute definition: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}

	return tx.Commit()
}
