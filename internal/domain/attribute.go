package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FieldType is the declared type of an attribute definition.
type FieldType string

const (
	FieldText            FieldType = "text"
	FieldTextArea        FieldType = "textarea"
	FieldNumber          FieldType = "number"
	FieldImage           FieldType = "image"
	FieldPdf             FieldType = "pdf"
	FieldFlexibleContent FieldType = "flexible_content"
)

// FieldTypes lists every supported field type in display order.
var FieldTypes = []FieldType{
	FieldText,
	FieldTextArea,
	FieldNumber,
	FieldImage,
	FieldPdf,
	FieldFlexibleContent,
}

// Valid reports whether ft is a known field type.
func (ft FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if ft == known {
			return true
		}
	}
	return false
}

func (ft FieldType) String() string { return string(ft) }

// ParseFieldType parses a field type name case-insensitively.
// "flexible", "flexiblecontent" and "flexible-content" are accepted aliases.
func ParseFieldType(s string) (FieldType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "flexible", "flexiblecontent", "flexible-content":
		return FieldFlexibleContent, nil
	}
	ft := FieldType(key)
	if !ft.Valid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return ft, nil
}

// ScopeKind distinguishes common from private attribute definitions.
type ScopeKind int

const (
	scopeInvalid ScopeKind = iota
	// ScopeCommon attributes belong to a book type.
	ScopeCommon
	// ScopePrivate attributes belong to a single book.
	ScopePrivate
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeCommon:
		return "common"
	case ScopePrivate:
		return "private"
	default:
		return "invalid"
	}
}

// Scope identifies the owner of an attribute definition: exactly one of a
// book type (common) or a book (private). The zero Scope is invalid.
type Scope struct {
	kind    ScopeKind
	ownerID string
}

// CommonScope returns a scope owned by a book type.
func CommonScope(bookTypeID string) Scope {
	return Scope{kind: ScopeCommon, ownerID: bookTypeID}
}

// PrivateScope returns a scope owned by a single book.
func PrivateScope(bookID string) Scope {
	return Scope{kind: ScopePrivate, ownerID: bookID}
}

// Kind returns the scope kind.
func (s Scope) Kind() ScopeKind { return s.kind }

// OwnerID returns the book type ID or book ID owning the scope.
func (s Scope) OwnerID() string { return s.ownerID }

// BookTypeID returns the owning book type for common scopes.
func (s Scope) BookTypeID() (string, bool) {
	if s.kind != ScopeCommon {
		return "", false
	}
	return s.ownerID, true
}

// BookID returns the owning book for private scopes.
func (s Scope) BookID() (string, bool) {
	if s.kind != ScopePrivate {
		return "", false
	}
	return s.ownerID, true
}

// Valid reports whether the scope has a kind and an owner.
func (s Scope) Valid() bool {
	return s.kind != scopeInvalid && s.ownerID != ""
}

func (s Scope) String() string {
	return s.kind.String() + ":" + s.ownerID
}

// AttributeDefinition is a user-defined, typed field attached to a book type
// or to a single book.
type AttributeDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Scope     Scope     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectiveAttributes returns the attribute set of a book: the common
// definitions of its type followed by its private definitions, keeping the
// first definition of each name.
func EffectiveAttributes(common, private []*AttributeDefinition) []*AttributeDefinition {
	all := make([]*AttributeDefinition, 0, len(common)+len(private))
	all = append(all, common...)
	all = append(all, private...)
	return DedupeByName(all)
}

// DedupeByName drops definitions whose name was already seen, ignoring case,
// preserving order.
func DedupeByName(defs []*AttributeDefinition) []*AttributeDefinition {
	out := make([]*AttributeDefinition, 0, len(defs))
	for _, d := range defs {
		if d == nil || HasAttributeNamed(out, d.Name) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// HasAttributeNamed reports whether defs holds a definition called name,
// compared case-insensitively. This is the one-per-name rule of a book's
// effective attributes.
func HasAttributeNamed(defs []*AttributeDefinition, name string) bool {
	return slices.ContainsFunc(defs, func(d *AttributeDefinition) bool {
		return strings.EqualFold(d.Name, name)
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
