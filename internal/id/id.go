// Package id generates the identifiers of library records: a record-kind
// prefix, a dash and a random alphanumeric suffix, e.g. "entry-4fQz0bXk9LmT2wVa".
//
// The suffix avoids '-' and '_' so an ID selects as one word in a terminal
// and never starts a command-line argument with a dash.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record kinds, used as ID prefixes.
const (
	BookType  = "bt"
	Book      = "book"
	Tag       = "tag"
	Attribute = "attr"
	Entry     = "entry"
	Value     = "val"
)

const (
	alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	suffixSize = 16
)

// Generate returns a new ID of the given kind.
func Generate(kind string) (string, error) {
	suffix, err := gonanoid.Generate(alphabet, suffixSize)
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", kind, err)
	}
	return kind + "-" + suffix, nil
}

// MustGenerate is Generate for fixtures and tests; it panics on failure.
func MustGenerate(kind string) string {
	v, err := Generate(kind)
	if err != nil {
		panic(err)
	}
	return v
}
