package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// BlockKind discriminates the sub-blocks of a flexible content value.
type BlockKind string

const (
	BlockNamedText BlockKind = "NamedText"
	BlockImage     BlockKind = "Image"
	BlockPdf       BlockKind = "Pdf"
)

// legacyBlockKinds maps the numeric discriminators written by older clients.
var legacyBlockKinds = map[int]BlockKind{
	0: BlockNamedText,
	1: BlockImage,
	2: BlockPdf,
}

// Valid reports whether k is a known block kind.
func (k BlockKind) Valid() bool {
	switch k {
	case BlockNamedText, BlockImage, BlockPdf:
		return true
	}
	return false
}

// IsFile reports whether blocks of this kind reference a file.
func (k BlockKind) IsFile() bool {
	return k == BlockImage || k == BlockPdf
}

// ParseBlockKind parses a block kind name case-insensitively.
func ParseBlockKind(s string) (BlockKind, error) {
	for _, k := range []BlockKind{BlockNamedText, BlockImage, BlockPdf} {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown block kind %q", s)
}

// UnmarshalJSON accepts either the kind name or its legacy numeric form.
func (k *BlockKind) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseBlockKind(s)
		if err != nil {
			return err
		}
		*k = parsed
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("block kind: %w", err)
	}
	parsed, ok := legacyBlockKinds[n]
	if !ok {
		return fmt.Errorf("unknown block kind %d", n)
	}
	*k = parsed
	return nil
}

// Block is one element of a flexible content value. NamedText blocks carry
// Content; Image and Pdf blocks carry FilePath.
type Block struct {
	Kind     BlockKind `json:"type" yaml:"type"`
	Name     string    `json:"name" yaml:"name"`
	Content  string    `json:"content" yaml:"content,omitempty"`
	FilePath string    `json:"filePath" yaml:"file_path,omitempty"`
}

// FileName returns the base name of the referenced file, or "" for text blocks.
func (b Block) FileName() string {
	if !b.Kind.IsFile() || b.FilePath == "" {
		return ""
	}
	return filepath.Base(b.FilePath)
}

// EncodeBlocks serializes blocks into their stored JSON array form.
// A nil slice encodes as an empty array.
func EncodeBlocks(blocks []Block) (string, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	for i, b := range blocks {
		if !b.Kind.Valid() {
			return "", fmt.Errorf("block %d: unknown kind %q", i, b.Kind)
		}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("encode blocks: %w", err)
	}
	return string(data), nil
}

// DecodeBlocks parses a stored flexible content value. Errors wrap
// ErrMalformedValue. A blank or null value decodes to an empty list.
func DecodeBlocks(raw string) ([]Block, error) {
	if isBlank(raw) {
		return []Block{}, nil
	}
	var blocks []Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	if blocks == nil {
		blocks = []Block{}
	}
	return blocks, nil
}

// FirstNamedText returns the first NamedText block.
func FirstNamedText(blocks []Block) (Block, bool) {
	for _, b := range blocks {
		if b.Kind == BlockNamedText {
			return b, true
		}
	}
	return Block{}, false
}

// FirstFile returns the first block that references a file.
func FirstFile(blocks []Block) (Block, bool) {
	for _, b := range blocks {
		if b.Kind.IsFile() {
			return b, true
		}
	}
	return Block{}, false
}
