package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedValue is wrapped by every decode failure of a stored value.
var ErrMalformedValue = errors.New("malformed attribute value")

// ValueKind is the variant held by a Value.
type ValueKind int

const (
	ValueText ValueKind = iota + 1
	ValueNumber
	ValueBlocks
)

// Value is the decoded form of an AttributeValue: plain text (also used for
// image and pdf file paths), a number, or a flexible content block list.
type Value struct {
	kind   ValueKind
	text   string
	number float64
	blocks []Block
}

// TextValue returns a text variant.
func TextValue(s string) Value {
	return Value{kind: ValueText, text: s}
}

// NumberValue returns a number variant.
func NumberValue(f float64) Value {
	return Value{kind: ValueNumber, number: f}
}

// BlocksValue returns a flexible content variant.
func BlocksValue(blocks []Block) Value {
	return Value{kind: ValueBlocks, blocks: blocks}
}

func (v Value) Kind() ValueKind { return v.kind }

// Text returns the text of a text variant.
func (v Value) Text() string { return v.text }

// Number returns the number of a number variant.
func (v Value) Number() float64 { return v.number }

// Blocks returns the blocks of a flexible content variant.
func (v Value) Blocks() []Block { return v.blocks }

// IsZero reports whether v was never assigned a variant.
func (v Value) IsZero() bool { return v.kind == 0 }

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case ValueText:
		return v.text
	case ValueNumber:
		return formatNumber(v.number)
	case ValueBlocks:
		parts := make([]string, 0, len(v.blocks))
		for _, b := range v.blocks {
			if b.Kind == BlockNamedText {
				parts = append(parts, strings.TrimSpace(b.Name+" "+b.Content))
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s] %s", b.Kind, b.FileName()))
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// CompatibleWith reports whether v may be stored in a field of type ft.
func (v Value) CompatibleWith(ft FieldType) bool {
	switch ft {
	case FieldText, FieldTextArea, FieldImage, FieldPdf:
		return v.kind == ValueText
	case FieldNumber:
		return v.kind == ValueNumber
	case FieldFlexibleContent:
		return v.kind == ValueBlocks
	default:
		return false
	}
}

// EncodeValue serializes v into its stored string form.
func EncodeValue(v Value) (string, error) {
	switch v.kind {
	case ValueText:
		return v.text, nil
	case ValueNumber:
		return formatNumber(v.number), nil
	case ValueBlocks:
		return EncodeBlocks(v.blocks)
	default:
		return "", errors.New("encode value: empty value")
	}
}

// DecodeValue parses a stored string according to the field type.
// Failures wrap ErrMalformedValue.
func DecodeValue(ft FieldType, raw string) (Value, error) {
	switch ft {
	case FieldText, FieldTextArea, FieldImage, FieldPdf:
		return TextValue(raw), nil
	case FieldNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q", ErrMalformedValue, raw)
		}
		return NumberValue(f), nil
	case FieldFlexibleContent:
		blocks, err := DecodeBlocks(raw)
		if err != nil {
			return Value{}, err
		}
		return BlocksValue(blocks), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown field type %q", ErrMalformedValue, ft)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
