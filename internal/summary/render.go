package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/presenterapp/presenter/internal/domain"
)

// FormatErrorText replaces a flexible content value that cannot be shown.
const FormatErrorText = "(format error)"

const ellipsis = "…"

// Line is the rendering of one attribute value of an entry.
type Line struct {
	AttributeID   string `json:"attribute_id,omitempty"`
	AttributeName string `json:"attribute_name,omitempty"`
	// Text is the single-line, length-bounded form shown in result lists.
	Text string `json:"text"`
	// Full is the untruncated form shown when the entry is expanded.
	Full string `json:"full"`
	// Empty is set when the entry holds no value for the attribute.
	Empty bool `json:"empty,omitempty"`
}

// emptyPlaceholder renders a missing or blank value.
func emptyPlaceholder(name string) string {
	return fmt.Sprintf("(%s trống)", name)
}

// addedOn renders the summary of an entry whose book has no attributes.
func addedOn(t time.Time) string {
	return "Nội dung thêm ngày " + t.Format("02/01/2006")
}

// renderValue renders v for def. It never fails: undecodable content turns
// into FormatErrorText.
func renderValue(def *domain.AttributeDefinition, v *domain.AttributeValue, maxLen int) Line {
	line := Line{AttributeID: def.ID, AttributeName: def.Name}

	if v.IsBlank() {
		line.Text = emptyPlaceholder(def.Name)
		line.Full = line.Text
		line.Empty = true
		return line
	}

	if def.Type != domain.FieldFlexibleContent {
		line.Full = v.Raw
		line.Text = truncate(oneLine(v.Raw), maxLen)
		return line
	}

	blocks, err := domain.DecodeBlocks(v.Raw)
	if err != nil || len(blocks) == 0 {
		line.Text = FormatErrorText
		line.Full = FormatErrorText
		return line
	}

	// The detail view lists every block.
	line.Full = domain.BlocksValue(blocks).String()

	if b, ok := domain.FirstNamedText(blocks); ok {
		line.Text = strings.TrimSpace(b.Name + " " + truncate(oneLine(b.Content), maxLen))
		return line
	}
	if b, ok := domain.FirstFile(blocks); ok {
		line.Text = fmt.Sprintf("[%s] %s", b.Kind, b.FileName())
		return line
	}

	line.Text = FormatErrorText
	line.Full = FormatErrorText
	return line
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to maxLen runes, marking the cut with an ellipsis.
// A non-positive maxLen disables truncation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return strings.TrimRight(string(r[:maxLen]), " ") + ellipsis
}
