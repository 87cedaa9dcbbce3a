// Package export turns content into slide decks.
//
// Text is split into sections by marker lines such as "[Chorus]". Each
// section is laid out by the template rule targeting its name, and the
// resulting slides are handed to a Writer.
package export

import (
	"regexp"
	"strings"

	"github.com/presenterapp/presenter/internal/domain"
)

// DefaultSection names lines that precede any marker.
const DefaultSection = "Verse"

var markerPattern = regexp.MustCompile(`^\s*\[(.*?)\]\s*$`)

// Section is a named run of non-blank lines.
type Section struct {
	Name  string
	Lines []string
}

// ParseSections splits raw text into sections. A marker line switches the
// current section; lines of a section are merged across repeated markers and
// sections keep the order their names first appear in. Lines are trimmed and
// blank lines are dropped.
func ParseSections(raw string) []Section {
	var (
		sections []Section
		index    = map[string]int{}
		current  = DefaultSection
	)

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			current = strings.TrimSpace(m[1])
			if current == "" {
				current = DefaultSection
			}
			continue
		}
		if line == "" {
			continue
		}

		i, ok := index[current]
		if !ok {
			i = len(sections)
			index[current] = i
			sections = append(sections, Section{Name: current})
		}
		sections[i].Lines = append(sections[i].Lines, line)
	}
	return sections
}

// BlockSections turns the named text blocks of a flexible value into
// sections, one per block, named by the block. Blocks without a name use
// DefaultSection. File blocks carry no lines and are skipped.
func BlockSections(blocks []domain.Block) []Section {
	var sections []Section
	for _, b := range blocks {
		if b.Kind != domain.BlockNamedText {
			continue
		}
		name := strings.TrimSpace(b.Name)
		if name == "" {
			name = DefaultSection
		}
		var lines []string
		for _, s := range ParseSections(b.Content) {
			lines = append(lines, s.Lines...)
		}
		if len(lines) == 0 {
			continue
		}
		sections = append(sections, Section{Name: name, Lines: lines})
	}
	return sections
}
