package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/export"
)

// ExportService builds slide decks from content entries.
type ExportService struct {
	library *LibraryService
	writer  export.Writer
	logger  *slog.Logger
}

// NewExportService creates a new export service writing with writer.
func NewExportService(library *LibraryService, writer export.Writer, logger *slog.Logger) *ExportService {
	return &ExportService{
		library: library,
		writer:  writer,
		logger:  logger,
	}
}

// BuildDeck lays out the entries, in the given order, as slides.
//
// An entry's first text value titles its slides, falling back to the book
// name. Its remaining text, long text and flexible content values become the
// sections.
func (s *ExportService) BuildDeck(ctx context.Context, entryIDs []string, tmpl domain.PresentationTemplate) (*domain.Deck, error) {
	if len(entryIDs) == 0 {
		return nil, domainerrors.Validation("no entries selected")
	}

	deck := &domain.Deck{Template: tmpl.Name}
	for _, entryID := range entryIDs {
		detail, err := s.library.EntryDetail(ctx, entryID)
		if err != nil {
			return nil, err
		}
		title, sections := deckContent(detail)
		deck.Slides = append(deck.Slides, export.Slides(title, sections, tmpl)...)
	}

	s.logger.Debug("deck built",
		"entries", len(entryIDs),
		"slides", len(deck.Slides),
		"template", tmpl.Name,
	)
	return deck, nil
}

// Export builds the deck and writes it to w.
func (s *ExportService) Export(ctx context.Context, entryIDs []string, tmpl domain.PresentationTemplate, w io.Writer) (*domain.Deck, error) {
	deck, err := s.BuildDeck(ctx, entryIDs, tmpl)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Write(w, deck); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to write deck")
	}
	return deck, nil
}

// Extension is the file extension of exported decks.
func (s *ExportService) Extension() string {
	return s.writer.Extension()
}

func deckContent(detail *EntryDetail) (string, []export.Section) {
	title := detail.Book.Name
	titleField := -1
	for i, f := range detail.Fields {
		if f.Definition.Type == domain.FieldText && !f.Missing && !f.Malformed {
			title = strings.Join(strings.Fields(f.Raw), " ")
			titleField = i
			break
		}
	}

	var sections []export.Section
	for i, f := range detail.Fields {
		if i == titleField || f.Missing || f.Malformed {
			continue
		}
		switch f.Definition.Type {
		case domain.FieldText, domain.FieldTextArea:
			sections = append(sections, export.ParseSections(f.Raw)...)
		case domain.FieldFlexibleContent:
			sections = append(sections, export.BlockSections(f.Value.Blocks())...)
		}
	}
	return title, sections
}
