package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
)

func TestBuildDeck(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	words, err := svc.library.AddCommonAttribute(ctx, h.bookType.ID, AttributeRequest{Name: "Words", Type: domain.FieldTextArea})
	require.NoError(t, err)

	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{
			h.lyrics.ID: domain.TextValue("Amazing Grace"),
			words.ID:    domain.TextValue("Amazing grace\nhow sweet the sound\n[Chorus]\nMy chains are gone"),
			h.verse.ID: domain.BlocksValue([]domain.Block{
				{Kind: domain.BlockNamedText, Name: "Bridge", Content: "Unending love"},
				{Kind: domain.BlockImage, FilePath: "/media/cross.png"},
			}),
		},
	})
	require.NoError(t, err)

	tmpl := domain.PresentationTemplate{
		Name:        "test",
		Rules:       []domain.SlideRule{{TargetType: "chorus", LinesPerSlide: 1, IsBold: true, FontSize: 40}},
		DefaultRule: domain.SlideRule{LinesPerSlide: 1, FontSize: 32},
	}

	var buf bytes.Buffer
	deck, err := svc.export.Export(ctx, []string{entry.ID}, tmpl, &buf)
	require.NoError(t, err)
	assert.Equal(t, "test", deck.Template)

	var titles []string
	for _, s := range deck.Slides {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{
		"Amazing Grace (Bridge)",
		"Amazing Grace (Verse)",
		"Amazing Grace (Verse)",
		"Amazing Grace (Chorus)",
	}, titles)
	assert.True(t, deck.Slides[3].IsBold)
	assert.Contains(t, buf.String(), "My chains are gone")
	assert.Equal(t, ".yaml", svc.export.Extension())
}

func TestBuildDeck_FallsBackToBookName(t *testing.T) {
	svc := setupServices(t)
	h := setupHymnal(t, svc)
	ctx := context.Background()

	entry, err := svc.library.SaveEntry(ctx, EntryRequest{
		BookID: h.book.ID,
		Values: map[string]domain.Value{
			h.verse.ID: domain.BlocksValue([]domain.Block{{Kind: domain.BlockNamedText, Name: "Chorus", Content: "Sing"}}),
		},
	})
	require.NoError(t, err)

	deck, err := svc.export.BuildDeck(ctx, []string{entry.ID}, domain.DefaultTemplate())
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, "Hymn Collection (Chorus)", deck.Slides[0].Title)
	assert.Equal(t, 40, deck.Slides[0].FontSize)
}

func TestBuildDeck_Errors(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	_, err := svc.export.BuildDeck(ctx, nil, domain.DefaultTemplate())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.export.BuildDeck(ctx, []string{"entry-missing"}, domain.DefaultTemplate())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
