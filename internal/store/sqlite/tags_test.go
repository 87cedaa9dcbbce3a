package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/store"
)

func TestCreateAndGetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := createTag(t, s, "Christmas")

	got, err := s.GetTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Name != "Christmas" {
		t.Errorf("Name: got %q, want %q", got.Name, "Christmas")
	}
	if !got.CreatedAt.Equal(tag.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, tag.CreatedAt)
	}

	byName, err := s.GetTagByName(ctx, "christmas")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if byName.ID != tag.ID {
		t.Errorf("GetTagByName returned %q, want %q", byName.ID, tag.ID)
	}
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	createTag(t, s, "Easter")

	err := s.CreateTag(context.Background(), &domain.Tag{ID: "tag-dup", Name: "EASTER", CreatedAt: baseTime})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTag(context.Background(), "tag-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTags_OrderedByName(t *testing.T) {
	s := newTestStore(t)
	createTag(t, s, "b")
	createTag(t, s, "a")
	createTag(t, s, "c")

	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	for i, want := range []string{"a", "b", "c"} {
		if tags[i].Name != want {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, want)
		}
	}
}

func TestSetBookTags_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bt := createBookType(t, s, "Hymnal")
	book := createBook(t, s, bt.ID, "Hymns")
	t1 := createTag(t, s, "one")
	t2 := createTag(t, s, "two")
	t3 := createTag(t, s, "three")

	if err := s.SetBookTags(ctx, book.ID, []string{t1.ID, t2.ID, t1.ID}); err != nil {
		t.Fatalf("SetBookTags: %v", err)
	}
	if err := s.SetBookTags(ctx, book.ID, []string{t3.ID}); err != nil {
		t.Fatalf("SetBookTags: %v", err)
	}

	ids, err := s.GetBookTagIDs(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookTagIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != t3.ID {
		t.Errorf("expected [%s], got %v", t3.ID, ids)
	}
}

func TestSetEntryTags_UnknownTag(t *testing.T) {
	s := newTestStore(t)
	bt := createBookType(t, s, "Hymnal")
	book := createBook(t, s, bt.ID, "Hymns")
	entry := saveEntry(t, s, book.ID, 0, nil)

	err := s.SetEntryTags(context.Background(), entry.ID, []string{"tag-missing"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteTag_RemovesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bt := createBookType(t, s, "Hymnal")
	book := createBook(t, s, bt.ID, "Hymns")
	entry := saveEntry(t, s, book.ID, 0, nil)
	tag := createTag(t, s, "advent")

	if err := s.SetBookTags(ctx, book.ID, []string{tag.ID}); err != nil {
		t.Fatalf("SetBookTags: %v", err)
	}
	if err := s.SetEntryTags(ctx, entry.ID, []string{tag.ID}); err != nil {
		t.Fatalf("SetEntryTags: %v", err)
	}

	if err := s.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	if n := countRows(t, s, `SELECT COUNT(*) FROM book_tags`); n != 0 {
		t.Errorf("expected no book_tags, got %d", n)
	}
	if n := countRows(t, s, `SELECT COUNT(*) FROM content_entry_tags`); n != 0 {
		t.Errorf("expected no content_entry_tags, got %d", n)
	}

	if err := s.DeleteTag(ctx, tag.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
