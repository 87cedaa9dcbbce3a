// Package seed imports a content library described in YAML.
//
// A seed file nests the library the way it is edited: book types carry their
// common attributes and books, books carry private attributes, tags and
// entries, and entries map attribute names to values. Flexible content values
// are lists of blocks; file blocks may name a local "source" file that is
// copied into media storage on import.
//
//	book_types:
//	  - name: Hymnal
//	    attributes:
//	      - {name: Title, type: text}
//	      - {name: Lyrics, type: flexible_content}
//	    books:
//	      - name: Hymn Collection
//	        tags: [Worship]
//	        entries:
//	          - tags: [Easter]
//	            values:
//	              Title: Amazing Grace
//	              Lyrics:
//	                - {type: NamedText, name: Verse 1, content: "Amazing grace"}
//	                - {type: Image, name: Cross, source: images/cross.png}
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/service"
)

// Library is the root of a seed file.
type Library struct {
	BookTypes []BookType `yaml:"book_types"`
}

// BookType is a book type with its common attributes and books.
type BookType struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes"`
	Books      []Book      `yaml:"books"`
}

// Attribute declares an attribute definition.
type Attribute struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Book is a book with its private attributes, tags and entries.
type Book struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes"`
	Tags       []string    `yaml:"tags"`
	Entries    []Entry     `yaml:"entries"`
}

// Entry holds values keyed by attribute name. Value nodes are decoded once
// the attribute's field type is known.
type Entry struct {
	DateAdded time.Time            `yaml:"date_added"`
	Tags      []string             `yaml:"tags"`
	Values    map[string]yaml.Node `yaml:"values"`
}

// block is the YAML form of a flexible content block.
type block struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Content  string `yaml:"content"`
	FilePath string `yaml:"file_path"`
	Source   string `yaml:"source"`
}

// Load parses a seed file. Unknown keys are rejected.
func Load(r io.Reader) (*Library, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var lib Library
	if err := dec.Decode(&lib); err != nil {
		if errors.Is(err, io.EOF) {
			return &lib, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &lib, nil
}

// LoadFile parses the seed file at path. Relative block sources resolve
// against the file's directory.
func LoadFile(path string) (*Library, string, error) {
	f, err := os.Open(path) //#nosec G304 -- seed path is chosen by the user
	if err != nil {
		return nil, "", fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	lib, err := Load(f)
	if err != nil {
		return nil, "", err
	}
	return lib, filepath.Dir(path), nil
}

// Importer copies media files into storage.
type Importer interface {
	Import(ctx context.Context, r io.Reader, filename string) (string, domain.BlockKind, error)
	Delete(path string) error
}

// Report counts what Apply created.
type Report struct {
	BookTypes  int `json:"book_types"`
	Books      int `json:"books"`
	Attributes int `json:"attributes"`
	Tags       int `json:"tags"`
	Entries    int `json:"entries"`
	Media      int `json:"media"`
}

// Option configures Apply.
type Option func(*applier)

// WithMedia imports file block sources through importer, resolving relative
// sources against baseDir. Without it, blocks with a source are rejected.
func WithMedia(importer Importer, baseDir string) Option {
	return func(a *applier) {
		a.importer = importer
		a.baseDir = baseDir
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(a *applier) {
		a.logger = logger
	}
}

type applier struct {
	lib      *service.LibraryService
	importer Importer
	baseDir  string
	logger   *slog.Logger
	tags     map[string]string
	report   Report
}

// Apply creates the seed library through the library service, so the usual
// validation and ID generation apply. It stops at the first error; what was
// created before it stays.
func Apply(ctx context.Context, lib *service.LibraryService, seed *Library, opts ...Option) (*Report, error) {
	a := &applier{
		lib:    lib,
		logger: slog.New(slog.DiscardHandler),
		tags:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, bt := range seed.BookTypes {
		if err := a.bookType(ctx, bt); err != nil {
			return &a.report, fmt.Errorf("book type %q: %w", bt.Name, err)
		}
	}

	a.logger.Info("seed applied",
		"book_types", a.report.BookTypes,
		"books", a.report.Books,
		"entries", a.report.Entries,
		"media", a.report.Media,
	)
	return &a.report, nil
}

func (a *applier) bookType(ctx context.Context, seed BookType) error {
	bt, err := a.lib.CreateBookType(ctx, service.BookTypeRequest{Name: seed.Name})
	if err != nil {
		return err
	}
	a.report.BookTypes++

	for _, attr := range seed.Attributes {
		ft, err := domain.ParseFieldType(attr.Type)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		if _, err := a.lib.AddCommonAttribute(ctx, bt.ID, service.AttributeRequest{Name: attr.Name, Type: ft}); err != nil {
			return fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		a.report.Attributes++
	}

	for _, b := range seed.Books {
		if err := a.book(ctx, bt.ID, b); err != nil {
			return fmt.Errorf("book %q: %w", b.Name, err)
		}
	}
	return nil
}

func (a *applier) book(ctx context.Context, bookTypeID string, seed Book) error {
	book, err := a.lib.CreateBook(ctx, service.BookRequest{Name: seed.Name, BookTypeID: bookTypeID})
	if err != nil {
		return err
	}
	a.report.Books++

	for _, attr := range seed.Attributes {
		ft, err := domain.ParseFieldType(attr.Type)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		if _, err := a.lib.AddPrivateAttribute(ctx, book.ID, service.AttributeRequest{Name: attr.Name, Type: ft}); err != nil {
			return fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		a.report.Attributes++
	}

	if len(seed.Tags) > 0 {
		tagIDs, err := a.tagIDs(ctx, seed.Tags)
		if err != nil {
			return err
		}
		if err := a.lib.SetBookTags(ctx, book.ID, tagIDs); err != nil {
			return err
		}
	}

	defs, err := a.lib.EffectiveAttributes(ctx, book.ID)
	if err != nil {
		return err
	}
	byName := make(map[string]*domain.AttributeDefinition, len(defs))
	for _, d := range defs {
		byName[strings.ToLower(d.Name)] = d
	}

	for i, e := range seed.Entries {
		if err := a.entry(ctx, book.ID, byName, e); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return nil
}

func (a *applier) entry(ctx context.Context, bookID string, defs map[string]*domain.AttributeDefinition, seed Entry) error {
	req := service.EntryRequest{
		BookID:    bookID,
		DateAdded: seed.DateAdded,
		Values:    make(map[string]domain.Value, len(seed.Values)),
	}

	// Sorted so errors and media imports happen in a stable order.
	names := make([]string, 0, len(seed.Values))
	for name := range seed.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def, ok := defs[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown attribute %q", name)
		}
		node := seed.Values[name]
		v, err := a.value(ctx, def.Type, &node)
		if err != nil {
			return fmt.Errorf("value %q: %w", name, err)
		}
		req.Values[def.ID] = v
	}

	if len(seed.Tags) > 0 {
		tagIDs, err := a.tagIDs(ctx, seed.Tags)
		if err != nil {
			return err
		}
		req.TagIDs = tagIDs
	}

	if _, err := a.lib.SaveEntry(ctx, req); err != nil {
		return err
	}
	a.report.Entries++
	return nil
}

func (a *applier) value(ctx context.Context, ft domain.FieldType, node *yaml.Node) (domain.Value, error) {
	switch ft {
	case domain.FieldNumber:
		var f float64
		if err := node.Decode(&f); err != nil {
			return domain.Value{}, err
		}
		return domain.NumberValue(f), nil
	case domain.FieldFlexibleContent:
		var raw []block
		if err := node.Decode(&raw); err != nil {
			return domain.Value{}, err
		}
		blocks := make([]domain.Block, 0, len(raw))
		for _, rb := range raw {
			b, err := a.block(ctx, rb)
			if err != nil {
				return domain.Value{}, err
			}
			blocks = append(blocks, b)
		}
		return domain.BlocksValue(blocks), nil
	default:
		var s string
		if err := node.Decode(&s); err != nil {
			return domain.Value{}, err
		}
		return domain.TextValue(s), nil
	}
}

func (a *applier) block(ctx context.Context, rb block) (domain.Block, error) {
	kind, err := domain.ParseBlockKind(rb.Type)
	if err != nil {
		return domain.Block{}, err
	}
	b := domain.Block{Kind: kind, Name: rb.Name, Content: rb.Content, FilePath: rb.FilePath}
	if rb.Source == "" {
		return b, nil
	}

	if !kind.IsFile() {
		return domain.Block{}, fmt.Errorf("block %q: only image and pdf blocks take a source", rb.Name)
	}
	if a.importer == nil {
		return domain.Block{}, fmt.Errorf("block %q: media import is not configured", rb.Name)
	}

	path, detected, err := a.importSource(ctx, rb.Source)
	if err != nil {
		return domain.Block{}, fmt.Errorf("block %q: %w", rb.Name, err)
	}
	if detected != kind {
		if err := a.importer.Delete(path); err != nil {
			a.logger.Warn("failed to remove rejected media", "path", path, "error", err)
		}
		return domain.Block{}, fmt.Errorf("block %q: %s is a %s, not a %s", rb.Name, rb.Source, detected, kind)
	}
	b.FilePath = path
	a.report.Media++
	return b, nil
}

func (a *applier) importSource(ctx context.Context, source string) (string, domain.BlockKind, error) {
	if !filepath.IsAbs(source) {
		source = filepath.Join(a.baseDir, source)
	}
	f, err := os.Open(source) //#nosec G304 -- sources are listed in the user's seed file
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	return a.importer.Import(ctx, f, filepath.Base(source))
}

func (a *applier) tagIDs(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if id, ok := a.tags[key]; ok {
			ids = append(ids, id)
			continue
		}
		t, err := a.lib.FindOrCreateTag(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		a.tags[key] = t.ID
		a.report.Tags++
		ids = append(ids, t.ID)
	}
	return ids, nil
}
