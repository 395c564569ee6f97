// Package service implements the business rules of the tag catalog.
// Services sit between the HTTP handlers and the repo layer: they validate
// input and translate catalog rules into repo calls.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/repo"
)

const (
	// MaxNameLength is the longest tag name, in runes, the catalog accepts.
	MaxNameLength = 100
	// MaxDescriptionLength is the longest description, in runes.
	MaxDescriptionLength = 1000
)

// TagService implements business logic for the tag catalog.
// CatalogTag itself accepts any name; the catalog is where a name must be
// non-blank and unique.
type TagService struct {
	tags repo.TagRepo
	log  *slog.Logger
}

// NewTagService constructs a TagService backed by the provided TagRepo.
// A nil logger falls back to slog.Default().
func NewTagService(tags repo.TagRepo, log *slog.Logger) *TagService {
	if log == nil {
		log = slog.Default()
	}
	return &TagService{tags: tags, log: log}
}

// Create validates tag and stores it. Surrounding whitespace is trimmed
// from the name before it is checked and stored.
func (s *TagService) Create(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
	name := strings.TrimSpace(tag.Name())
	if name == "" {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.Create: %w: name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.Create: %w: name must be at most %d characters", domain.ErrValidation, MaxNameLength)
	}
	if d, ok := tag.Description(); ok && utf8.RuneCountInString(d) > MaxDescriptionLength {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.Create: %w: description must be at most %d characters", domain.ErrValidation, MaxDescriptionLength)
	}

	if name != tag.Name() {
		tag = domain.NewCatalogTag(name,
			domain.DescriptionOption(tag.DescriptionPtr()),
			domain.WithAdult(tag.IsAdult()),
			domain.WithSpoiler(tag.IsSpoiler()),
		)
	}

	entry, err := s.tags.Create(ctx, tag)
	if err != nil {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "tag created",
		"id", entry.ID,
		"name", entry.Tag.Name(),
		"adult", entry.Tag.IsAdult(),
		"spoiler", entry.Tag.IsSpoiler(),
	)
	return entry, nil
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, id uuid.UUID) (domain.TagEntry, error) {
	entry, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.Get: %w", err)
	}
	return entry, nil
}

// GetByName returns a tag by name, ignoring case and surrounding whitespace.
func (s *TagService) GetByName(ctx context.Context, name string) (domain.TagEntry, error) {
	entry, err := s.tags.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return domain.TagEntry{}, fmt.Errorf("service.TagService.GetByName: %w", err)
	}
	return entry, nil
}

// List returns one page of tags whose name starts with prefix and which f
// allows.
func (s *TagService) List(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
	entries, total, err := s.tags.ListPaged(ctx, strings.TrimSpace(prefix), f, p)
	if err != nil {
		return domain.Page[domain.TagEntry]{}, fmt.Errorf("service.TagService.List: %w", err)
	}
	return domain.Page[domain.TagEntry]{Items: entries, Total: total, Params: p}, nil
}

// Delete removes a tag by ID.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "tag deleted", "id", id)
	return nil
}
