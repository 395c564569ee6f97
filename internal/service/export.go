package service

import (
	"context"
	"fmt"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/repo"
)

// exportPageSize is how many rows each repo round trip fetches.
const exportPageSize = 100

// ExportService assembles a full export of the tag catalog.
type ExportService struct {
	tags repo.TagRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(tags repo.TagRepo) *ExportService {
	return &ExportService{tags: tags}
}

// Export returns every tag f allows, ordered by name, by walking the
// catalog one page at a time. The result is never nil.
func (s *ExportService) Export(ctx context.Context, f domain.ContentFilter) ([]domain.TagEntry, error) {
	out := []domain.TagEntry{}
	p := domain.PaginationParams{Page: 1, Limit: exportPageSize}
	for {
		entries, total, err := s.tags.ListPaged(ctx, "", f, p)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: page %d: %w", p.Page, err)
		}
		out = append(out, entries...)
		if len(entries) < p.Limit || int64(len(out)) >= total {
			return out, nil
		}
		p.Page++
	}
}
