package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/service"
)

// pagedRepo serves n generated tags through ListPaged and counts calls.
func pagedRepo(n int, calls *int) *mockTagRepo {
	all := make([]domain.TagEntry, n)
	for i := range all {
		all[i] = domain.TagEntry{ID: uuid.New(), Tag: domain.NewCatalogTag(fmt.Sprintf("tag-%03d", i))}
	}
	return &mockTagRepo{
		listPaged: func(_ context.Context, _ string, _ domain.ContentFilter, p domain.PaginationParams) ([]domain.TagEntry, int64, error) {
			*calls++
			start := min(p.Offset(), n)
			end := min(start+p.Limit, n)
			return all[start:end], int64(n), nil
		},
	}
}

func TestExportService_Export_WalksAllPages(t *testing.T) {
	var calls int
	svc := service.NewExportService(pagedRepo(250, &calls))

	got, err := svc.Export(context.Background(), domain.ShowAll)

	require.NoError(t, err)
	assert.Len(t, got, 250)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "tag-249", got[249].Tag.Name())
}

func TestExportService_Export_ExactMultipleStopsOnTotal(t *testing.T) {
	var calls int
	svc := service.NewExportService(pagedRepo(200, &calls))

	got, err := svc.Export(context.Background(), domain.ShowAll)

	require.NoError(t, err)
	assert.Len(t, got, 200)
	assert.Equal(t, 2, calls, "no extra round trip once total is reached")
}

func TestExportService_Export_Empty(t *testing.T) {
	var calls int
	svc := service.NewExportService(pagedRepo(0, &calls))

	got, err := svc.Export(context.Background(), domain.ContentFilter{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExportService_Export_PassesFilter(t *testing.T) {
	var gotFilter domain.ContentFilter
	svc := service.NewExportService(&mockTagRepo{
		listPaged: func(_ context.Context, _ string, f domain.ContentFilter, _ domain.PaginationParams) ([]domain.TagEntry, int64, error) {
			gotFilter = f
			return []domain.TagEntry{}, 0, nil
		},
	})

	_, err := svc.Export(context.Background(), domain.ContentFilter{ShowSpoilers: true})

	require.NoError(t, err)
	assert.Equal(t, domain.ContentFilter{ShowSpoilers: true}, gotFilter)
}

func TestExportService_Export_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := service.NewExportService(&mockTagRepo{
		listPaged: func(context.Context, string, domain.ContentFilter, domain.PaginationParams) ([]domain.TagEntry, int64, error) {
			return nil, 0, boom
		},
	})

	_, err := svc.Export(context.Background(), domain.ShowAll)

	assert.ErrorIs(t, err, boom)
}
