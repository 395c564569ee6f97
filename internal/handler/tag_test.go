package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/handler"
	"github.com/pkordes/catalog-tags/internal/tagcodec"
)

// ---- mock TagServicer -------------------------------------------------------

type mockTagServicer struct {
	create    func(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error)
	get       func(ctx context.Context, id uuid.UUID) (domain.TagEntry, error)
	getByName func(ctx context.Context, name string) (domain.TagEntry, error)
	list      func(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagServicer) Create(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
	return m.create(ctx, tag)
}
func (m *mockTagServicer) Get(ctx context.Context, id uuid.UUID) (domain.TagEntry, error) {
	return m.get(ctx, id)
}
func (m *mockTagServicer) GetByName(ctx context.Context, name string) (domain.TagEntry, error) {
	return m.getByName(ctx, name)
}
func (m *mockTagServicer) List(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
	return m.list(ctx, prefix, f, p)
}
func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTagServicer must satisfy handler.TagServicer.
var _ handler.TagServicer = (*mockTagServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func serve(svc handler.TagServicer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.NewServer(svc, nil, nil).Routes().ServeHTTP(rec, req)
	return rec
}

func entryFixture(tag domain.CatalogTag) domain.TagEntry {
	return domain.TagEntry{ID: uuid.New(), Tag: tag, CreatedAt: time.Now().UTC().Truncate(time.Second)}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// ---- GET /tags -------------------------------------------------------------

func TestListTags_200_Defaults(t *testing.T) {
	var (
		gotPrefix string
		gotFilter domain.ContentFilter
		gotParams domain.PaginationParams
	)
	entries := []domain.TagEntry{entryFixture(domain.NewCatalogTag("Action")), entryFixture(domain.NewCatalogTag("Drama"))}
	svc := &mockTagServicer{
		list: func(_ context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
			gotPrefix, gotFilter, gotParams = prefix, f, p
			return domain.Page[domain.TagEntry]{Items: entries, Total: 2, Params: p}, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotPrefix)
	assert.Equal(t, domain.ContentFilter{}, gotFilter, "sensitive tags hidden by default")
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, gotParams)

	var body handler.ListTagsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Action", body.Data[0].Name)
	assert.Equal(t, handler.Pagination{Page: 1, Limit: 20, Total: 2, TotalPages: 1}, body.Pagination)
}

func TestListTags_200_QueryParams(t *testing.T) {
	var (
		gotPrefix string
		gotFilter domain.ContentFilter
		gotParams domain.PaginationParams
	)
	svc := &mockTagServicer{
		list: func(_ context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
			gotPrefix, gotFilter, gotParams = prefix, f, p
			return domain.Page[domain.TagEntry]{Items: []domain.TagEntry{}, Params: p}, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags?q=ro&page=2&limit=5&adult=true&spoilers=false", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ro", gotPrefix)
	assert.Equal(t, domain.ContentFilter{ShowAdult: true}, gotFilter)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 5}, gotParams)
}

func TestListTags_400_BadParam(t *testing.T) {
	for _, q := range []string{"page=two", "limit=x", "adult=maybe"} {
		rec := serve(&mockTagServicer{}, httptest.NewRequest(http.MethodGet, "/tags?"+q, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "invalid_parameter", decodeError(t, rec).Code)
	}
}

func TestListTags_200_BinaryList(t *testing.T) {
	tags := []domain.CatalogTag{domain.NewCatalogTag("Isekai", domain.WithSpoiler(true)), domain.NewCatalogTag("Mecha")}
	svc := &mockTagServicer{
		list: func(_ context.Context, _ string, _ domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
			return domain.Page[domain.TagEntry]{Items: []domain.TagEntry{entryFixture(tags[0]), entryFixture(tags[1])}, Total: 2, Params: p}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.Header.Set("Accept", tagcodec.ListContentType)

	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tagcodec.ListContentType, rec.Header().Get("Content-Type"))
	got, err := tagcodec.DecodeList(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tags, got)
}

func TestListTags_500(t *testing.T) {
	svc := &mockTagServicer{
		list: func(context.Context, string, domain.ContentFilter, domain.PaginationParams) (domain.Page[domain.TagEntry], error) {
			return domain.Page[domain.TagEntry]{}, errors.New("db down")
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "internal_error", detail.Code)
	assert.NotContains(t, detail.Message, "db down")
}

// ---- POST /tags ------------------------------------------------------------

func TestCreateTag_201_JSON(t *testing.T) {
	var captured domain.CatalogTag
	var created domain.TagEntry
	svc := &mockTagServicer{
		create: func(_ context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
			captured = tag
			created = entryFixture(tag)
			return created, nil
		},
	}
	body := `{"v":1,"name":"Isekai","description":null,"isAdult":false,"isSpoiler":true}`
	req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := serve(svc, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.NewCatalogTag("Isekai", domain.WithSpoiler(true)), captured)
	assert.Equal(t, "/tags/"+created.ID.String(), rec.Header().Get("Location"))

	var resp handler.TagResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "Isekai", resp.Name)
	assert.Nil(t, resp.Description)
	assert.True(t, resp.IsSpoiler)
}

func TestCreateTag_201_NoContentTypeIsJSON(t *testing.T) {
	svc := &mockTagServicer{
		create: func(_ context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
			return entryFixture(tag), nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"v":1,"name":"Action"}`))

	rec := serve(svc, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateTag_201_Binary(t *testing.T) {
	in := domain.NewCatalogTag("Ecchi", domain.WithDescription("Fan service"), domain.WithAdult(true))
	var captured domain.CatalogTag
	svc := &mockTagServicer{
		create: func(_ context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
			captured = tag
			return entryFixture(tag), nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/tags", bytes.NewReader(tagcodec.Encode(in)))
	req.Header.Set("Content-Type", tagcodec.ContentType)

	rec := serve(svc, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, in, captured)
}

func TestCreateTag_Errors(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        []byte
		svcErr      error
		wantStatus  int
		wantCode    string
	}{
		{"malformed json", "application/json", []byte(`{"v":1,`), nil, http.StatusBadRequest, "malformed_body"},
		{"malformed binary", tagcodec.ContentType, []byte{'C', 'T', 0x01}, nil, http.StatusBadRequest, "malformed_body"},
		{"future version", "application/json", []byte(`{"v":9,"name":"A"}`), nil, http.StatusUnsupportedMediaType, "unsupported_version"},
		{"unknown media type", "text/plain", []byte("Action"), nil, http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"validation", "application/json", []byte(`{"v":1,"name":" "}`),
			fmt.Errorf("service.TagService.Create: %w: name is required", domain.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
		{"conflict", "application/json", []byte(`{"v":1,"name":"Mecha"}`),
			fmt.Errorf("repo.TagRepo.Create: %w: tag \"Mecha\" already exists", domain.ErrConflict), http.StatusConflict, "conflict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTagServicer{
				create: func(_ context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
					if tc.svcErr != nil {
						return domain.TagEntry{}, tc.svcErr
					}
					return entryFixture(tag), nil
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/tags", bytes.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)

			rec := serve(svc, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestCreateTag_422_MessageIsUnwrapped(t *testing.T) {
	svc := &mockTagServicer{
		create: func(context.Context, domain.CatalogTag) (domain.TagEntry, error) {
			return domain.TagEntry{}, fmt.Errorf("service.TagService.Create: %w: name is required", domain.ErrValidation)
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"v":1,"name":""}`))

	rec := serve(svc, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "name is required", decodeError(t, rec).Message)
}

func TestCreateTag_413(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"v":1,"name":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	handler.NewServer(&mockTagServicer{}, nil, nil).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "body_too_large", decodeError(t, rec).Code)
}

// ---- GET /tags/{id} --------------------------------------------------------

func TestGetTag_200_JSON(t *testing.T) {
	entry := entryFixture(domain.NewCatalogTag("Romance", domain.WithDescription("")))
	svc := &mockTagServicer{
		get: func(_ context.Context, id uuid.UUID) (domain.TagEntry, error) {
			assert.Equal(t, entry.ID, id)
			return entry, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags/"+entry.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.TagResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, entry.ID, resp.ID)
	require.NotNil(t, resp.Description, "empty description is present, not null")
	assert.Equal(t, "", *resp.Description)
	assert.True(t, entry.CreatedAt.Equal(resp.CreatedAt))
}

func TestGetTag_200_Binary(t *testing.T) {
	entry := entryFixture(domain.NewCatalogTag("Isekai", domain.WithSpoiler(true)))
	svc := &mockTagServicer{
		get: func(context.Context, uuid.UUID) (domain.TagEntry, error) { return entry, nil },
	}
	req := httptest.NewRequest(http.MethodGet, "/tags/"+entry.ID.String(), nil)
	req.Header.Set("Accept", "application/json;q=0.5, "+tagcodec.ContentType)

	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tagcodec.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, tagcodec.Encode(entry.Tag), rec.Body.Bytes())
}

// TestGetTag_ListMediaTypeIsNotSingle guards against prefix matching: the
// list media type starts with the single-tag one.
func TestGetTag_ListMediaTypeIsNotSingle(t *testing.T) {
	entry := entryFixture(domain.NewCatalogTag("Action"))
	svc := &mockTagServicer{
		get: func(context.Context, uuid.UUID) (domain.TagEntry, error) { return entry, nil },
	}
	req := httptest.NewRequest(http.MethodGet, "/tags/"+entry.ID.String(), nil)
	req.Header.Set("Accept", tagcodec.ListContentType)

	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGetTag_400_BadID(t *testing.T) {
	rec := serve(&mockTagServicer{}, httptest.NewRequest(http.MethodGet, "/tags/not-a-uuid", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_parameter", decodeError(t, rec).Code)
}

func TestGetTag_404(t *testing.T) {
	svc := &mockTagServicer{
		get: func(context.Context, uuid.UUID) (domain.TagEntry, error) {
			return domain.TagEntry{}, fmt.Errorf("service.TagService.Get: %w", domain.ErrNotFound)
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags/"+uuid.NewString(), nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "not_found", detail.Code)
	assert.Equal(t, "tag not found", detail.Message)
}

// ---- GET /tags/lookup ------------------------------------------------------

func TestLookupTag_200(t *testing.T) {
	var captured string
	svc := &mockTagServicer{
		getByName: func(_ context.Context, name string) (domain.TagEntry, error) {
			captured = name
			return entryFixture(domain.NewCatalogTag("Slice of Life")), nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/tags/lookup?name=slice+of+life", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slice of life", captured)
}

func TestLookupTag_400_MissingName(t *testing.T) {
	rec := serve(&mockTagServicer{}, httptest.NewRequest(http.MethodGet, "/tags/lookup", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- DELETE /tags/{id} -----------------------------------------------------

func TestDeleteTag_204(t *testing.T) {
	id := uuid.New()
	var captured uuid.UUID
	svc := &mockTagServicer{
		delete: func(_ context.Context, got uuid.UUID) error {
			captured = got
			return nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodDelete, "/tags/"+id.String(), nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, captured)
	assert.Zero(t, rec.Body.Len())
}

func TestDeleteTag_404(t *testing.T) {
	svc := &mockTagServicer{
		delete: func(context.Context, uuid.UUID) error { return domain.ErrNotFound },
	}

	rec := serve(svc, httptest.NewRequest(http.MethodDelete, "/tags/"+uuid.NewString(), nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}
