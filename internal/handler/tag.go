package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/tagcodec"
)

// TagResponse is the JSON form of a stored tag.
type TagResponse struct {
	ID          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	IsAdult     bool               `json:"isAdult"`
	IsSpoiler   bool               `json:"isSpoiler"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListTagsResponse is the body of GET /tags.
type ListTagsResponse struct {
	Data       []TagResponse `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// listTagsParams are the query parameters of GET /tags.
type listTagsParams struct {
	Q        *string
	Page     *int
	Limit    *int
	Adult    *bool
	Spoilers *bool
}

// ListTags handles GET /tags.
// ?q= filters by name prefix; ?adult=true and ?spoilers=true opt in to
// sensitive tags, which are hidden by default. A client that accepts
// tagcodec.ListContentType gets the page's tags in binary form.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	var params listTagsParams
	query := r.URL.Query()
	for _, b := range []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"page", &params.Page},
		{"limit", &params.Limit},
		{"adult", &params.Adult},
		{"spoilers", &params.Spoilers},
	} {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("invalid %s parameter", b.name))
			return
		}
	}

	filter := domain.ContentFilter{
		ShowAdult:    derefBool(params.Adult),
		ShowSpoilers: derefBool(params.Spoilers),
	}
	page, err := s.tags.List(r.Context(), derefString(params.Q), filter, domain.NewPaginationParams(params.Page, params.Limit))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	if accepts(r, tagcodec.ListContentType) {
		writeBinary(w, tagcodec.ListContentType, tagcodec.EncodeList(tagsOf(page.Items)))
		return
	}

	data := make([]TagResponse, len(page.Items))
	for i, e := range page.Items {
		data[i] = tagToResponse(e)
	}
	s.writeJSON(w, r, http.StatusOK, ListTagsResponse{
		Data: data,
		Pagination: Pagination{
			Page:       page.Params.Page,
			Limit:      page.Params.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	})
}

// CreateTag handles POST /tags.
// The body is a tag document in either encoding, picked by Content-Type:
// tagcodec.ContentType for binary, application/json (or none) for JSON.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	mediaType := tagcodec.JSONContentType
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			s.writeErrorBody(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type", "malformed Content-Type")
			return
		}
		mediaType = mt
	}

	decode := tagcodec.DecodeJSON
	switch mediaType {
	case tagcodec.JSONContentType:
	case tagcodec.ContentType:
		decode = tagcodec.Decode
	default:
		s.writeErrorBody(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type",
			fmt.Sprintf("Content-Type must be %s or %s", tagcodec.JSONContentType, tagcodec.ContentType))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorBody(w, r, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeErrorBody(w, r, http.StatusBadRequest, "malformed_body", "could not read request body")
		return
	}

	tag, err := decode(body)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	entry, err := s.tags.Create(r.Context(), tag)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	w.Header().Set("Location", "/tags/"+entry.ID.String())
	s.writeJSON(w, r, http.StatusCreated, tagToResponse(entry))
}

// GetTag handles GET /tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	var id openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "id must be a UUID")
		return
	}

	entry, err := s.tags.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "tag not found")
		return
	}
	s.writeTag(w, r, entry)
}

// LookupTag handles GET /tags/lookup?name=, matching the name without
// regard to case.
func (s *Server) LookupTag(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindQueryParameter("form", true, true, "name", r.URL.Query(), &name); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "name is required")
		return
	}

	entry, err := s.tags.GetByName(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err, "tag not found")
		return
	}
	s.writeTag(w, r, entry)
}

// DeleteTag handles DELETE /tags/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	var id openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "id must be a UUID")
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "tag not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeTag sends a single tag, binary when the client accepts
// tagcodec.ContentType and JSON otherwise.
func (s *Server) writeTag(w http.ResponseWriter, r *http.Request, entry domain.TagEntry) {
	if accepts(r, tagcodec.ContentType) {
		writeBinary(w, tagcodec.ContentType, tagcodec.Encode(entry.Tag))
		return
	}
	s.writeJSON(w, r, http.StatusOK, tagToResponse(entry))
}

func writeBinary(w http.ResponseWriter, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// accepts reports whether the Accept header lists mediaType exactly.
// Wildcards are not honoured: JSON stays the default.
func accepts(r *http.Request, mediaType string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == mediaType {
			return true
		}
	}
	return false
}

// tagToResponse converts a domain.TagEntry to its JSON response form.
func tagToResponse(e domain.TagEntry) TagResponse {
	return TagResponse{
		ID:          e.ID,
		Name:        e.Tag.Name(),
		Description: e.Tag.DescriptionPtr(),
		IsAdult:     e.Tag.IsAdult(),
		IsSpoiler:   e.Tag.IsSpoiler(),
		CreatedAt:   e.CreatedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
