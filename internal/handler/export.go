package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/catalog-tags/internal/domain"
	"github.com/pkordes/catalog-tags/internal/tagcodec"
)

// csvHeaders defines the column names written as the first row of a CSV export.
var csvHeaders = []string{"id", "name", "description", "is_adult", "is_spoiler", "created_at"}

// ExportFormat selects the body encoding of GET /tags/export.
type ExportFormat string

const (
	ExportJSON   ExportFormat = "json"
	ExportCSV    ExportFormat = "csv"
	ExportBinary ExportFormat = "binary"
)

// GetExport handles GET /tags/export.
// It returns every tag the ?adult= and ?spoilers= flags allow, as a JSON
// array of tag documents (default), CSV with ?format=csv, or a binary tag
// list with ?format=binary.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var (
		format   *string
		adult    *bool
		spoilers *bool
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "format", query, &format); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "invalid format parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "adult", query, &adult); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "invalid adult parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "spoilers", query, &spoilers); err != nil {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "invalid spoilers parameter")
		return
	}

	f := ExportJSON
	if format != nil {
		f = ExportFormat(*format)
	}
	if f != ExportJSON && f != ExportCSV && f != ExportBinary {
		s.writeErrorBody(w, r, http.StatusBadRequest, "invalid_parameter", "format must be json, csv, or binary")
		return
	}

	entries, err := s.export.Export(r.Context(), domain.ContentFilter{
		ShowAdult:    derefBool(adult),
		ShowSpoilers: derefBool(spoilers),
	})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	switch f {
	case ExportCSV:
		writeBinary(w, "text/csv; charset=utf-8", buildCSV(entries))
	case ExportBinary:
		writeBinary(w, tagcodec.ListContentType, tagcodec.EncodeList(tagsOf(entries)))
	default:
		b, err := tagcodec.EncodeJSONList(tagsOf(entries))
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		writeBinary(w, tagcodec.JSONContentType, b)
	}
}

// buildCSV encodes entries as CSV with a header row.
// An absent description and an empty one both become an empty cell.
func buildCSV(entries []domain.TagEntry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Write errors surface through w.Error after Flush; a bytes.Buffer never fails.
	_ = w.Write(csvHeaders)
	for _, e := range entries {
		d, _ := e.Tag.Description()
		_ = w.Write([]string{
			e.ID.String(),
			e.Tag.Name(),
			d,
			strconv.FormatBool(e.Tag.IsAdult()),
			strconv.FormatBool(e.Tag.IsSpoiler()),
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func tagsOf(entries []domain.TagEntry) []domain.CatalogTag {
	tags := make([]domain.CatalogTag, len(entries))
	for i, e := range entries {
		tags[i] = e.Tag
	}
	return tags
}
