// Package handler implements the HTTP handlers for the catalog tag API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, tag.go, export.go) but share the same Server struct so they can
// access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/catalog-tags/internal/domain"
)

// TagServicer defines the business operations the tag handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TagServicer interface {
	Create(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error)
	Get(ctx context.Context, id uuid.UUID) (domain.TagEntry, error)
	GetByName(ctx context.Context, name string) (domain.TagEntry, error)
	List(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) (domain.Page[domain.TagEntry], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Exporter produces the full catalog for GET /tags/export.
type Exporter interface {
	Export(ctx context.Context, f domain.ContentFilter) ([]domain.TagEntry, error)
}

// Server serves every API endpoint.
// Wire it in main.go by mounting Routes() on the top-level router.
type Server struct {
	tags   TagServicer
	export Exporter
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(tags TagServicer, export Exporter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{tags: tags, export: export, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a router with every endpoint registered.
// Middleware is left to the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.ListTags)
		r.Post("/", s.CreateTag)
		r.Get("/lookup", s.LookupTag)
		r.Get("/export", s.GetExport)
		r.Get("/{id}", s.GetTag)
		r.Delete("/{id}", s.DeleteTag)
	})
	return r
}
