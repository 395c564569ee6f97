package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/catalog-tags/internal/domain"
)

// TagRepo defines the persistence operations for the tag catalog.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TagRepo interface {
	// Create inserts a tag and returns the stored entry with its generated
	// id and created_at. Returns domain.ErrConflict if a tag with the same
	// name (case-insensitive) already exists.
	Create(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error)

	// GetByID retrieves a single tag by its UUID primary key.
	// Returns domain.ErrNotFound if no tag with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TagEntry, error)

	// GetByName retrieves a tag by name, ignoring case.
	// Returns domain.ErrNotFound if no tag has that name.
	GetByName(ctx context.Context, name string) (domain.TagEntry, error)

	// ListPaged returns one page of tags whose name starts with prefix
	// (case-insensitive) and which the filter allows, ordered by name,
	// together with the total number of matching tags.
	ListPaged(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) ([]domain.TagEntry, int64, error)

	// Delete removes a tag by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

const tagColumns = `id, name, description, is_adult, is_spoiler, created_at`

// Create inserts a new tag row.
func (r *pgTagRepo) Create(ctx context.Context, tag domain.CatalogTag) (domain.TagEntry, error) {
	const q = `
		INSERT INTO catalog_tags (name, description, is_adult, is_spoiler)
		VALUES (@name, @description, @is_adult, @is_spoiler)
		RETURNING ` + tagColumns

	args := pgx.NamedArgs{
		"name":        tag.Name(),
		"description": tag.DescriptionPtr(), // nil becomes NULL
		"is_adult":    tag.IsAdult(),
		"is_spoiler":  tag.IsSpoiler(),
	}

	entry, err := scanTag(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.TagEntry{}, fmt.Errorf("repo.TagRepo.Create: %w: tag %q already exists", domain.ErrConflict, tag.Name())
		}
		return domain.TagEntry{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return entry, nil
}

// GetByID retrieves a tag by primary key.
func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagEntry, error) {
	const q = `SELECT ` + tagColumns + ` FROM catalog_tags WHERE id = @id`

	entry, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TagEntry{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return entry, nil
}

// GetByName retrieves a tag through the lower(name) unique index.
func (r *pgTagRepo) GetByName(ctx context.Context, name string) (domain.TagEntry, error) {
	const q = `SELECT ` + tagColumns + ` FROM catalog_tags WHERE lower(name) = lower(@name)`

	entry, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.TagEntry{}, fmt.Errorf("repo.TagRepo.GetByName: %w", err)
	}
	return entry, nil
}

// ListPaged runs a count query and a page query over the same predicate.
// Hidden adult or spoiler tags are excluded in SQL so the total matches
// what the caller is allowed to see.
func (r *pgTagRepo) ListPaged(ctx context.Context, prefix string, f domain.ContentFilter, p domain.PaginationParams) ([]domain.TagEntry, int64, error) {
	const where = `
		WHERE lower(name) LIKE lower(@prefix) || '%'
		  AND (@show_adult OR NOT is_adult)
		  AND (@show_spoilers OR NOT is_spoiler)`

	args := pgx.NamedArgs{
		"prefix":        escapeLike(prefix),
		"show_adult":    f.ShowAdult,
		"show_spoilers": f.ShowSpoilers,
		"limit":         p.Limit,
		"offset":        p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM catalog_tags`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+tagColumns+` FROM catalog_tags`+where+`
		ORDER BY lower(name), id
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	entries := []domain.TagEntry{}
	for rows.Next() {
		entry, err := scanTag(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: scan: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: rows: %w", err)
	}
	return entries, total, nil
}

// Delete removes a tag by primary key.
func (r *pgTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM catalog_tags WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes prefix match literally inside a LIKE pattern.
func escapeLike(prefix string) string {
	return likeEscaper.Replace(prefix)
}

// scanTag maps a single database row into a domain.TagEntry.
// It handles the UUID and nullable description conversions.
func scanTag(s scanner) (domain.TagEntry, error) {
	var (
		e           domain.TagEntry
		id          pgtype.UUID
		name        string
		description pgtype.Text
		adult       bool
		spoiler     bool
	)
	err := s.Scan(&id, &name, &description, &adult, &spoiler, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TagEntry{}, domain.ErrNotFound
		}
		return domain.TagEntry{}, err
	}

	opts := []domain.TagOption{domain.WithAdult(adult), domain.WithSpoiler(spoiler)}
	if description.Valid {
		opts = append(opts, domain.WithDescription(description.String))
	}
	e.ID = uuid.UUID(id.Bytes)
	e.Tag = domain.NewCatalogTag(name, opts...)
	return e, nil
}
