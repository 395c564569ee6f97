package domain

import (
	"time"

	"github.com/google/uuid"
)

// TagSchemaVersion identifies the field layout of CatalogTag in every
// encoded form. Bump it only when the layout changes; decoders compare the
// embedded marker against it.
const TagSchemaVersion = 1

// CatalogTag is a named label attached to catalog media, optionally marked
// as adult or spoiler content.
//
// A CatalogTag is immutable: fields are set once by NewCatalogTag and are
// only readable through accessors. The struct is comparable, so == is
// field-wise equality.
type CatalogTag struct {
	name           string
	description    string
	hasDescription bool
	adult          bool
	spoiler        bool
}

// TagOption sets an optional field while a CatalogTag is being constructed.
type TagOption func(*CatalogTag)

// WithDescription sets the human-readable description.
// An empty string is a present description, distinct from none at all.
func WithDescription(description string) TagOption {
	return func(t *CatalogTag) {
		t.description = description
		t.hasDescription = true
	}
}

// WithAdult marks the tag as adult content.
func WithAdult(adult bool) TagOption {
	return func(t *CatalogTag) { t.adult = adult }
}

// WithSpoiler marks the tag as a spoiler.
func WithSpoiler(spoiler bool) TagOption {
	return func(t *CatalogTag) { t.spoiler = spoiler }
}

// NewCatalogTag builds a tag. Name is not validated; the empty string is a
// valid name. Without options the description is absent and both flags are
// false.
func NewCatalogTag(name string, opts ...TagOption) CatalogTag {
	t := CatalogTag{name: name}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Name returns the tag label.
func (t CatalogTag) Name() string { return t.name }

// Description returns the description and whether one was set.
func (t CatalogTag) Description() (string, bool) { return t.description, t.hasDescription }

// DescriptionPtr returns the description as a pointer, nil when absent.
// The pointer refers to a copy; writing through it does not change t.
func (t CatalogTag) DescriptionPtr() *string {
	if !t.hasDescription {
		return nil
	}
	d := t.description
	return &d
}

// IsAdult reports whether the tag marks adult content.
func (t CatalogTag) IsAdult() bool { return t.adult }

// IsSpoiler reports whether the tag marks a spoiler.
func (t CatalogTag) IsSpoiler() bool { return t.spoiler }

// Equal reports whether t and other hold the same four field values.
func (t CatalogTag) Equal(other CatalogTag) bool { return t == other }

// DescriptionOption returns WithDescription(*d) for a non-nil d and a no-op
// option otherwise. It lets callers holding a nullable description build a
// tag without branching.
func DescriptionOption(d *string) TagOption {
	if d == nil {
		return func(*CatalogTag) {}
	}
	return WithDescription(*d)
}

// TagEntry is a CatalogTag stored in the tag catalog.
// ID and CreatedAt are assigned by the database.
type TagEntry struct {
	ID        uuid.UUID
	Tag       CatalogTag
	CreatedAt time.Time
}
