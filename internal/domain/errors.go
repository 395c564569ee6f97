package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// tag does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails catalog
// rules (e.g. blank name, description too long).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a tag with the same name (case-insensitive)
// already exists in the catalog.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDeserialization is returned by decoders when a payload is malformed,
// truncated, or structurally invalid. Handlers should map this to HTTP 400.
var ErrDeserialization = errors.New("deserialization error")

// ErrUnsupportedVersion is returned by decoders when the embedded schema
// version is newer than TagSchemaVersion.
// Handlers should map this to HTTP 415 Unsupported Media Type.
var ErrUnsupportedVersion = errors.New("unsupported schema version")
