// Package tagcodec converts domain.CatalogTag values to and from their
// versioned wire forms: a compact binary layout for transport between
// processes and a JSON document for the HTTP API.
//
// Both encodings are deterministic, embed domain.TagSchemaVersion, and
// report failures by wrapping domain.ErrDeserialization or
// domain.ErrUnsupportedVersion.
package tagcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/pkordes/catalog-tags/internal/domain"
)

// ContentType is the media type of a binary-encoded tag.
const ContentType = "application/vnd.catalog-tag"

// Binary layout:
//
//	magic   'C' 'T'
//	version uvarint
//	fields  { number uvarint ; payload } in ascending field order
//
// Strings are a uvarint length followed by the raw bytes; bools are one byte.
var tagMagic = [2]byte{'C', 'T'}

const (
	fieldName        = 1
	fieldDescription = 2
	fieldAdult       = 3
	fieldSpoiler     = 4
)

// Encode returns the binary form of t.
func Encode(t domain.CatalogTag) []byte {
	return appendTag(nil, t)
}

func appendTag(b []byte, t domain.CatalogTag) []byte {
	b = append(b, tagMagic[:]...)
	b = binary.AppendUvarint(b, domain.TagSchemaVersion)

	b = binary.AppendUvarint(b, fieldName)
	b = appendString(b, t.Name())

	if d, ok := t.Description(); ok {
		b = binary.AppendUvarint(b, fieldDescription)
		b = appendString(b, d)
	}

	b = binary.AppendUvarint(b, fieldAdult)
	b = appendBool(b, t.IsAdult())

	b = binary.AppendUvarint(b, fieldSpoiler)
	b = appendBool(b, t.IsSpoiler())
	return b
}

// Decode parses a payload produced by Encode.
func Decode(data []byte) (domain.CatalogTag, error) {
	r := reader{buf: data}
	t, err := r.tag()
	if err != nil {
		return domain.CatalogTag{}, fmt.Errorf("tagcodec.Decode: %w", err)
	}
	return t, nil
}

func appendString(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// reader walks a byte slice, turning every short read into ErrDeserialization.
type reader struct {
	buf []byte
	off int
}

func (r *reader) len() int { return len(r.buf) - r.off }

func (r *reader) uvarint(what string) (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad %s varint at offset %d", domain.ErrDeserialization, what, r.off)
	}
	r.off += n
	return v, nil
}

func (r *reader) bytes(n uint64, what string) ([]byte, error) {
	if n > uint64(r.len()) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d left", domain.ErrDeserialization, what, n, r.len())
	}
	b := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

func (r *reader) string(what string) (string, error) {
	n, err := r.uvarint(what + " length")
	if err != nil {
		return "", err
	}
	b, err := r.bytes(n, what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) bool(what string) (bool, error) {
	b, err := r.bytes(1, what)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s byte %#x is not a bool", domain.ErrDeserialization, what, b[0])
}

// header consumes the magic and version marker.
func (r *reader) header(magic [2]byte) error {
	m, err := r.bytes(2, "magic")
	if err != nil {
		return err
	}
	if m[0] != magic[0] || m[1] != magic[1] {
		return fmt.Errorf("%w: bad magic %q", domain.ErrDeserialization, m)
	}
	v, err := r.uvarint("version")
	if err != nil {
		return err
	}
	return checkVersion(v)
}

// tag consumes the rest of the buffer as one tag payload.
func (r *reader) tag() (domain.CatalogTag, error) {
	if err := r.header(tagMagic); err != nil {
		return domain.CatalogTag{}, err
	}

	var (
		name    string
		hasName bool
		opts    []domain.TagOption
		last    uint64
	)
	for r.len() > 0 {
		field, err := r.uvarint("field number")
		if err != nil {
			return domain.CatalogTag{}, err
		}
		if field <= last {
			return domain.CatalogTag{}, fmt.Errorf("%w: field %d after field %d", domain.ErrDeserialization, field, last)
		}
		last = field

		switch field {
		case fieldName:
			if name, err = r.string("name"); err != nil {
				return domain.CatalogTag{}, err
			}
			hasName = true
		case fieldDescription:
			d, err := r.string("description")
			if err != nil {
				return domain.CatalogTag{}, err
			}
			opts = append(opts, domain.WithDescription(d))
		case fieldAdult:
			v, err := r.bool("isAdult")
			if err != nil {
				return domain.CatalogTag{}, err
			}
			opts = append(opts, domain.WithAdult(v))
		case fieldSpoiler:
			v, err := r.bool("isSpoiler")
			if err != nil {
				return domain.CatalogTag{}, err
			}
			opts = append(opts, domain.WithSpoiler(v))
		default:
			return domain.CatalogTag{}, fmt.Errorf("%w: unknown field %d", domain.ErrDeserialization, field)
		}
	}
	if !hasName {
		return domain.CatalogTag{}, fmt.Errorf("%w: name is missing", domain.ErrDeserialization)
	}
	return domain.NewCatalogTag(name, opts...), nil
}

func checkVersion(v uint64) error {
	switch {
	case v == 0:
		return fmt.Errorf("%w: version 0", domain.ErrDeserialization)
	case v > domain.TagSchemaVersion:
		return fmt.Errorf("%w: got %d, support up to %d", domain.ErrUnsupportedVersion, v, domain.TagSchemaVersion)
	}
	return nil
}
