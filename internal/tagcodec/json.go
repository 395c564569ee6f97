package tagcodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pkordes/catalog-tags/internal/domain"
)

// JSONContentType is the media type of a JSON tag document.
const JSONContentType = "application/json"

// document is the JSON form of a tag. Field order is fixed by the struct,
// so encoding is deterministic. Description has no omitempty: an absent
// description is written as null.
type document struct {
	V           int     `json:"v"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsAdult     bool    `json:"isAdult"`
	IsSpoiler   bool    `json:"isSpoiler"`
}

// incoming mirrors document with pointers so missing and null values can be
// told apart from zero values.
type incoming struct {
	V           *int64  `json:"v"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsAdult     *bool   `json:"isAdult"`
	IsSpoiler   *bool   `json:"isSpoiler"`
}

func toDocument(t domain.CatalogTag) document {
	return document{
		V:           domain.TagSchemaVersion,
		Name:        t.Name(),
		Description: t.DescriptionPtr(),
		IsAdult:     t.IsAdult(),
		IsSpoiler:   t.IsSpoiler(),
	}
}

// EncodeJSON returns the JSON document for t, e.g.
//
//	{"v":1,"name":"Isekai","description":null,"isAdult":false,"isSpoiler":true}
func EncodeJSON(t domain.CatalogTag) ([]byte, error) {
	b, err := json.Marshal(toDocument(t))
	if err != nil {
		return nil, fmt.Errorf("tagcodec.EncodeJSON: %w", err)
	}
	return b, nil
}

// DecodeJSON parses a document produced by EncodeJSON.
// The version marker is checked before the body so a newer document is
// reported as ErrUnsupportedVersion even when it carries unknown keys.
func DecodeJSON(data []byte) (domain.CatalogTag, error) {
	t, err := decodeDocument(data)
	if err != nil {
		return domain.CatalogTag{}, fmt.Errorf("tagcodec.DecodeJSON: %w", err)
	}
	return t, nil
}

func decodeDocument(data []byte) (domain.CatalogTag, error) {
	var head struct {
		V *int64 `json:"v"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.CatalogTag{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	if head.V == nil {
		return domain.CatalogTag{}, fmt.Errorf("%w: v is missing", domain.ErrDeserialization)
	}
	if *head.V < 0 {
		return domain.CatalogTag{}, fmt.Errorf("%w: negative version %d", domain.ErrDeserialization, *head.V)
	}
	if err := checkVersion(uint64(*head.V)); err != nil {
		return domain.CatalogTag{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in incoming
	if err := dec.Decode(&in); err != nil {
		return domain.CatalogTag{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.CatalogTag{}, fmt.Errorf("%w: trailing data after document", domain.ErrDeserialization)
	}
	if in.Name == nil {
		return domain.CatalogTag{}, fmt.Errorf("%w: name is missing", domain.ErrDeserialization)
	}

	opts := []domain.TagOption{domain.DescriptionOption(in.Description)}
	if in.IsAdult != nil {
		opts = append(opts, domain.WithAdult(*in.IsAdult))
	}
	if in.IsSpoiler != nil {
		opts = append(opts, domain.WithSpoiler(*in.IsSpoiler))
	}
	return domain.NewCatalogTag(*in.Name, opts...), nil
}

// EncodeJSONList returns a JSON array of tag documents. An empty or nil
// slice encodes as [].
func EncodeJSONList(tags []domain.CatalogTag) ([]byte, error) {
	docs := make([]document, len(tags))
	for i, t := range tags {
		docs[i] = toDocument(t)
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("tagcodec.EncodeJSONList: %w", err)
	}
	return b, nil
}

// DecodeJSONList parses a JSON array of tag documents.
func DecodeJSONList(data []byte) ([]domain.CatalogTag, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tagcodec.DecodeJSONList: %w: %v", domain.ErrDeserialization, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("tagcodec.DecodeJSONList: %w: not an array", domain.ErrDeserialization)
	}
	tags := make([]domain.CatalogTag, 0, len(raw))
	for i, r := range raw {
		t, err := decodeDocument(r)
		if err != nil {
			return nil, fmt.Errorf("tagcodec.DecodeJSONList: element %d: %w", i, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}
