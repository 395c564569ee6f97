package tagcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/pkordes/catalog-tags/internal/domain"
)

// ListContentType is the media type of a binary-encoded tag list.
const ListContentType = "application/vnd.catalog-tag-list"

var listMagic = [2]byte{'C', 'L'}

// EncodeList returns the binary form of tags: a header, the element count,
// then each tag as a length-prefixed Encode payload.
func EncodeList(tags []domain.CatalogTag) []byte {
	b := append([]byte(nil), listMagic[:]...)
	b = binary.AppendUvarint(b, domain.TagSchemaVersion)
	b = binary.AppendUvarint(b, uint64(len(tags)))
	for _, t := range tags {
		b = appendString(b, string(Encode(t)))
	}
	return b
}

// DecodeList parses a payload produced by EncodeList.
// An empty list decodes to a non-nil empty slice.
func DecodeList(data []byte) ([]domain.CatalogTag, error) {
	r := reader{buf: data}
	if err := r.header(listMagic); err != nil {
		return nil, fmt.Errorf("tagcodec.DecodeList: %w", err)
	}
	n, err := r.uvarint("count")
	if err != nil {
		return nil, fmt.Errorf("tagcodec.DecodeList: %w", err)
	}
	// every element takes at least one byte, so a larger count is a lie
	if n > uint64(r.len()) {
		return nil, fmt.Errorf("tagcodec.DecodeList: %w: count %d exceeds payload", domain.ErrDeserialization, n)
	}

	tags := make([]domain.CatalogTag, 0, n)
	for i := uint64(0); i < n; i++ {
		size, err := r.uvarint("element length")
		if err != nil {
			return nil, fmt.Errorf("tagcodec.DecodeList: element %d: %w", i, err)
		}
		elem, err := r.bytes(size, "element")
		if err != nil {
			return nil, fmt.Errorf("tagcodec.DecodeList: element %d: %w", i, err)
		}
		er := reader{buf: elem}
		t, err := er.tag()
		if err != nil {
			return nil, fmt.Errorf("tagcodec.DecodeList: element %d: %w", i, err)
		}
		tags = append(tags, t)
	}
	if r.len() != 0 {
		return nil, fmt.Errorf("tagcodec.DecodeList: %w: %d trailing bytes", domain.ErrDeserialization, r.len())
	}
	return tags, nil
}
