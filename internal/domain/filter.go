package domain

// ContentFilter describes which sensitive tags a viewer has opted in to.
// The zero value hides both adult and spoiler tags.
type ContentFilter struct {
	ShowAdult    bool
	ShowSpoilers bool
}

// ShowAll is a filter that hides nothing.
var ShowAll = ContentFilter{ShowAdult: true, ShowSpoilers: true}

// Allows reports whether tag may be shown under f.
func (f ContentFilter) Allows(tag CatalogTag) bool {
	if tag.IsAdult() && !f.ShowAdult {
		return false
	}
	if tag.IsSpoiler() && !f.ShowSpoilers {
		return false
	}
	return true
}

// Apply returns the tags f allows, in their original order.
// The result is never nil.
func (f ContentFilter) Apply(tags []CatalogTag) []CatalogTag {
	out := make([]CatalogTag, 0, len(tags))
	for _, t := range tags {
		if f.Allows(t) {
			out = append(out, t)
		}
	}
	return out
}

// HidesMedia reports whether media carrying tags must be hidden entirely.
// A single adult tag hides the media when adult content is not shown;
// spoiler tags only ever hide themselves.
func (f ContentFilter) HidesMedia(tags []CatalogTag) bool {
	if f.ShowAdult {
		return false
	}
	for _, t := range tags {
		if t.IsAdult() {
			return true
		}
	}
	return false
}
