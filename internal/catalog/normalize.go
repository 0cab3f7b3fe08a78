package catalog

import (
	"fmt"
	"strings"

	"github.com/LavishGent/breedbase/internal/types"
)

const (
	// DefaultImageCDN formats a reference image id into an image URL.
	DefaultImageCDN = "https://cdn2.thedogapi.com/images/%s.jpg"
	// PlaceholderImage is served for breeds without a reference image.
	PlaceholderImage = "/placeholder.svg"

	NotSpecified  = "Not specified"
	NoDescription = "No description available"
)

// Normalize maps a raw breed onto the canonical record using the default CDN.
func Normalize(raw types.BreedRaw) types.EnrichedBreed {
	return NormalizeWithCDN(raw, DefaultImageCDN)
}

// NormalizeWithCDN maps a raw breed onto the canonical record. Absent fields get
// placeholders so every rendered field is non-empty; it never fails.
func NormalizeWithCDN(raw types.BreedRaw, cdn string) types.EnrichedBreed {
	if cdn == "" {
		cdn = DefaultImageCDN
	}

	image := PlaceholderImage
	if ref := strings.TrimSpace(raw.ReferenceImageID); ref != "" {
		image = fmt.Sprintf(cdn, ref)
	}

	return types.EnrichedBreed{
		ID:           raw.ID,
		Name:         strings.TrimSpace(raw.Name),
		Description:  firstNonEmpty(raw.Description, raw.Temperament, NoDescription),
		Temperament:  orNotSpecified(raw.Temperament),
		LifeSpan:     orNotSpecified(raw.LifeSpan),
		Origin:       orNotSpecified(raw.Origin),
		Weight:       orNotSpecified(metric(raw.Weight)),
		Height:       orNotSpecified(metric(raw.Height)),
		BredFor:      orNotSpecified(raw.BredFor),
		BreedGroup:   orNotSpecified(raw.BreedGroup),
		ImageURL:     image,
		WikipediaURL: raw.WikipediaURL,
	}
}

// Persistable reports whether b may be written to the cache.
func Persistable(b types.EnrichedBreed) bool {
	return b.Name != "" && b.ImageURL != ""
}

// Filter keeps the persistable breeds, preserving order.
func Filter(breeds []types.EnrichedBreed) []types.EnrichedBreed {
	out := make([]types.EnrichedBreed, 0, len(breeds))
	for _, b := range breeds {
		if Persistable(b) {
			out = append(out, b)
		}
	}
	return out
}

func metric(m *types.Measure) string {
	if m == nil {
		return ""
	}
	return m.Metric
}

func orNotSpecified(s string) string {
	return firstNonEmpty(s, NotSpecified)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
