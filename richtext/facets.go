package richtext

import (
	"github.com/bluesky-social/quill/models"
)

// BuildFacets converts scanner matches into wire facets. Mentions are
// looked up in resolved, keyed exactly as typed; a handle with no entry is
// dropped without error and renders as plain text. URLs and tags always
// produce a facet.
//
// Output is grouped by category in the order mentions, links, tags, and in
// textual order within each category. The grouping is fixed regardless of
// how the categories interleave in the text.
//
// Facets are rebuilt wholesale on every text change; they are never
// patched incrementally, so a facet's offsets are always consistent with
// the exact text it was built from.
func BuildFacets(text string, resolved map[string]*models.ProfileSummary) []*models.RichtextFacet {
	var facets []*models.RichtextFacet

	for _, m := range ScanMentions(text) {
		profile, ok := resolved[m.Text]
		if !ok {
			continue
		}
		facets = append(facets, &models.RichtextFacet{
			Index: &models.RichtextFacet_ByteSlice{
				ByteStart: int64(m.Start),
				ByteEnd:   int64(m.End),
			},
			Features: []*models.RichtextFacet_Features_Elem{{
				RichtextFacet_Mention: &models.RichtextFacet_Mention{Did: profile.Did},
			}},
		})
	}

	for _, m := range ScanURLs(text) {
		facets = append(facets, &models.RichtextFacet{
			Index: &models.RichtextFacet_ByteSlice{
				ByteStart: int64(m.Start),
				ByteEnd:   int64(m.End),
			},
			Features: []*models.RichtextFacet_Features_Elem{{
				RichtextFacet_Link: &models.RichtextFacet_Link{Uri: m.Text},
			}},
		})
	}

	for _, m := range ScanTags(text) {
		facets = append(facets, &models.RichtextFacet{
			Index: &models.RichtextFacet_ByteSlice{
				ByteStart: int64(m.Start),
				ByteEnd:   int64(m.End),
			},
			Features: []*models.RichtextFacet_Features_Elem{{
				RichtextFacet_Tag: &models.RichtextFacet_Tag{Tag: m.Text},
			}},
		})
	}

	return facets
}
