package models

// schema: app.bsky.actor.defs#profileViewBasic (trimmed)

// ProfileSummary is the slice of a directory profile the composer needs:
// enough to render a mention suggestion and to mint a mention facet.
type ProfileSummary struct {
	Did         string  `json:"did" cborgen:"did"`
	Handle      string  `json:"handle" cborgen:"handle"`
	DisplayName *string `json:"displayName,omitempty" cborgen:"displayName,omitempty"`
	Avatar      *string `json:"avatar,omitempty" cborgen:"avatar,omitempty"`
}
