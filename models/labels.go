package models

// schema: com.atproto.label.defs#selfLabels

// SelfLabels is the author-applied content warning set on a post. Shared
// across all entries of a thread submission.
type SelfLabels struct {
	LexiconTypeID string       `json:"$type,omitempty" cborgen:"$type,const=com.atproto.label.defs#selfLabels"`
	Values        []*SelfLabel `json:"values" cborgen:"values"`
}

type SelfLabel struct {
	Val string `json:"val" cborgen:"val"`
}
