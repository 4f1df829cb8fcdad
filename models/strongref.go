package models

// schema: com.atproto.repo.strongRef

// StrongRef pins a record immutably by repo location plus content hash.
// Posting returns one for each created record; reply chains and quote
// embeds are built from these.
type StrongRef struct {
	LexiconTypeID string `json:"$type,omitempty" cborgen:"$type,const=com.atproto.repo.strongRef"`
	Uri           string `json:"uri" cborgen:"uri"`
	Cid           string `json:"cid" cborgen:"cid"`
}
