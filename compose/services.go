package compose

import (
	"context"

	"github.com/bluesky-social/quill/models"
)

// PostArgs is everything the posting service needs to create one post
// record (and, for a gated thread root, its threadgate record).
type PostArgs struct {
	Text   string
	Langs  []string
	Facets []*models.RichtextFacet
	// Tags are outline hashtags, applied in addition to any #tag facets
	// in the text.
	Tags   []string
	Reply  *models.FeedPost_ReplyRef
	Labels *models.SelfLabels
	Embed  *models.FeedPost_Embed
	// Threadgate is non-nil only when the author overrode the
	// allow-everybody default, and only on a thread's first post.
	Threadgate *ThreadgateSpec
}

// ThreadgateSpec is an overridden reply policy. An empty Allow list means
// nobody may reply.
type ThreadgateSpec struct {
	Allow []*models.FeedThreadgate_Allow_Elem
}

// PostingService creates post records. CreatePost must return a typed
// error (ErrAuth / ErrInvalid / ErrTransient wrapped) on failure, never a
// nil ref with nil error: the returned StrongRef is the acknowledgment
// the thread pipeline needs before it may build the next entry's reply
// link.
type PostingService interface {
	CreatePost(ctx context.Context, args PostArgs) (*models.StrongRef, error)
}

// BlobUploadService uploads image, video, and thumbnail bytes. Chunking
// for large video uploads is the implementation's concern.
type BlobUploadService interface {
	UploadBlob(ctx context.Context, data []byte, mimeType string) (*models.LexBlob, error)
}

// DraftStore persists draft snapshots. Implementations store media
// metadata only (local file references, never raw bytes) and drop fetched
// card payloads; both are re-acquired on restore.
type DraftStore interface {
	SaveDraft(ctx context.Context, snap *DraftSnapshot) error
	LoadDraft(ctx context.Context) (*DraftSnapshot, error)
	ClearDraft(ctx context.Context) error
}
