package compose

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/bluesky-social/quill/models"
)

type fakePoster struct {
	mu     sync.Mutex
	calls  []PostArgs
	failAt int // fail the Nth call (0-based); -1 never fails
}

func newFakePoster() *fakePoster {
	return &fakePoster{failAt: -1}
}

func (f *fakePoster) CreatePost(ctx context.Context, args PostArgs) (*models.StrongRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.calls)
	f.calls = append(f.calls, args)
	if f.failAt == i {
		return nil, fmt.Errorf("%w: pds returned 502", ErrTransient)
	}
	return &models.StrongRef{
		Uri: fmt.Sprintf("at://did:plc:me/app.bsky.feed.post/3k%d", i+1),
		Cid: fmt.Sprintf("bafyfake%d", i+1),
	}, nil
}

func (f *fakePoster) args() []PostArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PostArgs(nil), f.calls...)
}

type fakeUploader struct {
	mu       sync.Mutex
	uploads  []string // mime types, in call order
	failNext bool
}

func (f *fakeUploader) UploadBlob(ctx context.Context, data []byte, mimeType string) (*models.LexBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, fmt.Errorf("%w: upload refused", ErrTransient)
	}
	f.uploads = append(f.uploads, mimeType)
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return nil, err
	}
	return &models.LexBlob{
		Ref:      models.LexLink(cid.NewCidV1(cid.Raw, sum)),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

type fakeDirectory struct{}

func (fakeDirectory) SearchActorsTypeahead(ctx context.Context, query string, limit int) ([]*models.ProfileSummary, error) {
	return []*models.ProfileSummary{{
		Did:    "did:plc:" + query,
		Handle: query + ".bsky.social",
	}}, nil
}

type fakeCardFetcher struct {
	mu    sync.Mutex
	cards map[string]*models.ExternalCard
}

func (f *fakeCardFetcher) FetchCard(ctx context.Context, url string) (*models.ExternalCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cards[url]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no card for %s", url)
}

func newTestSession(p PostingService, u BlobUploadService) *Session {
	return NewSession(p, u, nil, nil)
}
