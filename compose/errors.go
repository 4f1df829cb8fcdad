package compose

import (
	"errors"
	"fmt"

	"github.com/bluesky-social/quill/models"
)

var (
	// ErrNoPostingService means no posting backend is configured; the
	// attempted submission fails fast and is not retried here.
	ErrNoPostingService = errors.New("no posting service configured")

	// ErrNoUploadService means an embed needed a blob upload but no
	// upload backend is configured.
	ErrNoUploadService = errors.New("no blob upload service configured")

	// ErrAlreadyPosting rejects re-entrant submission while one is in
	// flight. The attempt is rejected, never queued.
	ErrAlreadyPosting = errors.New("a submission is already in flight")

	// ErrEmptyThread means every entry was empty after filtering; nothing
	// was posted.
	ErrEmptyThread = errors.New("no entries with content to post")

	// ErrNoContent blocks single-post submission of an empty buffer.
	ErrNoContent = errors.New("post has no content")

	// ErrOverLimit blocks submission of text over the character limit.
	ErrOverLimit = errors.New("post is over the character limit")

	// ErrTooManyImages rejects adding an image past the embed cap.
	ErrTooManyImages = errors.New("image limit reached")

	// ErrMediaNotReady means an embed was assembled while a media item
	// was still loading.
	ErrMediaNotReady = errors.New("media item is still loading")
)

// Upstream error classification. Service implementations wrap their
// failures with one of these so callers can distinguish a bad session
// from a bad request from a flaky network.
var (
	ErrAuth      = errors.New("authentication failed")
	ErrInvalid   = errors.New("request rejected as invalid")
	ErrTransient = errors.New("transient upstream failure")
)

// ThreadPostError reports a thread submission that failed partway.
// Already-created posts are not rolled back; Created holds their refs so
// the partial outcome stays visible to the caller.
type ThreadPostError struct {
	EntryIndex int
	Created    []*models.StrongRef
	Err        error
}

func (e *ThreadPostError) Error() string {
	return fmt.Sprintf("posting thread entry %d (after %d created): %s", e.EntryIndex, len(e.Created), e.Err)
}

func (e *ThreadPostError) Unwrap() error {
	return e.Err
}
