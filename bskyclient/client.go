// Package bskyclient implements the composer's service contracts against
// a real PDS over XRPC, plus the cardyb-style link card endpoint. It is
// the default wiring; tests and embedders can substitute their own
// implementations of the compose interfaces.
package bskyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluesky-social/quill/compose"
	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/xrpc"
)

// DefaultCardHost is the public link-card extraction service.
const DefaultCardHost = "https://cardyb.bsky.app"

type Client struct {
	XRPC *xrpc.Client

	// CardHost overrides DefaultCardHost. HTTP is the client used for
	// card/image fetches; defaults to xrpc.RobustHTTPClient.
	CardHost string
	HTTP     *http.Client
	Logger   *slog.Logger
}

var (
	_ compose.PostingService    = (*Client)(nil)
	_ compose.BlobUploadService = (*Client)(nil)
)

func NewClient(xc *xrpc.Client) *Client {
	return &Client{XRPC: xc}
}

type createRecordInput struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Rkey       string `json:"rkey,omitempty"`
	Record     any    `json:"record"`
}

type createRecordOutput struct {
	Uri string `json:"uri"`
	Cid string `json:"cid"`
}

// CreatePost writes the post record and, when a threadgate override is
// present, the matching threadgate record (same rkey as the post). The
// returned StrongRef is the server's acknowledgment; thread submission
// relies on it to build the next reply link.
func (c *Client) CreatePost(ctx context.Context, args compose.PostArgs) (*models.StrongRef, error) {
	if c.XRPC == nil || c.XRPC.Auth == nil {
		return nil, fmt.Errorf("%w: no authenticated session", compose.ErrAuth)
	}

	post := &models.FeedPost{
		LexiconTypeID: "app.bsky.feed.post",
		Text:          args.Text,
		Facets:        args.Facets,
		Langs:         args.Langs,
		Tags:          args.Tags,
		Reply:         args.Reply,
		Embed:         args.Embed,
		Labels:        args.Labels,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	var out createRecordOutput
	err := c.XRPC.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.repo.createRecord", nil, &createRecordInput{
		Repo:       c.XRPC.Auth.Did,
		Collection: "app.bsky.feed.post",
		Record:     post,
	}, &out)
	if err != nil {
		return nil, classify(fmt.Errorf("creating post record: %w", err))
	}
	ref := &models.StrongRef{Uri: out.Uri, Cid: out.Cid}

	if args.Threadgate != nil {
		if err := c.createThreadgate(ctx, ref, args.Threadgate); err != nil {
			// the post exists; surface the gate failure without hiding it
			return ref, classify(err)
		}
	}
	return ref, nil
}

func (c *Client) createThreadgate(ctx context.Context, post *models.StrongRef, gate *compose.ThreadgateSpec) error {
	rkey := post.Uri[strings.LastIndexByte(post.Uri, '/')+1:]
	record := &models.FeedThreadgate{
		LexiconTypeID: "app.bsky.feed.threadgate",
		Post:          post.Uri,
		Allow:         gate.Allow,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	var out createRecordOutput
	err := c.XRPC.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.repo.createRecord", nil, &createRecordInput{
		Repo:       c.XRPC.Auth.Did,
		Collection: "app.bsky.feed.threadgate",
		Rkey:       rkey,
		Record:     record,
	}, &out)
	if err != nil {
		return fmt.Errorf("creating threadgate record: %w", err)
	}
	return nil
}

type typeaheadOutput struct {
	Actors []*models.ProfileSummary `json:"actors"`
}

// SearchActorsTypeahead implements the mention resolver's directory
// contract.
func (c *Client) SearchActorsTypeahead(ctx context.Context, query string, limit int) ([]*models.ProfileSummary, error) {
	var out typeaheadOutput
	err := c.XRPC.Do(ctx, xrpc.Query, "", "app.bsky.actor.searchActorsTypeahead", map[string]interface{}{
		"q":     query,
		"limit": limit,
	}, nil, &out)
	if err != nil {
		return nil, classify(fmt.Errorf("actor typeahead: %w", err))
	}
	return out.Actors, nil
}

type uploadBlobOutput struct {
	Blob *models.LexBlob `json:"blob"`
}

// UploadBlob streams bytes to the PDS. The server side handles chunked
// transfer for large payloads (video); callers just hand over the bytes.
func (c *Client) UploadBlob(ctx context.Context, data []byte, mimeType string) (*models.LexBlob, error) {
	var out uploadBlobOutput
	err := c.XRPC.Do(ctx, xrpc.Procedure, mimeType, "com.atproto.repo.uploadBlob", nil, bytes.NewReader(data), &out)
	if err != nil {
		return nil, classify(fmt.Errorf("uploading blob (%s, %d bytes): %w", mimeType, len(data), err))
	}
	if out.Blob == nil {
		return nil, fmt.Errorf("%w: upload returned no blob ref", compose.ErrInvalid)
	}
	return out.Blob, nil
}

type cardExtractOutput struct {
	Error       string `json:"error"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// FetchCard implements the cards.Fetcher contract via the card extraction
// service, pulling the preview image bytes when one is offered.
func (c *Client) FetchCard(ctx context.Context, rawURL string) (*models.ExternalCard, error) {
	host := c.CardHost
	if host == "" {
		host = DefaultCardHost
	}
	endpoint := host + "/v1/extract?url=" + url.QueryEscape(rawURL)

	var out cardExtractOutput
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("fetching card for %s: %w", rawURL, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("fetching card for %s: %s", rawURL, out.Error)
	}

	card := &models.ExternalCard{
		URI:         rawURL,
		Title:       out.Title,
		Description: out.Description,
	}
	if out.Image != "" {
		img, mime, err := c.getBytes(ctx, out.Image)
		if err != nil {
			c.logger().Debug("card image fetch failed", "url", out.Image, "err", err)
		} else {
			card.Image = img
			card.ImageMime = mime
		}
	}
	return card, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return xrpc.RobustHTTPClient()
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getBytes(ctx context.Context, endpoint string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// classify tags an upstream failure with the composer's error taxonomy so
// callers can tell a dead session from a bad request from a flaky server.
func classify(err error) error {
	var xe *xrpc.Error
	if !errors.As(err, &xe) {
		return fmt.Errorf("%w: %w", compose.ErrTransient, err)
	}
	switch {
	case xe.StatusCode == http.StatusUnauthorized || xe.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", compose.ErrAuth, err)
	case xe.StatusCode >= 400 && xe.StatusCode < 500 && !xe.IsThrottled():
		return fmt.Errorf("%w: %w", compose.ErrInvalid, err)
	default:
		return fmt.Errorf("%w: %w", compose.ErrTransient, err)
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
