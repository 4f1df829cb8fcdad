package bskyclient

import (
	"context"
	"fmt"

	"github.com/bluesky-social/quill/xrpc"
)

// Login exchanges an identifier (handle or DID) and app password for a
// session on host, returning a client ready to post.
func Login(ctx context.Context, host, identifier, password string) (*Client, error) {
	xc := &xrpc.Client{Host: host}
	var auth xrpc.AuthInfo
	err := xc.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.server.createSession", nil, map[string]any{
		"identifier": identifier,
		"password":   password,
	}, &auth)
	if err != nil {
		return nil, classify(fmt.Errorf("creating session for %s: %w", identifier, err))
	}
	xc.Auth = &auth
	return NewClient(xc), nil
}
