// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by ciphera.
//
// The relay acts as a dumb store-and-forward service for ceremony offer/
// response bytes and envelope bytes between peers. It never sees a handle,
// only handle hashes and opaque payloads.
//
// Supported operations include:
//   - Registering a handle hash's long-term public key.
//   - Publishing and fetching CLUTCH ceremony messages.
//   - Sending and fetching CHAIN envelopes.
//   - Acknowledging received envelopes.
//   - Fetching an account's canary string.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as errors with the HTTP method,
// request path, and status text to aid diagnostics.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ciphera/internal/domain"
)

// HTTP is a RelayClient over HTTP.
type HTTP struct {
	Base   string
	client *http.Client
}

// NewHTTP constructs a new HTTP relay client.
// If client is nil, http.DefaultClient will be used.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, client: client}
}

type registerRequest struct {
	HandleHash string `json:"handle_hash"`
	PublicKey  []byte `json:"public_key"`
}

// RegisterHandle publishes handleHash's long-term X25519 public key.
func (c *HTTP) RegisterHandle(
	ctx context.Context,
	handleHash domain.HandleHash,
	pub domain.X25519Public,
) error {
	return c.post(ctx, "/register", registerRequest{
		HandleHash: handleHash.String(),
		PublicKey:  pub.Slice(),
	}, nil)
}

// PublishCeremonyMessage posts one ceremony offer/response to to's inbox.
func (c *HTTP) PublishCeremonyMessage(ctx context.Context, to domain.HandleHash, payload []byte) error {
	return c.post(ctx, "/ceremony/"+url.PathEscape(to.String()), payloadRequest{Payload: payload}, nil)
}

// FetchCeremonyMessages retrieves up to limit queued ceremony messages.
func (c *HTTP) FetchCeremonyMessages(
	ctx context.Context,
	handleHash domain.HandleHash,
	limit int,
) ([][]byte, error) {
	return c.fetchPayloads(ctx, "/ceremony/"+url.PathEscape(handleHash.String()), limit)
}

// SendEnvelope posts one wire-encoded Envelope to to's inbox.
func (c *HTTP) SendEnvelope(ctx context.Context, to domain.HandleHash, envelope []byte) error {
	return c.post(ctx, "/envelope/"+url.PathEscape(to.String()), payloadRequest{Payload: envelope}, nil)
}

// FetchEnvelopes retrieves up to limit queued envelopes.
func (c *HTTP) FetchEnvelopes(
	ctx context.Context,
	handleHash domain.HandleHash,
	limit int,
) ([][]byte, error) {
	return c.fetchPayloads(ctx, "/envelope/"+url.PathEscape(handleHash.String()), limit)
}

// AckEnvelopes acknowledges the oldest count envelopes for handleHash.
func (c *HTTP) AckEnvelopes(ctx context.Context, handleHash domain.HandleHash, count int) error {
	payload := struct {
		Count int `json:"count"`
	}{Count: count}
	return c.post(ctx, "/envelope/"+url.PathEscape(handleHash.String())+"/ack", payload, nil)
}

// FetchAccountCanary retrieves the relay-observed canary string for handleHash.
func (c *HTTP) FetchAccountCanary(ctx context.Context, handleHash domain.HandleHash) (string, error) {
	var out struct {
		Canary string `json:"canary"`
	}
	if err := c.getJSON(ctx, "/canary/"+url.PathEscape(handleHash.String()), &out); err != nil {
		return "", err
	}
	return out.Canary, nil
}

type payloadRequest struct {
	Payload []byte `json:"payload"`
}

func (c *HTTP) fetchPayloads(ctx context.Context, path string, limit int) ([][]byte, error) {
	u := path
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Payloads [][]byte `json:"payloads"`
	}
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out.Payloads, nil
}

// post is a helper for JSON-encoding a POST to path.
func (c *HTTP) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// getJSON performs a GET and JSON-decodes the response into out.
func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that HTTP implements domain.RelayClient.
var _ domain.RelayClient = (*HTTP)(nil)
