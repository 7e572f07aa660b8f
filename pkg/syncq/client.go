package syncq

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// compressThreshold is the JSON body size, in bytes, above which a
// patch is sent gzip-compressed inside a base64 envelope.
const compressThreshold = 1024

// Retry policy for transient failures.
const (
	retryAttempts = 3
	retryDelay    = time.Second
)

// Client talks to the pedigree sync backend for one user.
// It implements [Flusher] so it can sit behind a [Queue].
type Client struct {
	baseURL     string
	googleSub   string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a backend client. The access token is sent as a
// bearer credential; the backend's verifier decides what it means.
func NewClient(baseURL, googleSub, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		googleSub:   googleSub,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// snapshotResponse mirrors the backend's snapshot payload.
type snapshotResponse struct {
	GoogleSub string       `json:"google_sub"`
	People    person.Graph `json:"people_by_id"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// patchRequest mirrors the backend's PATCH body. When Compressed is
// set, PayloadB64 carries the gzip-compressed JSON of the plain
// upserts/deletes body and the plain fields are left empty.
type patchRequest struct {
	Upserts    map[string]*person.Person `json:"upserts,omitempty"`
	Deletes    []string                  `json:"deletes,omitempty"`
	Compressed bool                      `json:"compressed,omitempty"`
	PayloadB64 string                    `json:"payload_b64,omitempty"`
}

// Identity is the account profile returned by the backend on login.
type Identity struct {
	GoogleSub string `json:"google_sub"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Login registers or refreshes the account on the backend and returns
// the stored profile. The backend resolves the identity from the
// bearer token when it can, falling back to the posted fields.
func (c *Client) Login(ctx context.Context, email, name string) (*Identity, error) {
	body, err := json.Marshal(Identity{GoogleSub: c.googleSub, Email: email, Name: name})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode login")
	}
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/auth/google", body)
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode login response")
	}
	return &id, nil
}

// Push sends one patch, compressing large bodies. Implements [Flusher].
func (c *Client) Push(ctx context.Context, patch Patch) error {
	body, err := encodePatch(patch)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, c.pedigreeURL(), body)
	return err
}

// Fetch retrieves the remote snapshot.
func (c *Client) Fetch(ctx context.Context) (person.Graph, error) {
	data, err := c.do(ctx, http.MethodGet, c.pedigreeURL(), nil)
	if err != nil {
		return nil, err
	}
	var resp snapshotResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if resp.People == nil {
		resp.People = person.Graph{}
	}
	return resp.People, nil
}

// Replace uploads the full graph, replacing the remote snapshot.
func (c *Client) Replace(ctx context.Context, g person.Graph) error {
	body, err := json.Marshal(map[string]person.Graph{"people_by_id": g})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	_, err = c.do(ctx, http.MethodPut, c.pedigreeURL(), body)
	return err
}

// Remove deletes the remote snapshot.
func (c *Client) Remove(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, c.pedigreeURL(), nil)
	return err
}

// encodePatch marshals the patch, switching to the compressed envelope
// when the plain body exceeds the threshold.
func encodePatch(patch Patch) ([]byte, error) {
	plain, err := json.Marshal(patchRequest{Upserts: patch.Upserts, Deletes: patch.Deletes})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode patch")
	}
	if len(plain) <= compressThreshold {
		return plain, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(plain); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compress patch")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compress patch")
	}

	return json.Marshal(patchRequest{
		Compressed: true,
		PayloadB64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// pedigreeURL is the user's snapshot resource.
func (c *Client) pedigreeURL() string {
	return fmt.Sprintf("%s/v1/pedigree/%s", c.baseURL, c.googleSub)
}

// do performs one request with bounded retry. Only network errors and
// 5xx responses are retried (with doubling delay); 4xx responses fail
// immediately.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var lastErr error
	delay := retryDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}

		data, retryable, err := c.once(ctx, method, url, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, url string, body []byte) (data []byte, retryable bool, err error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(errors.ErrCodeNetwork, err, "read response")
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, errors.New(errors.ErrCodeNetwork, "%s %s: server error %d", method, url, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, errors.New(errors.ErrCodeUnauthorized, "access token rejected")
	case resp.StatusCode == http.StatusForbidden:
		return nil, false, errors.New(errors.ErrCodeForbidden, "not allowed for %s", c.googleSub)
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errors.New(errors.ErrCodeNotFound, "no pedigree for %s", c.googleSub)
	case resp.StatusCode >= 400:
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "%s %s: status %d", method, url, resp.StatusCode)
	}
	return data, false, nil
}

var _ Flusher = (*Client)(nil)
