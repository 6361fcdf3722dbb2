// pkg/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client resolves asset version histories against the studio backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VersionRecord is one version row. Fields this client does not know about
// are preserved in Extra so that a newer server never loses data through an
// older client.
type VersionRecord struct {
	Version       int                    `json:"version"`
	SignedURL     string                 `json:"signedUrl"`
	ThumbnailPath string                 `json:"thumbnailPath"`
	IsCurrent     bool                   `json:"isCurrent"`
	LastEditedAt  *time.Time             `json:"lastEditedAt"`
	Generation    map[string]interface{} `json:"generation,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var versionRecordKnownKeys = map[string]bool{
	"version":       true,
	"signedUrl":     true,
	"thumbnailPath": true,
	"isCurrent":     true,
	"lastEditedAt":  true,
	"generation":    true,
}

func (r *VersionRecord) UnmarshalJSON(data []byte) error {
	type known VersionRecord
	if err := json.Unmarshal(data, (*known)(r)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if versionRecordKnownKeys[key] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}
	return nil
}

func (r VersionRecord) MarshalJSON() ([]byte, error) {
	type known VersionRecord
	base, err := json.Marshal(known(r))
	if err != nil {
		return nil, err
	}

	if len(r.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if !versionRecordKnownKeys[key] {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// CompleteVersionData is the resolved history for one asset.
type CompleteVersionData struct {
	AssetID        string          `json:"assetId"`
	AssetType      AssetType       `json:"assetType"`
	MediaKind      MediaKind       `json:"mediaKind"`
	CurrentVersion int             `json:"currentVersion"`
	TotalVersions  int             `json:"totalVersions"`
	EditCount      int             `json:"editCount"`
	Versions       []VersionRecord `json:"versions"`
}

// Current returns the record the current pointer names, or nil if the
// history is empty.
func (d *CompleteVersionData) Current() *VersionRecord {
	for i := range d.Versions {
		if d.Versions[i].IsCurrent {
			return &d.Versions[i]
		}
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

// FetchCompleteData resolves an identity into its full version history.
func (c *Client) FetchCompleteData(ctx context.Context, id *AssetIdentity) (*CompleteVersionData, error) {
	query, err := id.BuildQuery()
	if err != nil {
		return nil, err
	}

	var data CompleteVersionData
	if err := c.do(ctx, http.MethodGet, "/v1/assets/complete-data?"+query.Encode(), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RestoreVersion re-points the asset's current version and returns the
// refreshed history.
func (c *Client) RestoreVersion(ctx context.Context, id *AssetIdentity, version int) (*CompleteVersionData, error) {
	if version < 1 {
		return nil, &ValidationError{Field: "version", Message: "version must be positive"}
	}

	query, err := id.BuildQuery()
	if err != nil {
		return nil, err
	}

	body := map[string]int{"version": version}
	var data CompleteVersionData
	if err := c.do(ctx, http.MethodPost, "/v1/assets/restore?"+query.Encode(), body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: errorMessage(payload)}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return &APIError{
			Code:       "INVALID_RESPONSE",
			Message:    "response was not valid JSON",
			HTTPStatus: resp.StatusCode,
		}
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{
			Code:       "UNKNOWN",
			HTTPStatus: resp.StatusCode,
		}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			if details, ok := env.Error.Details.(map[string]interface{}); ok {
				apiErr.Payload = details
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{
				Code:       "INVALID_RESPONSE",
				Message:    fmt.Sprintf("failed to decode response data: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
	}

	return nil
}

func errorMessage(payload []byte) string {
	var env envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.Error != nil {
		return env.Error.Message
	}
	return ""
}
