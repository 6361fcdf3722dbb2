// pkg/client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCompleteData_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/assets/complete-data", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "shots", r.URL.Query().Get("type"))
		assert.Equal(t, "3", r.URL.Query().Get("sceneId"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"assetId": "11111111-2222-3333-4444-555555555555",
				"assetType": "shots",
				"mediaKind": "image",
				"currentVersion": 2,
				"totalVersions": 3,
				"editCount": 4,
				"versions": [
					{"version": 1, "signedUrl": "https://cdn/v1", "isCurrent": false},
					{"version": 2, "signedUrl": "https://cdn/v2", "isCurrent": true, "colorGrade": "kodak-2383"},
					{"version": 3, "signedUrl": "https://cdn/v3", "isCurrent": false}
				]
			}
		}`))
	}))
	defer server.Close()

	c := New(server.URL, WithToken("test-token"))
	data, err := c.FetchCompleteData(context.Background(), shotsIdentity())
	require.NoError(t, err)

	assert.Equal(t, 2, data.CurrentVersion)
	assert.Equal(t, 3, data.TotalVersions)
	require.Len(t, data.Versions, 3)

	current := data.Current()
	require.NotNil(t, current)
	assert.Equal(t, 2, current.Version)

	// Unknown server fields survive a decode/encode round trip.
	require.Contains(t, current.Extra, "colorGrade")
	encoded, err := json.Marshal(current)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"colorGrade":"kodak-2383"`)
}

func TestFetchCompleteData_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "error": {"code": "UNAUTHORIZED", "message": "token expired"}}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.FetchCompleteData(context.Background(), shotsIdentity())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "token expired", authErr.Message)
}

func TestFetchCompleteData_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL)
	_, err := c.FetchCompleteData(context.Background(), shotsIdentity())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Error(t, netErr.Unwrap())
}

func TestFetchCompleteData_InsufficientCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{
			"success": false,
			"error": {
				"code": "INSUFFICIENT_CREDITS",
				"message": "Insufficient credits",
				"details": {"required": 50, "available": 10}
			}
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.FetchCompleteData(context.Background(), shotsIdentity())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsInsufficientCredits())
	assert.Equal(t, http.StatusPaymentRequired, apiErr.HTTPStatus)
	assert.EqualValues(t, 50, apiErr.Payload["required"])
}

func TestFetchCompleteData_ValidationShortCircuits(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	id := shotsIdentity()
	id.ShotID = nil

	c := New(server.URL)
	_, err := c.FetchCompleteData(context.Background(), id)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shotId", verr.Field)
	assert.False(t, requested, "invalid identities must not reach the server")
}

func TestRestoreVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/assets/restore", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body["version"])

		w.Write([]byte(`{
			"success": true,
			"data": {
				"assetId": "11111111-2222-3333-4444-555555555555",
				"assetType": "shots",
				"mediaKind": "image",
				"currentVersion": 1,
				"totalVersions": 3,
				"editCount": 5,
				"versions": [
					{"version": 1, "isCurrent": true},
					{"version": 2, "isCurrent": false},
					{"version": 3, "isCurrent": false}
				]
			}
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	data, err := c.RestoreVersion(context.Background(), shotsIdentity(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, data.CurrentVersion)
	assert.Equal(t, 3, data.TotalVersions)

	currentCount := 0
	for _, v := range data.Versions {
		if v.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount, "exactly one version is current after restore")
	assert.True(t, data.Versions[0].IsCurrent)
}

func TestRestoreVersion_RejectsNonPositive(t *testing.T) {
	c := New("http://unused")
	_, err := c.RestoreVersion(context.Background(), shotsIdentity(), 0)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "version", verr.Field)
}
