package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
)

func TestGenerate_Success(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	var captured generationRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		resp := map[string]any{
			"artifacts": []map[string]any{
				{"base64": base64.StdEncoding.EncodeToString(pngBytes), "seed": 42, "finishReason": "SUCCESS"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient("test-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	images, err := client.Generate(context.Background(), "a lighthouse at dusk", Options{})
	require.NoError(t, err)

	require.Len(t, images, 1)
	assert.Equal(t, pngBytes, images[0].Data)
	assert.Equal(t, int64(42), images[0].Seed)
	assert.Equal(t, "SUCCESS", images[0].FinishReason)

	// zero options take the documented defaults
	require.Len(t, captured.TextPrompts, 1)
	assert.Equal(t, "a lighthouse at dusk", captured.TextPrompts[0].Text)
	assert.Equal(t, 1024, captured.Width)
	assert.Equal(t, 1024, captured.Height)
	assert.Equal(t, 30, captured.Steps)
	assert.Equal(t, float64(7), captured.CfgScale)
	assert.Equal(t, 1, captured.Samples)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid api key"})
	}))
	defer server.Close()

	client, err := NewClient("bad-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	_, err = client.Generate(context.Background(), "anything", Options{})
	require.Error(t, err)

	var verr *adapter.VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, adapter.KindUnauthorized, verr.Kind)
	assert.Equal(t, "invalid api key", verr.Message)
}

func TestGenerate_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("<html>401 Unauthorized</html>"))
	}))
	defer server.Close()

	client, err := NewClient("bad-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	_, err = client.Generate(context.Background(), "anything", Options{})
	require.Error(t, err)

	var verr *adapter.VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, adapter.KindUnauthorized, verr.Kind)
	assert.Equal(t, http.StatusUnauthorized, verr.Status)
}

func TestGenerate_EmptyArtifacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"artifacts": []any{}})
	}))
	defer server.Close()

	client, err := NewClient("test-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	_, err = client.Generate(context.Background(), "anything", Options{})
	require.Error(t, err)

	var verr *adapter.VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, adapter.KindMalformed, verr.Kind)
}

func TestGenerate_CustomOptions(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]any{{"base64": "", "seed": 1, "finishReason": "SUCCESS"}},
		})
	}))
	defer server.Close()

	client, err := NewClient("test-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	_, err = client.Generate(context.Background(), "anything", Options{Engine: "stable-diffusion-v1-6"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/generation/stable-diffusion-v1-6/text-to-image", capturedPath)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}
