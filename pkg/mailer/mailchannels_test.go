package mailer

import (
	"context"
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

func testMessage() Message {
	return Message{
		FromAddress: "noreply@example.com",
		FromName:    "Curam Gateway",
		To:          []string{"alice@example.com", "bob@example.com"},
		Subject:     "Digest",
		TextBody:    "plain body",
		HTMLBody:    "<p>html body</p>",
	}
}

func TestSend_BuildsPayload(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient()
	client.SetEndpoint(server.URL)

	require.NoError(t, client.Send(context.Background(), testMessage()))

	require.Len(t, captured.Personalizations, 1)
	require.Len(t, captured.Personalizations[0].To, 2)
	assert.Equal(t, "alice@example.com", captured.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@example.com", captured.From.Email)
	assert.Equal(t, "Curam Gateway", captured.From.Name)
	assert.Equal(t, "Digest", captured.Subject)

	require.Len(t, captured.Content, 2)
	assert.Equal(t, "text/plain", captured.Content[0].Type)
	assert.Equal(t, "plain body", captured.Content[0].Value)
	assert.Equal(t, "text/html", captured.Content[1].Type)
}

func TestSend_TextOnly(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	client.SetEndpoint(server.URL)

	msg := testMessage()
	msg.HTMLBody = ""
	require.NoError(t, client.Send(context.Background(), msg))
	require.Len(t, captured.Content, 1)
	assert.Equal(t, "text/plain", captured.Content[0].Type)
}

func TestSend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("sender not allowed"))
	}))
	defer server.Close()

	client := NewClient()
	client.SetEndpoint(server.URL)

	err := client.Send(context.Background(), testMessage())
	require.Error(t, err)

	var verr *adapter.VendorError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, adapter.KindUnauthorized, verr.Kind)
	assert.Contains(t, verr.Message, "sender not allowed")
}

func TestSend_Validation(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Message)
	}{
		{"missing from", func(m *Message) { m.FromAddress = "" }},
		{"no recipients", func(m *Message) { m.To = nil }},
		{"missing subject", func(m *Message) { m.Subject = "" }},
		{"empty body", func(m *Message) { m.TextBody, m.HTMLBody = "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := testMessage()
			tt.mutate(&msg)
			assert.Error(t, client.Send(ctx, msg))
		})
	}
}
