package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *HuggingFaceAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	a, err := NewHuggingFaceAdapter("test-key")
	if err != nil {
		t.Fatalf("NewHuggingFaceAdapter() error = %v", err)
	}
	a.SetBaseURL(server.URL)
	return a
}

func TestHuggingFaceQuery_Success(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gpt2" {
			t.Errorf("path = %q, want /gpt2", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		w.Write([]byte(`[{"generated_text":"hello"}]`))
	})

	raw, err := a.Query(context.Background(), "gpt2", []byte(`{"inputs":"hi"}`))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if string(raw) != `[{"generated_text":"hello"}]` {
		t.Errorf("raw = %s", raw)
	}
}

func TestHuggingFaceQuery_ErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedKind ErrorKind
	}{
		{
			name:         "503 with estimated_time is model loading",
			status:       http.StatusServiceUnavailable,
			body:         `{"error":"Model gpt2 is currently loading","estimated_time":20.5}`,
			expectedKind: KindModelLoading,
		},
		{
			name:         "bare 503 is service unavailable",
			status:       http.StatusServiceUnavailable,
			body:         `{"error":"service unavailable"}`,
			expectedKind: KindServiceUnavailable,
		},
		{
			name:         "429 is rate limited",
			status:       http.StatusTooManyRequests,
			body:         `{"error":"too many requests"}`,
			expectedKind: KindRateLimited,
		},
		{
			name:         "401 is unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"error":"invalid token"}`,
			expectedKind: KindUnauthorized,
		},
		{
			name:         "400 is malformed",
			status:       http.StatusBadRequest,
			body:         `{"error":"unknown parameter"}`,
			expectedKind: KindMalformed,
		},
		{
			name:         "500 is unknown",
			status:       http.StatusInternalServerError,
			body:         `{"error":"internal"}`,
			expectedKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := a.Query(context.Background(), "gpt2", []byte(`{"inputs":"hi"}`))
			if err == nil {
				t.Fatal("expected error")
			}

			var verr *VendorError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *VendorError", err)
			}
			if verr.Kind != tt.expectedKind {
				t.Errorf("kind = %q, want %q", verr.Kind, tt.expectedKind)
			}
			if verr.Status != tt.status {
				t.Errorf("status = %d, want %d", verr.Status, tt.status)
			}
		})
	}
}

func TestHuggingFaceQuery_PayloadErrors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedKind ErrorKind
	}{
		{
			name:         "estimated_time with 200 is model loading",
			body:         `{"error":"Model is warming up","estimated_time":12.0}`,
			expectedKind: KindModelLoading,
		},
		{
			name:         "rate message with 200 is rate limited",
			body:         `{"error":"Rate limit reached. Please retry later."}`,
			expectedKind: KindRateLimited,
		},
		{
			name:         "other error message is unknown",
			body:         `{"error":"something odd happened"}`,
			expectedKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := a.Query(context.Background(), "gpt2", []byte(`{"inputs":"hi"}`))
			if err == nil {
				t.Fatal("expected error")
			}

			var verr *VendorError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *VendorError", err)
			}
			if verr.Kind != tt.expectedKind {
				t.Errorf("kind = %q, want %q", verr.Kind, tt.expectedKind)
			}
			if verr.Status != http.StatusOK {
				t.Errorf("status = %d, want 200", verr.Status)
			}
		})
	}
}

func TestHuggingFaceQuery_InvalidJSON(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := a.Query(context.Background(), "gpt2", []byte(`{"inputs":"hi"}`))
	if err == nil {
		t.Fatal("expected error")
	}

	var verr *VendorError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *VendorError", err)
	}
	if verr.Kind != KindMalformed {
		t.Errorf("kind = %q, want %q", verr.Kind, KindMalformed)
	}
}

func TestHuggingFaceGenerate(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text":"a short poem"}]`))
	})

	art, err := a.Generate(context.Background(), "mistralai/Mistral-7B-Instruct-v0.3", "write a poem")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if art.Content != "a short poem" {
		t.Errorf("content = %q", art.Content)
	}
	if art.Adapter != "huggingface" {
		t.Errorf("adapter = %q", art.Adapter)
	}
}

func TestNewHuggingFaceAdapter_RequiresKey(t *testing.T) {
	if _, err := NewHuggingFaceAdapter(""); err == nil {
		t.Error("expected error for empty API key")
	}
	if _, err := NewHuggingFaceAdapterWithTimeout("", 30*time.Second); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewHuggingFaceAdapterWithTimeout(t *testing.T) {
	a, err := NewHuggingFaceAdapterWithTimeout("test-key", 120*time.Second)
	if err != nil {
		t.Fatalf("NewHuggingFaceAdapterWithTimeout() error = %v", err)
	}
	if a.httpClient.Timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", a.httpClient.Timeout)
	}

	a, err = NewHuggingFaceAdapterWithTimeout("test-key", 0)
	if err != nil {
		t.Fatalf("NewHuggingFaceAdapterWithTimeout() error = %v", err)
	}
	if a.httpClient.Timeout != 60*time.Second {
		t.Errorf("zero timeout = %v, want default 60s", a.httpClient.Timeout)
	}

	a, err = NewHuggingFaceAdapter("test-key")
	if err != nil {
		t.Fatalf("NewHuggingFaceAdapter() error = %v", err)
	}
	if a.httpClient.Timeout != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", a.httpClient.Timeout)
	}
}
