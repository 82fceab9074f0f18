package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/artifact"
)

const (
	huggingFaceBaseURL        = "https://api-inference.huggingface.co/models"
	huggingFaceDefaultTimeout = 60 * time.Second
)

// HuggingFaceAdapter implements the Adapter interface for Hugging Face
// hosted inference endpoints. It also serves as the raw transport for the
// dispatch package: Query posts an arbitrary task-shaped body and returns
// the unparsed payload with errors classified into the vendor taxonomy.
type HuggingFaceAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// hfErrorBody is the error payload shape of the inference API. A 503 with
// estimated_time set means the model is still warming up.
type hfErrorBody struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// NewHuggingFaceAdapter creates a new Hugging Face adapter with the
// default request timeout.
func NewHuggingFaceAdapter(apiKey string) (*HuggingFaceAdapter, error) {
	return NewHuggingFaceAdapterWithTimeout(apiKey, huggingFaceDefaultTimeout)
}

// NewHuggingFaceAdapterWithTimeout creates an adapter with an explicit
// request timeout. Zero or negative values take the default.
func NewHuggingFaceAdapterWithTimeout(apiKey string, timeout time.Duration) (*HuggingFaceAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("hugging face API key is required")
	}
	if timeout <= 0 {
		timeout = huggingFaceDefaultTimeout
	}

	return &HuggingFaceAdapter{
		apiKey:     apiKey,
		baseURL:    huggingFaceBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the adapter identifier.
func (a *HuggingFaceAdapter) Name() string {
	return "huggingface"
}

// Models returns the hosted models this deployment targets.
func (a *HuggingFaceAdapter) Models() []string {
	return []string{
		"mistralai/Mistral-7B-Instruct-v0.3",
		"facebook/bart-large-cnn",
		"deepset/roberta-base-squad2",
		"distilbert/distilbert-base-uncased-finetuned-sst-2-english",
	}
}

// SetBaseURL overrides the inference endpoint. Used by tests.
func (a *HuggingFaceAdapter) SetBaseURL(url string) {
	a.baseURL = strings.TrimSuffix(url, "/")
}

// Query posts a task-shaped body to a model endpoint and returns the raw
// JSON payload. All failures come back as *VendorError.
func (a *HuggingFaceAdapter) Query(ctx context.Context, modelID string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/"+modelID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &VendorError{Kind: KindUnknown, Vendor: a.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VendorError{Kind: KindUnknown, Vendor: a.Name(), Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, a.classifyFailure(resp.StatusCode, payload)
	}

	if verr := a.classifyPayloadError(payload); verr != nil {
		return nil, verr
	}

	if !json.Valid(payload) {
		return nil, &VendorError{Kind: KindMalformed, Status: resp.StatusCode, Vendor: a.Name(), Message: "response is not valid JSON"}
	}

	return json.RawMessage(payload), nil
}

// classifyFailure maps a non-200 response to the vendor error taxonomy.
func (a *HuggingFaceAdapter) classifyFailure(status int, payload []byte) *VendorError {
	var body hfErrorBody
	_ = json.Unmarshal(payload, &body)

	kind := ClassifyStatus(status)
	if status == http.StatusServiceUnavailable && body.EstimatedTime > 0 {
		kind = KindModelLoading
	}

	message := body.Error
	if message == "" {
		message = fmt.Sprintf("inference API returned status %d", status)
	}

	return &VendorError{Kind: kind, Status: status, Vendor: a.Name(), Message: message}
}

// classifyPayloadError handles error objects delivered with a 200 status.
// The loading signal is structured (estimated_time); the rate-limit notice
// carries only a message, so substring matching remains as a compatibility
// shim until the vendor exposes a code for it.
func (a *HuggingFaceAdapter) classifyPayloadError(payload []byte) *VendorError {
	var body hfErrorBody
	if err := json.Unmarshal(payload, &body); err != nil || body.Error == "" {
		return nil
	}
	if body.EstimatedTime > 0 {
		return &VendorError{Kind: KindModelLoading, Status: http.StatusOK, Vendor: a.Name(), Message: body.Error}
	}
	if strings.Contains(strings.ToLower(body.Error), "rate") {
		return &VendorError{Kind: KindRateLimited, Status: http.StatusOK, Vendor: a.Name(), Message: body.Error}
	}
	return &VendorError{Kind: KindUnknown, Status: http.StatusOK, Vendor: a.Name(), Message: body.Error}
}

// Generate sends a plain text-generation request and returns the response
// as an artifact.
func (a *HuggingFaceAdapter) Generate(ctx context.Context, model string, prompt string) (*artifact.Artifact, error) {
	body, err := json.Marshal(map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens":   250,
			"temperature":      0.7,
			"return_full_text": false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := a.Query(ctx, model, body)
	if err != nil {
		return nil, err
	}

	var candidates []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &candidates); err != nil || len(candidates) == 0 {
		return nil, &VendorError{Kind: KindMalformed, Vendor: a.Name(), Message: "unexpected text-generation payload"}
	}

	return artifact.New(candidates[0].GeneratedText, a.Name(), model, prompt), nil
}
