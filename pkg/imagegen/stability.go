// Package imagegen provides the Stability.AI text-to-image client.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
)

const stabilityBaseURL = "https://api.stability.ai"

// Client calls the Stability.AI generation API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Options tunes a generation request. Zero values take the defaults.
type Options struct {
	Engine   string
	Width    int
	Height   int
	Steps    int
	CfgScale float64
	Samples  int
}

// Image is one decoded generation artifact.
type Image struct {
	Data         []byte
	Seed         int64
	FinishReason string
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type generationRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
}

type generationResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		Seed         int64  `json:"seed"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
	Message string `json:"message"`
}

// NewClient creates a Stability.AI client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stability API key is required")
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    stabilityBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// Generate renders images for a prompt and returns the decoded artifacts.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) ([]Image, error) {
	applyDefaults(&opts)

	reqBody := generationRequest{
		TextPrompts: []textPrompt{{Text: prompt, Weight: 1}},
		CfgScale:    opts.CfgScale,
		Width:       opts.Width,
		Height:      opts.Height,
		Samples:     opts.Samples,
		Steps:       opts.Steps,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.baseURL, opts.Engine)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stability API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// the error message is best-effort; the status decides the kind
		var failure generationResponse
		_ = json.Unmarshal(body, &failure)
		message := failure.Message
		if message == "" {
			message = fmt.Sprintf("generation API returned status %d", resp.StatusCode)
		}
		return nil, &adapter.VendorError{Kind: adapter.ClassifyStatus(resp.StatusCode), Status: resp.StatusCode, Vendor: "stability", Message: message}
	}

	var generation generationResponse
	if err := json.Unmarshal(body, &generation); err != nil {
		return nil, &adapter.VendorError{Kind: adapter.KindMalformed, Status: resp.StatusCode, Vendor: "stability", Message: "response is not valid JSON", Err: err}
	}

	if len(generation.Artifacts) == 0 {
		return nil, &adapter.VendorError{Kind: adapter.KindMalformed, Vendor: "stability", Message: "no artifacts in response"}
	}

	images := make([]Image, 0, len(generation.Artifacts))
	for _, art := range generation.Artifacts {
		data, err := base64.StdEncoding.DecodeString(art.Base64)
		if err != nil {
			return nil, &adapter.VendorError{Kind: adapter.KindMalformed, Vendor: "stability", Message: "artifact is not valid base64", Err: err}
		}
		images = append(images, Image{
			Data:         data,
			Seed:         art.Seed,
			FinishReason: art.FinishReason,
		})
	}

	return images, nil
}

func applyDefaults(opts *Options) {
	if opts.Engine == "" {
		opts.Engine = "stable-diffusion-xl-1024-v1-0"
	}
	if opts.Width == 0 {
		opts.Width = 1024
	}
	if opts.Height == 0 {
		opts.Height = 1024
	}
	if opts.Steps == 0 {
		opts.Steps = 30
	}
	if opts.CfgScale == 0 {
		opts.CfgScale = 7
	}
	if opts.Samples == 0 {
		opts.Samples = 1
	}
}
