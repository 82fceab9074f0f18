// Package mailer provides the MailChannels transactional email client.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
)

const mailChannelsEndpoint = "https://api.mailchannels.net/tx/v1/send"

// Client sends email through the MailChannels send API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Message is one outbound email.
type Message struct {
	FromAddress string
	FromName    string
	To          []string
	Subject     string
	TextBody    string
	HTMLBody    string
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// NewClient creates a MailChannels client.
func NewClient() *Client {
	return &Client{
		endpoint:   mailChannelsEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetEndpoint overrides the send endpoint. Used by tests.
func (c *Client) SetEndpoint(url string) {
	c.endpoint = url
}

// Send delivers one message. Acceptance (2xx) is success; everything
// else comes back as a classified vendor error.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	to := make([]emailAddress, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, emailAddress{Email: addr})
	}

	body := sendRequest{
		Personalizations: []personalization{{To: to}},
		From:             emailAddress{Email: msg.FromAddress, Name: msg.FromName},
		Subject:          msg.Subject,
	}
	if msg.TextBody != "" {
		body.Content = append(body.Content, content{Type: "text/plain", Value: msg.TextBody})
	}
	if msg.HTMLBody != "" {
		body.Content = append(body.Content, content{Type: "text/html", Value: msg.HTMLBody})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailchannels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	payload, _ := io.ReadAll(resp.Body)
	message := strings.TrimSpace(string(payload))
	if message == "" {
		message = fmt.Sprintf("send API returned status %d", resp.StatusCode)
	}
	return &adapter.VendorError{Kind: adapter.ClassifyStatus(resp.StatusCode), Status: resp.StatusCode, Vendor: "mailchannels", Message: message}
}

func validate(msg Message) error {
	if msg.FromAddress == "" {
		return fmt.Errorf("from address is required")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if msg.TextBody == "" && msg.HTMLBody == "" {
		return fmt.Errorf("message body is required")
	}
	return nil
}
