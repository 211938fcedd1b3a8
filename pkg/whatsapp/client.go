package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matheuspdias/managerclin-public-sub002/pkg/config"
)

// Sender dispatches a text message to a phone number in canonical 55 form.
type Sender interface {
	SendText(ctx context.Context, phone, message string) error
}

// Client talks to the WhatsApp gateway (evolution-api compatible) over HTTP.
type Client struct {
	baseURL     string
	apiKey      string
	instanceKey string
	httpClient  *http.Client
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.WhatsAppConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		instanceKey: cfg.InstanceKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText posts a text message to the gateway instance.
func (c *Client) SendText(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(sendTextRequest{Number: phone, Text: message})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instanceKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
