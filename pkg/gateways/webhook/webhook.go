// Package webhook implements the notification gateways over plain HTTP
// webhooks. Each gateway POSTs a JSON body to a configured endpoint and
// reads a DeliveryResult back.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cadenzahq/cadenza/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

// Client posts JSON payloads to one endpoint and decodes the delivery
// result from the response body.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *Client) post(ctx context.Context, payload any) (protocol.DeliveryResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return protocol.DeliveryResult{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.DeliveryResult{}, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return protocol.DeliveryResult{}, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return protocol.DeliveryResult{}, fmt.Errorf("endpoint %s returned status %d", c.endpoint, resp.StatusCode)
	}

	var result protocol.DeliveryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return protocol.DeliveryResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}

// EmailGateway delivers email messages through a webhook endpoint.
type EmailGateway struct {
	client *Client
}

func NewEmailGateway(endpoint string, opts ...Option) *EmailGateway {
	return &EmailGateway{client: NewClient(endpoint, opts...)}
}

func (g *EmailGateway) Send(ctx context.Context, msg protocol.EmailMessage) (protocol.DeliveryResult, error) {
	return g.client.post(ctx, msg)
}

// SMSGateway delivers SMS messages through a webhook endpoint.
type SMSGateway struct {
	client *Client
}

func NewSMSGateway(endpoint string, opts ...Option) *SMSGateway {
	return &SMSGateway{client: NewClient(endpoint, opts...)}
}

func (g *SMSGateway) Send(ctx context.Context, msg protocol.SMSMessage) (protocol.DeliveryResult, error) {
	return g.client.post(ctx, msg)
}

// CRMGateway writes records to an external CRM through a webhook endpoint.
type CRMGateway struct {
	client *Client
}

func NewCRMGateway(endpoint string, opts ...Option) *CRMGateway {
	return &CRMGateway{client: NewClient(endpoint, opts...)}
}

func (g *CRMGateway) Write(ctx context.Context, record protocol.CRMRecord) (protocol.DeliveryResult, error) {
	return g.client.post(ctx, record)
}
