// Package graph is a minimal client for the Meta Graph API surface the
// Checkout integration consumes: the business phone-number list, the
// per-number messages endpoint, and the payments status endpoint.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
)

// DefaultBaseURL is the production Graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// TransportError is a non-success response from the Graph API. The raw
// response body is attached for diagnostics; the client never retries.
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graph api: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Graph API. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	creds   credentials.Provider
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API endpoint, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Graph API client authenticating via creds.
func NewClient(creds credentials.Provider, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		creds:   creds,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PhoneNumber is one entry of the business account's phone-number list.
type PhoneNumber struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	ID                 string `json:"id"`
}

// PhoneNumbers fetches the phone numbers registered to the business account.
func (c *Client) PhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	waba, err := c.creds.AccountID()
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/%s/phone_numbers", c.baseURL, waba))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []PhoneNumber `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode phone numbers")
	}
	return resp.Data, nil
}

// SendResponse is the messages endpoint acknowledgement.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendInteractive posts an interactive message through the given sender
// phone-number id. interactive must already be an encoded JSON document: the
// API requires the interactive field to be carried as a string, not as a
// nested object.
func (c *Client) SendInteractive(ctx context.Context, phoneNumberID, to string, interactive []byte) (*SendResponse, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("messaging_product", func(e *jx.Encoder) { e.Str("whatsapp") })
		e.Field("recipient_type", func(e *jx.Encoder) { e.Str("individual") })
		e.Field("to", func(e *jx.Encoder) { e.Str(to) })
		e.Field("type", func(e *jx.Encoder) { e.Str("interactive") })
		e.Field("interactive", func(e *jx.Encoder) { e.ByteStr(interactive) })
	})

	body, err := c.post(ctx, fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID), e.Bytes())
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode send response")
	}
	return &resp, nil
}

// PaymentStatus is the payments endpoint response. The API returns a payment
// object keyed by reference id; the raw body is retained since downstream
// order systems usually want the whole document.
type PaymentStatus struct {
	ReferenceID string
	Raw         json.RawMessage
}

// PaymentStatus queries the payment status of referenceID through the given
// sender phone-number id and payment configuration.
func (c *Client) PaymentStatus(ctx context.Context, phoneNumberID, paymentConfiguration, referenceID string) (*PaymentStatus, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/payments/%s/%s", c.baseURL, phoneNumberID, paymentConfiguration, referenceID))
	if err != nil {
		return nil, err
	}
	return &PaymentStatus{ReferenceID: referenceID, Raw: body}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	token, err := c.creds.AccessToken()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "graph api request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
