package paymentgateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

// Client — HTTP-адаптер платёжного шлюза, реализующий интерфейс Gateway.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient создаёт адаптер платёжного шлюза.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayResponse struct {
	Error *Error `json:"error,omitempty"`
}

func (c *Client) post(ctx context.Context, path string, body any) *Error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return &Error{Code: "EncodeFailed", Message: err.Error()}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, &buf)
	if err != nil {
		return &Error{Code: "RequestFailed", Message: err.Error()}
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: "TransportFailed", Message: err.Error()}
	}
	defer resp.Body.Close()

	var gwResp gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return &Error{Code: "DecodeFailed", Message: err.Error()}
	}
	return gwResp.Error
}

// InitPaymentSheet инициализирует платёжный лист в шлюзе.
func (c *Client) InitPaymentSheet(ctx context.Context, cfg InitConfig) *Error {
	return c.post(ctx, "/v1/payment_sheet/init", cfg)
}

// PresentPaymentSheet показывает платёжный лист и дожидается исхода.
func (c *Client) PresentPaymentSheet(ctx context.Context) *Error {
	return c.post(ctx, "/v1/payment_sheet/present", nil)
}
