// Package paymentintent содержит HTTP-клиент бэкенда, создающего
// платёжные интенты для платёжного листа.
package paymentintent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Request — тело запроса на создание платёжного интента.
type Request struct {
	UserID string `json:"userId"`
	PlanID string `json:"planId"`
}

// Response — успешный ответ бэкенда.
type Response struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client вызывает конечную точку создания платёжного интента.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент бэкенда платежей.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateIntent создаёт платёжный интент для пары пользователь/план.
// Ошибки намеренно не приглаживаются: тело ответа с полем error отдаёт
// его как есть, неразбираемый JSON и неполный ответ отдают сообщение
// ошибки разбора дословно — их сгладит уже слой дружелюбных сообщений.
func (c *Client) CreateIntent(ctx context.Context, accessToken string, reqParams Request) (*Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqParams); err != nil {
		return nil, err
	}

	url := c.baseURL + "/functions/v1/create-payment-intent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var body errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Error != "" {
			return nil, errors.New(body.Error)
		}
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intentResp Response
	if err := json.NewDecoder(resp.Body).Decode(&intentResp); err != nil {
		return nil, err
	}
	if intentResp.PaymentIntent == "" {
		return nil, fmt.Errorf("cannot read property paymentIntent of response %+v", intentResp)
	}
	return &intentResp, nil
}
