package client

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidCallbackToken is returned when an invoice callback carries a
// missing or wrong x-callback-token header.
var ErrInvalidCallbackToken = errors.New("invalid callback token")

type XenditCredentials struct {
	BaseApiURL    string
	SecretKey     string
	CallbackToken string
}

type XenditClient interface {
	CreateInvoice(ctx context.Context, req *XenditInvoiceRequest) (*XenditInvoiceResponse, error)
	ExpireInvoice(ctx context.Context, invoiceID string) error
	VerifyCallbackToken(headers http.Header) error
}

type xenditClientImpl struct {
	httpClient *http.Client
	creds      XenditCredentials
}

type XenditInvoiceRequest struct {
	ExternalID         string // our order id
	Amount             int64
	Currency           string
	Description        string
	PayerEmail         string
	SuccessRedirectURL string
	FailureRedirectURL string
}

type XenditInvoiceResponse struct {
	InvoiceID  string
	InvoiceURL string
	Status     string
	ExpiryDate string
}

func NewXenditClient(creds XenditCredentials) XenditClient {
	return &xenditClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds: creds,
	}
}

// Xendit authenticates with basic auth, secret key as the user and an
// empty password.
func (c *xenditClientImpl) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.creds.SecretKey+":"))
}

func (c *xenditClientImpl) CreateInvoice(ctx context.Context, invReq *XenditInvoiceRequest) (*XenditInvoiceResponse, error) {
	payload := map[string]interface{}{
		"external_id":          invReq.ExternalID,
		"amount":               invReq.Amount,
		"currency":             invReq.Currency,
		"description":          invReq.Description,
		"payer_email":          invReq.PayerEmail,
		"success_redirect_url": invReq.SuccessRedirectURL,
		"failure_redirect_url": invReq.FailureRedirectURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.creds.BaseApiURL+"/v2/invoices",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("xendit error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
		Status     string `json:"status"`
		ExpiryDate string `json:"expiry_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode xendit response: %w", err)
	}

	return &XenditInvoiceResponse{
		InvoiceID:  result.ID,
		InvoiceURL: result.InvoiceURL,
		Status:     result.Status,
		ExpiryDate: result.ExpiryDate,
	}, nil
}

func (c *xenditClientImpl) ExpireInvoice(ctx context.Context, invoiceID string) error {
	url := fmt.Sprintf("%s/invoices/%s/expire!", c.creds.BaseApiURL, invoiceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xendit expire request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("xendit expire failed: status=%d body=%s", resp.StatusCode, string(b))
	}

	return nil
}

// VerifyCallbackToken checks the x-callback-token header Xendit sends with
// every invoice callback against the configured token.
func (c *xenditClientImpl) VerifyCallbackToken(headers http.Header) error {
	token := headers.Get("X-Callback-Token")
	if token == "" {
		return fmt.Errorf("missing x-callback-token header: %w", ErrInvalidCallbackToken)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.creds.CallbackToken)) != 1 {
		return ErrInvalidCallbackToken
	}
	return nil
}
