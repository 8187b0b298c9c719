package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agency-backend/internal/dto"
	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// fakeCheckoutService drives the handler's error-to-status mapping.
type fakeCheckoutService struct {
	draftErr  error
	quoteErr  error
	submitErr error
}

func (f *fakeCheckoutService) SaveDraft(ctx context.Context, req *dto.DraftRequest) (*dto.DraftResponse, error) {
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return &dto.DraftResponse{DraftID: "d-1"}, nil
}

func (f *fakeCheckoutService) GetDraft(ctx context.Context, draftID string) (*dto.DraftRequest, error) {
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return &dto.DraftRequest{DraftID: draftID, PackageSlug: "starter", DurationMonths: 6}, nil
}

func (f *fakeCheckoutService) Quote(ctx context.Context, draftID string) (*dto.QuoteResponse, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &dto.QuoteResponse{Total: 4050000, Currency: "IDR", Display: "4050000"}, nil
}

func (f *fakeCheckoutService) Submit(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &dto.CheckoutResponse{OrderID: "ord-1", Provider: req.Provider, Status: "pending", RedirectURL: "https://pay.test"}, nil
}

func (f *fakeCheckoutService) OrderStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error) {
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return &dto.OrderStatusResponse{OrderID: orderID, Status: "pending", Provider: "midtrans"}, nil
}

func do(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	err := h(c)
	if err == nil {
		return rec.Code, rec.Body.String()
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ""
	}
	t.Fatalf("unexpected error type: %v", err)
	return 0, ""
}

func TestSubmitStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"draft not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"bad provider", service.ErrBadProvider, http.StatusBadRequest},
		{"incomplete draft", service.ErrDraftIncomplete, http.StatusBadRequest},
		{"bad promo", repository.ErrPromoNotFound, http.StatusBadRequest},
		{"provider disabled", service.ErrProviderDisabled, http.StatusConflict},
		{"vendor failure", errors.New("midtrans rejected the transaction"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewCheckoutHandler(&fakeCheckoutService{submitErr: tc.err})
			code, _ := do(t, h.Submit, http.MethodPost, "/api/checkout/submit",
				`{"draft_id":"d-1","provider":"midtrans"}`, nil)
			if code != tc.code {
				t.Errorf("code = %d, want %d", code, tc.code)
			}
		})
	}
}

func TestSubmitResponseBody(t *testing.T) {
	t.Parallel()

	h := NewCheckoutHandler(&fakeCheckoutService{})
	code, body := do(t, h.Submit, http.MethodPost, "/api/checkout/submit",
		`{"draft_id":"d-1","provider":"midtrans"}`, nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}

	var resp dto.CheckoutResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderID != "ord-1" || resp.RedirectURL != "https://pay.test" {
		t.Errorf("response = %+v", resp)
	}
}

func TestQuoteStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"draft not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"bad promo", repository.ErrPromoNotFound, http.StatusBadRequest},
		{"incomplete draft", service.ErrDraftIncomplete, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewCheckoutHandler(&fakeCheckoutService{quoteErr: tc.err})
			code, _ := do(t, h.Quote, http.MethodGet, "/api/checkout/drafts/d-1/quote", "",
				map[string]string{"id": "d-1"})
			if code != tc.code {
				t.Errorf("code = %d, want %d", code, tc.code)
			}
		})
	}
}

func TestGetDraftNotFound(t *testing.T) {
	t.Parallel()

	h := NewCheckoutHandler(&fakeCheckoutService{draftErr: gorm.ErrRecordNotFound})
	code, _ := do(t, h.GetDraft, http.MethodGet, "/api/checkout/drafts/missing", "",
		map[string]string{"id": "missing"})
	if code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", code)
	}
}

func TestSaveDraftRejectsBadBody(t *testing.T) {
	t.Parallel()

	h := NewCheckoutHandler(&fakeCheckoutService{})
	code, _ := do(t, h.SaveDraft, http.MethodPost, "/api/checkout/drafts", `{not json`, nil)
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", code)
	}
}
