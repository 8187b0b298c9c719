package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"agency-backend/internal/client"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
)

type fakeXenditService struct {
	callbackErr error
}

func (f *fakeXenditService) Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error) {
	return nil, nil
}

func (f *fakeXenditService) HandleCallback(ctx context.Context, headers http.Header, body []byte) error {
	return f.callbackErr
}

func TestXenditCallbackStatusMapping(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		h := NewXenditHandler(&fakeXenditService{})
		code, _ := do(t, h.Callback, http.MethodPost, "/api/payments/xendit/callback",
			`{"id":"inv-1","external_id":"ord-1","status":"PAID"}`, nil)
		if code != http.StatusOK {
			t.Errorf("code = %d, want 200", code)
		}
	})

	t.Run("bad token is unauthorized even when wrapped", func(t *testing.T) {
		t.Parallel()

		h := NewXenditHandler(&fakeXenditService{
			callbackErr: fmt.Errorf("verify callback token: %w", client.ErrInvalidCallbackToken),
		})
		code, _ := do(t, h.Callback, http.MethodPost, "/api/payments/xendit/callback",
			`{"id":"inv-1","external_id":"ord-1","status":"PAID"}`, nil)
		if code != http.StatusUnauthorized {
			t.Errorf("code = %d, want 401", code)
		}
	})
}
