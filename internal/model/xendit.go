package model

// XenditInvoiceCallback is the invoice callback body Xendit posts to the
// callback endpoint. Only the fields the service reads are declared.
type XenditInvoiceCallback struct {
	ID                 string  `json:"id"`
	ExternalID         string  `json:"external_id"`
	Status             string  `json:"status"` // PAID, SETTLED, EXPIRED
	Amount             float64 `json:"amount"`
	PaidAmount         float64 `json:"paid_amount"`
	Currency           string  `json:"currency"`
	PaidAt             string  `json:"paid_at"`
	PaymentMethod      string  `json:"payment_method"`
	PaymentChannel     string  `json:"payment_channel"`
	FailureRedirectURL string  `json:"failure_redirect_url"`
}
