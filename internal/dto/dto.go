package dto

type DraftRequest struct {
	DraftID         string           `json:"draft_id"`
	Domain          string           `json:"domain"`
	TemplateSlug    string           `json:"template_slug"`
	PackageSlug     string           `json:"package_slug"`
	DurationMonths  int              `json:"duration_months"`
	AddonQuantities map[string]int64 `json:"addon_quantities"`
	AddonToggles    map[string]bool  `json:"addon_toggles"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	PromoCode       string           `json:"promo_code"`
}

type DraftResponse struct {
	DraftID string `json:"draft_id"`
}

type QuoteResponse struct {
	PackageTotal  int64  `json:"package_total"`
	AddonTotal    int64  `json:"addon_total"`
	Subtotal      int64  `json:"subtotal"`
	PromoDiscount int64  `json:"promo_discount"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
	Display       string `json:"display"` // formatted total, "—" when no price applies
}

type CheckoutRequest struct {
	DraftID  string `json:"draft_id"`
	Provider string `json:"provider"` // midtrans, paypal, xendit
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url,omitempty"`
	SnapToken   string `json:"snap_token,omitempty"`
}

type OrderStatusResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Provider      string `json:"provider"`
	RedirectURL   string `json:"redirect_url,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// SettingsActionRequest is the admin settings API envelope. Action is one of
// get, set, clear, set_enabled.
type SettingsActionRequest struct {
	Action      string            `json:"action"`
	Key         string            `json:"key,omitempty"`
	Value       string            `json:"value,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Environment string            `json:"environment,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty"`
	Secrets     map[string]string `json:"secrets,omitempty"`
}

type SettingsActionResponse struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	OK    bool   `json:"ok"`
}

// PackageUpsertRequest creates or replaces a catalog package together with
// its sellable durations.
type PackageUpsertRequest struct {
	Slug          string           `json:"slug"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	MonthlyPrice  int64            `json:"monthly_price"`
	AnnualPrice   int64            `json:"annual_price"`
	OverridePrice *int64           `json:"override_price,omitempty"`
	Currency      string           `json:"currency"`
	Active        bool             `json:"active"`
	SortOrder     int              `json:"sort_order"`
	Durations     []DurationUpsert `json:"durations"`
}

type DurationUpsert struct {
	Months          int  `json:"months"`
	DiscountPercent int  `json:"discount_percent"`
	Active          bool `json:"active"`
	SortOrder       int  `json:"sort_order"`
}

type PackageView struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	MonthlyPrice int64          `json:"monthly_price"`
	AnnualPrice  int64          `json:"annual_price"`
	Currency     string         `json:"currency"`
	Durations    []DurationView `json:"durations"`
}

type DurationView struct {
	Months          int    `json:"months"`
	DiscountPercent int    `json:"discount_percent"`
	Total           int64  `json:"total,omitempty"`
	Display         string `json:"display"`
}

type AddonView struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	UnitPrice int64  `json:"unit_price"`
	Currency  string `json:"currency"`
}

type TemplateView struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type ProviderView struct {
	Provider    string `json:"provider"`
	Environment string `json:"environment"`
	Enabled     bool   `json:"enabled"`
}
