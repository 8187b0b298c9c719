package model

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type PaymentProvider string

const (
	ProviderMidtrans PaymentProvider = "midtrans"
	ProviderPaypal   PaymentProvider = "paypal"
	ProviderXendit   PaymentProvider = "xendit"
)

type ProviderEnvironment string

const (
	EnvSandbox    ProviderEnvironment = "sandbox"
	EnvProduction ProviderEnvironment = "production"
)

// Order is a single checkout attempt, from domain selection through payment.
// Rows are created pending and moved to paid/failed exactly once; the
// application never deletes them.
type Order struct {
	OrderID        string `gorm:"primaryKey;size:64;not null"`
	DraftID        string `gorm:"size:64;index"`
	Domain         string `gorm:"size:255"`
	TemplateSlug   string `gorm:"size:64"`
	PackageSlug    string `gorm:"size:64;index;not null"`
	DurationMonths int    `gorm:"not null"`

	// quantity map and boolean map, keyed by addon slug
	AddonQuantities datatypes.JSON `gorm:"type:json"`
	AddonToggles    datatypes.JSON `gorm:"type:json"`

	CustomerName  string `gorm:"size:255"`
	CustomerEmail string `gorm:"size:255;index"`
	CustomerPhone string `gorm:"size:64"`

	PromoCode      string `gorm:"size:64"`
	DiscountAmount int64  `gorm:"not null;default:0"` // smallest currency unit
	TotalAmount    int64  `gorm:"not null"`           // smallest currency unit
	Currency       string `gorm:"size:8;not null"`

	Provider    PaymentProvider     `gorm:"size:16;index;not null"`
	Environment ProviderEnvironment `gorm:"size:16;not null"`
	Status      OrderStatus         `gorm:"size:16;index;not null"`

	// provider-specific identifiers
	ProviderRef   string `gorm:"size:128;index"` // transaction / paypal order / invoice id
	RedirectURL   string `gorm:"size:512"`       // snap redirect, approval or invoice url
	PayerRef      string `gorm:"size:128"`       // payer id / payment channel
	FailureReason string `gorm:"size:512"`

	// last raw vendor payload seen for this order, for diagnostics
	ProviderPayload datatypes.JSON `gorm:"type:json"`

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckoutDraft is the server-side copy of the in-progress order the
// checkout wizard reads and writes between steps.
type CheckoutDraft struct {
	DraftID        string `gorm:"primaryKey;size:64;not null"`
	Domain         string `gorm:"size:255"`
	TemplateSlug   string `gorm:"size:64"`
	PackageSlug    string `gorm:"size:64"`
	DurationMonths int

	AddonQuantities datatypes.JSON `gorm:"type:json"`
	AddonToggles    datatypes.JSON `gorm:"type:json"`

	CustomerName  string `gorm:"size:255"`
	CustomerEmail string `gorm:"size:255"`
	CustomerPhone string `gorm:"size:64"`

	PromoCode string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Package is a subscription plan sold on the site.
type Package struct {
	Slug          string `gorm:"primaryKey;size:64;not null"`
	Name          string `gorm:"size:255;not null"`
	Description   string `gorm:"size:1024"`
	MonthlyPrice  int64  `gorm:"not null"` // smallest currency unit
	AnnualPrice   int64  `gorm:"not null"`
	OverridePrice *int64 // manual price, wins over computed discount
	Currency      string `gorm:"size:8;not null"`
	Active        bool   `gorm:"not null;default:true"`
	SortOrder     int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PackageDuration maps a commitment length to its discount percent.
type PackageDuration struct {
	ID              uint   `gorm:"primaryKey"`
	PackageSlug     string `gorm:"size:64;uniqueIndex:idx_pkg_months;not null"`
	Months          int    `gorm:"uniqueIndex:idx_pkg_months;not null"`
	DiscountPercent int    `gorm:"not null;default:0"`
	Active          bool   `gorm:"not null;default:true"`
	SortOrder       int    `gorm:"not null;default:0"`
}

type AddonKind string

const (
	AddonQuantity AddonKind = "quantity"
	AddonToggle   AddonKind = "toggle"
)

type Addon struct {
	Slug      string    `gorm:"primaryKey;size:64;not null"`
	Name      string    `gorm:"size:255;not null"`
	Kind      AddonKind `gorm:"size:16;not null"`
	UnitPrice int64     `gorm:"not null"`
	Currency  string    `gorm:"size:8;not null"`
	Active    bool      `gorm:"not null;default:true"`
	SortOrder int       `gorm:"not null;default:0"`
}

type Template struct {
	Slug       string `gorm:"primaryKey;size:64;not null"`
	Name       string `gorm:"size:255;not null"`
	PreviewURL string `gorm:"size:512"`
	Active     bool   `gorm:"not null;default:true"`
	SortOrder  int    `gorm:"not null;default:0"`
}

type PromoKind string

const (
	PromoPercent PromoKind = "percent"
	PromoFixed   PromoKind = "fixed"
)

type PromoCode struct {
	Code      string    `gorm:"primaryKey;size:64;not null"`
	Kind      PromoKind `gorm:"size:16;not null"`
	Value     int64     `gorm:"not null"` // percent (0-100) or fixed amount
	Active    bool      `gorm:"not null;default:true"`
	StartsAt  *time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// WebsiteSetting is the generic key-value store behind both public content
// configuration and non-secret integration toggles.
type WebsiteSetting struct {
	Key       string `gorm:"primaryKey;size:128;not null"`
	Value     string `gorm:"type:text"`
	UpdatedBy string `gorm:"size:64"`
	UpdatedAt time.Time
}

// IntegrationSecret holds per-provider, per-environment credentials. The
// value is stored as-is; Plaintext records that no encryption was applied.
type IntegrationSecret struct {
	ID          uint                `gorm:"primaryKey"`
	Provider    PaymentProvider     `gorm:"size:16;uniqueIndex:idx_secret;not null"`
	Environment ProviderEnvironment `gorm:"size:16;uniqueIndex:idx_secret;not null"`
	Name        string              `gorm:"size:64;uniqueIndex:idx_secret;not null"`
	Value       string              `gorm:"type:text;not null"`
	Plaintext   bool                `gorm:"not null;default:true"`
	UpdatedBy   string              `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WebhookEvent records vendor event ids so replayed deliveries are skipped.
type WebhookEvent struct {
	EventID     string          `gorm:"primaryKey;size:128;not null"`
	Provider    PaymentProvider `gorm:"size:16;index"`
	EventType   string          `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	ActorID   string `gorm:"size:64;index"`
	Action    string `gorm:"size:64;not null"`
	Target    string `gorm:"size:128"`
	Detail    string `gorm:"size:1024"`
	CreatedAt time.Time
}

type UserRole struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	Role      string `gorm:"size:32;not null"` // admin, super_admin
	CreatedAt time.Time
}
