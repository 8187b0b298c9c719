package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amounts are carried as int64 in the currency's smallest displayed unit
// (cents for USD, whole rupiah for IDR) and only formatted at the edges.

var ErrNoDuration = errors.New("no price configured for the selected duration")

type PackagePricing struct {
	MonthlyPrice  int64
	AnnualPrice   int64
	OverridePrice *int64 // manual price for the full term, wins over computed discount
	Currency      string
}

type AddonLine struct {
	Slug      string
	UnitPrice int64
	Quantity  int64
}

type PromoKind string

const (
	PromoPercent PromoKind = "percent"
	PromoFixed   PromoKind = "fixed"
)

type Promo struct {
	Kind  PromoKind
	Value int64 // percent (0-100) or fixed amount
}

type QuoteInput struct {
	Package   PackagePricing
	Months    int
	Discounts map[int]int // months -> discount percent
	Addons    []AddonLine
	Promo     *Promo
}

type Quote struct {
	PackageTotal  int64
	AddonTotal    int64
	Subtotal      int64
	PromoDiscount int64
	Total         int64
	Currency      string
}

// PackageTotal computes the price of a package over the chosen commitment:
// base x duration x (1 - discount/100), never below zero. Durations without
// a discount row are unsellable and return ErrNoDuration; the UI shows them
// as a dash. A manual override price covers the full term as-is.
func PackageTotal(p PackagePricing, months int, discounts map[int]int) (int64, error) {
	if months <= 0 {
		return 0, ErrNoDuration
	}
	pct, ok := discounts[months]
	if !ok {
		return 0, ErrNoDuration
	}

	if p.OverridePrice != nil {
		if *p.OverridePrice < 0 {
			return 0, nil
		}
		return *p.OverridePrice, nil
	}

	var base decimal.Decimal
	if months%12 == 0 && p.AnnualPrice > 0 {
		base = decimal.NewFromInt(p.AnnualPrice).Mul(decimal.NewFromInt(int64(months / 12)))
	} else {
		base = decimal.NewFromInt(p.MonthlyPrice).Mul(decimal.NewFromInt(int64(months)))
	}

	factor := decimal.NewFromInt(100 - int64(pct)).Div(decimal.NewFromInt(100))
	total := base.Mul(factor).Round(0)
	if total.IsNegative() {
		return 0, nil
	}
	return total.IntPart(), nil
}

// AddonTotal sums add-on lines. Toggle add-ons are passed with quantity 1.
func AddonTotal(lines []AddonLine) int64 {
	var sum int64
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sum += l.UnitPrice * l.Quantity
	}
	return sum
}

// ApplyPromo returns the discount a promo takes off a subtotal. The result
// is clamped so the payable amount never goes negative.
func ApplyPromo(subtotal int64, promo *Promo) int64 {
	if promo == nil || subtotal <= 0 {
		return 0
	}
	var discount decimal.Decimal
	switch promo.Kind {
	case PromoPercent:
		pct := promo.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(pct)).
			Div(decimal.NewFromInt(100)).
			Round(0)
	case PromoFixed:
		discount = decimal.NewFromInt(promo.Value)
	default:
		return 0
	}
	if discount.IsNegative() {
		return 0
	}
	if discount.GreaterThan(decimal.NewFromInt(subtotal)) {
		return subtotal
	}
	return discount.IntPart()
}

// Compute produces the full checkout quote for one order.
func Compute(in QuoteInput) (Quote, error) {
	pkgTotal, err := PackageTotal(in.Package, in.Months, in.Discounts)
	if err != nil {
		return Quote{}, err
	}

	addonTotal := AddonTotal(in.Addons)
	subtotal := pkgTotal + addonTotal
	promoDiscount := ApplyPromo(subtotal, in.Promo)

	total := subtotal - promoDiscount
	if total < 0 {
		total = 0
	}

	return Quote{
		PackageTotal:  pkgTotal,
		AddonTotal:    addonTotal,
		Subtotal:      subtotal,
		PromoDiscount: promoDiscount,
		Total:         total,
		Currency:      in.Package.Currency,
	}, nil
}

// Exponent is the number of decimal places the currency displays.
func Exponent(currency string) int32 {
	switch currency {
	case "IDR", "JPY":
		return 0
	default:
		return 2
	}
}

// FormatAmount renders a smallest-unit amount the way vendor APIs expect it,
// e.g. 12050 USD cents -> "120.50", 150000 IDR -> "150000".
func FormatAmount(amount int64, currency string) string {
	exp := Exponent(currency)
	return decimal.New(amount, -exp).StringFixed(exp)
}
