package pricing

import (
	"errors"
	"testing"
)

func TestPackageTotal(t *testing.T) {
	t.Parallel()

	discounts := map[int]int{1: 0, 3: 5, 6: 10, 12: 20}

	pkg := PackagePricing{
		MonthlyPrice: 150000,
		AnnualPrice:  1500000,
		Currency:     "IDR",
	}

	t.Run("single month has no discount", func(t *testing.T) {
		got, err := PackageTotal(pkg, 1, discounts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 150000 {
			t.Fatalf("expected 150000, got %d", got)
		}
	})

	t.Run("six months applies 10 percent", func(t *testing.T) {
		got, err := PackageTotal(pkg, 6, discounts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 810000 {
			t.Fatalf("expected 810000, got %d", got)
		}
	})

	t.Run("twelve months uses annual base", func(t *testing.T) {
		got, err := PackageTotal(pkg, 12, discounts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 1500000 * 0.80
		if got != 1200000 {
			t.Fatalf("expected 1200000, got %d", got)
		}
	})

	t.Run("missing duration returns ErrNoDuration", func(t *testing.T) {
		_, err := PackageTotal(pkg, 9, discounts)
		if !errors.Is(err, ErrNoDuration) {
			t.Fatalf("expected ErrNoDuration, got %v", err)
		}
	})

	t.Run("zero months returns ErrNoDuration", func(t *testing.T) {
		_, err := PackageTotal(pkg, 0, discounts)
		if !errors.Is(err, ErrNoDuration) {
			t.Fatalf("expected ErrNoDuration, got %v", err)
		}
	})

	t.Run("override price wins over computed discount", func(t *testing.T) {
		override := int64(777000)
		p := pkg
		p.OverridePrice = &override

		got, err := PackageTotal(p, 6, discounts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 777000 {
			t.Fatalf("expected override 777000, got %d", got)
		}
	})

	t.Run("fractional result rounds half up", func(t *testing.T) {
		p := PackagePricing{MonthlyPrice: 333, Currency: "USD"}
		// 333 * 3 = 999, 5% off -> 949.05 -> 949
		got, err := PackageTotal(p, 3, discounts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 949 {
			t.Fatalf("expected 949, got %d", got)
		}
	})
}

func TestApplyPromo(t *testing.T) {
	t.Parallel()

	t.Run("percent promo", func(t *testing.T) {
		got := ApplyPromo(200000, &Promo{Kind: PromoPercent, Value: 10})
		if got != 20000 {
			t.Fatalf("expected 20000, got %d", got)
		}
	})

	t.Run("fixed promo", func(t *testing.T) {
		got := ApplyPromo(200000, &Promo{Kind: PromoFixed, Value: 50000})
		if got != 50000 {
			t.Fatalf("expected 50000, got %d", got)
		}
	})

	t.Run("fixed promo larger than subtotal clamps", func(t *testing.T) {
		got := ApplyPromo(30000, &Promo{Kind: PromoFixed, Value: 50000})
		if got != 30000 {
			t.Fatalf("expected clamp to 30000, got %d", got)
		}
	})

	t.Run("nil promo", func(t *testing.T) {
		if got := ApplyPromo(200000, nil); got != 0 {
			t.Fatalf("expected 0, got %d", got)
		}
	})

	t.Run("percent above 100 clamps", func(t *testing.T) {
		got := ApplyPromo(200000, &Promo{Kind: PromoPercent, Value: 150})
		if got != 200000 {
			t.Fatalf("expected 200000, got %d", got)
		}
	})
}

func TestCompute(t *testing.T) {
	t.Parallel()

	in := QuoteInput{
		Package: PackagePricing{
			MonthlyPrice: 100000,
			AnnualPrice:  1000000,
			Currency:     "IDR",
		},
		Months:    3,
		Discounts: map[int]int{1: 0, 3: 10},
		Addons: []AddonLine{
			{Slug: "extra-page", UnitPrice: 25000, Quantity: 2},
			{Slug: "priority-support", UnitPrice: 40000, Quantity: 1},
			{Slug: "ignored", UnitPrice: 99999, Quantity: 0},
		},
		Promo: &Promo{Kind: PromoPercent, Value: 10},
	}

	q, err := Compute(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if q.PackageTotal != 270000 {
		t.Errorf("package total: expected 270000, got %d", q.PackageTotal)
	}
	if q.AddonTotal != 90000 {
		t.Errorf("addon total: expected 90000, got %d", q.AddonTotal)
	}
	if q.Subtotal != 360000 {
		t.Errorf("subtotal: expected 360000, got %d", q.Subtotal)
	}
	if q.PromoDiscount != 36000 {
		t.Errorf("promo discount: expected 36000, got %d", q.PromoDiscount)
	}
	if q.Total != 324000 {
		t.Errorf("total: expected 324000, got %d", q.Total)
	}
	if q.Currency != "IDR" {
		t.Errorf("currency: expected IDR, got %s", q.Currency)
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount   int64
		currency string
		want     string
	}{
		{12050, "USD", "120.50"},
		{100, "USD", "1.00"},
		{150000, "IDR", "150000"},
		{0, "IDR", "0"},
	}

	for _, tc := range cases {
		if got := FormatAmount(tc.amount, tc.currency); got != tc.want {
			t.Errorf("FormatAmount(%d, %s): expected %s, got %s", tc.amount, tc.currency, tc.want, got)
		}
	}
}
