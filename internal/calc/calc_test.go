package calc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerivePrecision(t *testing.T) {
	tests := []struct {
		step    string
		want    int32
		wantErr bool
	}{
		{"0.1", 1, false},
		{"0.001", 3, false},
		{"1", 0, false},
		{"0.00100", 3, false},
		{"10", -1, false},
		{"0.25", 0, true},
		{"0", 0, true},
		{"-0.1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			got, err := DerivePrecision(d(tt.step))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DerivePrecision(%s) expected error, got %d", tt.step, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DerivePrecision(%s) unexpected error: %v", tt.step, err)
			}
			if got != tt.want {
				t.Errorf("DerivePrecision(%s) = %d, want %d", tt.step, got, tt.want)
			}
		})
	}
}

func TestEntryQuantity(t *testing.T) {
	t.Run("full margin", func(t *testing.T) {
		got, err := EntryQuantity(d("1000"), 5, d("100"), d("0.95"), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(d("47.5")) {
			t.Errorf("quantity = %s, want 47.5", got)
		}
	})

	t.Run("rounds to step precision", func(t *testing.T) {
		// 123.45 * 3 * 0.95 / 7.3 = 48.19623...
		got, err := EntryQuantity(d("123.45"), 3, d("7.3"), d("0.95"), 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(d("48.2")) {
			t.Errorf("quantity = %s, want 48.20", got)
		}
	})

	t.Run("integer step", func(t *testing.T) {
		got, err := EntryQuantity(d("1000"), 5, d("100"), d("0.95"), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(d("48")) {
			t.Errorf("quantity = %s, want 48", got)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := EntryQuantity(d("0.01"), 1, d("30000"), d("0.95"), 3)
		var insufficient *InsufficientBalanceError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected *InsufficientBalanceError, got %T (%v)", err, err)
		}
		if !insufficient.Quantity.IsZero() {
			t.Errorf("Quantity = %s, want 0", insufficient.Quantity)
		}
	})

	t.Run("zero balance", func(t *testing.T) {
		_, err := EntryQuantity(decimal.Zero, 5, d("100"), d("0.95"), 1)
		var insufficient *InsufficientBalanceError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected *InsufficientBalanceError, got %v", err)
		}
	})

	t.Run("zero price", func(t *testing.T) {
		if _, err := EntryQuantity(d("1000"), 5, decimal.Zero, d("0.95"), 1); err == nil {
			t.Fatal("expected error for zero price")
		}
	})
}

func TestTriggerPrices(t *testing.T) {
	tests := []struct {
		name     string
		dir      model.Direction
		entry    string
		stopFrac string
		tpFrac   string
		wantStop string
		wantTP   string
	}{
		{"long", model.Long, "100", "0.20", "0.005", "80.00", "100.50"},
		{"short", model.Short, "100", "0.20", "0.005", "120.00", "99.50"},
		{"long rounds", model.Long, "142.37", "0.20", "0.005", "113.90", "143.08"},
		{"short rounds", model.Short, "142.37", "0.20", "0.005", "170.84", "141.66"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, err := StopPrice(tt.dir, d(tt.entry), d(tt.stopFrac), 2)
			if err != nil {
				t.Fatalf("StopPrice: %v", err)
			}
			if !stop.Equal(d(tt.wantStop)) {
				t.Errorf("StopPrice = %s, want %s", stop, tt.wantStop)
			}

			tp, err := TakeProfitPrice(tt.dir, d(tt.entry), d(tt.tpFrac), 2)
			if err != nil {
				t.Fatalf("TakeProfitPrice: %v", err)
			}
			if !tp.Equal(d(tt.wantTP)) {
				t.Errorf("TakeProfitPrice = %s, want %s", tp, tt.wantTP)
			}
		})
	}

	t.Run("invalid direction", func(t *testing.T) {
		if _, err := StopPrice("sideways", d("100"), d("0.2"), 2); err == nil {
			t.Error("StopPrice expected error")
		}
		if _, err := TakeProfitPrice("", d("100"), d("0.005"), 2); err == nil {
			t.Error("TakeProfitPrice expected error")
		}
	})
}
