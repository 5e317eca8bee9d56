package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSignal_Direction(t *testing.T) {
	tests := []struct {
		signal  Signal
		want    Direction
		wantErr bool
	}{
		{SignalBuy, Long, false},
		{SignalSell, Short, false},
		{SignalNone, "", true},
		{Signal("hold"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.signal.String(), func(t *testing.T) {
			got, err := tt.signal.Direction()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Direction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Direction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSignal(t *testing.T) {
	for _, v := range []string{"", "buy", "sell"} {
		s, err := ParseSignal(v)
		if err != nil {
			t.Errorf("ParseSignal(%q) unexpected error: %v", v, err)
		}
		if string(s) != v {
			t.Errorf("ParseSignal(%q) = %q", v, s)
		}
	}

	if _, err := ParseSignal("BUY"); err == nil {
		t.Error("ParseSignal(\"BUY\") expected error, got nil")
	}
}

func TestSignal_String(t *testing.T) {
	if SignalNone.String() != "none" {
		t.Errorf("SignalNone.String() = %q, want %q", SignalNone.String(), "none")
	}
	if SignalBuy.String() != "buy" {
		t.Errorf("SignalBuy.String() = %q, want %q", SignalBuy.String(), "buy")
	}
}

func TestDirection_Sides(t *testing.T) {
	if Long.EntrySide() != SideBuy || Long.ExitSide() != SideSell {
		t.Errorf("long sides = %s/%s, want BUY/SELL", Long.EntrySide(), Long.ExitSide())
	}
	if Short.EntrySide() != SideSell || Short.ExitSide() != SideBuy {
		t.Errorf("short sides = %s/%s, want SELL/BUY", Short.EntrySide(), Short.ExitSide())
	}
}

func TestOrderIntent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		intent  OrderIntent
		wantErr bool
	}{
		{
			name:   "market order",
			intent: OrderIntent{Symbol: "SOLUSDT", Side: SideBuy, Type: OrderMarket, Quantity: decimal.RequireFromString("1.5")},
		},
		{
			name:    "market order without quantity",
			intent:  OrderIntent{Symbol: "SOLUSDT", Side: SideBuy, Type: OrderMarket},
			wantErr: true,
		},
		{
			name: "close-position stop",
			intent: OrderIntent{
				Symbol: "SOLUSDT", Side: SideSell, Type: OrderStopMarket,
				StopPrice: decimal.NewFromInt(80), ClosePosition: true,
			},
		},
		{
			name:    "stop without price",
			intent:  OrderIntent{Symbol: "SOLUSDT", Side: SideSell, Type: OrderStopMarket, ClosePosition: true},
			wantErr: true,
		},
		{
			name:    "missing symbol",
			intent:  OrderIntent{Side: SideBuy, Type: OrderMarket, Quantity: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "unknown type",
			intent:  OrderIntent{Symbol: "SOLUSDT", Side: SideBuy, Type: "LIMIT", Quantity: decimal.NewFromInt(1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
