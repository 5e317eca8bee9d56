package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/auth"
	"github.com/rickgao/futures-flipper/internal/calc"
	"github.com/rickgao/futures-flipper/internal/config"
	"github.com/rickgao/futures-flipper/internal/exchange"
	"github.com/rickgao/futures-flipper/internal/model"
)

// Read-only smoke check against the futures REST API. Never places orders.
func main() {
	configPath := flag.String("config", "", "optional config file (enables balance and position checks)")
	symbol := flag.String("symbol", config.DefaultSymbol, "symbol to inspect when no config is given")
	flag.Parse()

	baseURL := config.DefaultBaseURL
	trading := config.TradingConfig{
		Symbol:             *symbol,
		QuoteAsset:         config.DefaultQuoteAsset,
		Leverage:           config.DefaultLeverage,
		Utilization:        config.DefaultUtilization,
		StopFraction:       config.DefaultStopFraction,
		TakeProfitFraction: config.DefaultTakeProfitFraction,
	}

	var creds *auth.Credentials
	if *configPath != "" {
		cfg, err := config.LoadWithDefaults(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		baseURL = cfg.Exchange.BaseURL
		trading = cfg.Trading
		if cfg.Exchange.APIKey != "" && cfg.Exchange.APISecret != "" {
			creds, err = auth.NewCredentials(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.RecvWindow)
			if err != nil {
				log.Fatalf("credentials: %v", err)
			}
		}
	}

	client := exchange.NewClient(baseURL, creds, exchange.WithTimeout(30*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Price
	fmt.Printf("=== Testing GetMarkPrice (%s) ===\n", trading.Symbol)
	price, err := client.GetMarkPrice(ctx, trading.Symbol)
	if err != nil {
		log.Fatalf("GetMarkPrice failed: %v", err)
	}
	fmt.Printf("Price: %s\n", price)

	// Test 2: Symbol rules
	fmt.Printf("\n=== Testing GetSymbolInfo (%s) ===\n", trading.Symbol)
	info, err := client.GetSymbolInfo(ctx, trading.Symbol)
	if err != nil {
		log.Fatalf("GetSymbolInfo failed: %v", err)
	}
	fmt.Printf("Status: %s, quote: %s, filters: %d\n", info.Status, info.QuoteAsset, len(info.Filters))

	step, err := client.GetSymbolStepSize(ctx, trading.Symbol)
	if err != nil {
		log.Fatalf("GetSymbolStepSize failed: %v", err)
	}
	prec, err := calc.DerivePrecision(step)
	if err != nil {
		log.Fatalf("DerivePrecision failed: %v", err)
	}
	fmt.Printf("Step size: %s (precision %d)\n", step, prec)

	// Test 3: Sizing preview for a notional balance
	fmt.Println("\n=== Sizing preview (1000 quote) ===")
	utilization := decimal.NewFromFloat(trading.Utilization)
	qty, err := calc.EntryQuantity(decimal.NewFromInt(1000), trading.Leverage, price, utilization, prec)
	if err != nil {
		fmt.Printf("Quantity: %v\n", err)
	} else {
		fmt.Printf("Quantity: %s\n", qty)
	}
	for _, dir := range []model.Direction{model.Long, model.Short} {
		stop, _ := calc.StopPrice(dir, price, decimal.NewFromFloat(trading.StopFraction), trading.Precision())
		target, _ := calc.TakeProfitPrice(dir, price, decimal.NewFromFloat(trading.TakeProfitFraction), trading.Precision())
		fmt.Printf("  %-5s stop %s, take profit %s\n", dir, stop, target)
	}

	if creds == nil {
		fmt.Println("\nNo credentials configured; skipping account checks.")
		return
	}

	// Test 4: Balance
	fmt.Printf("\n=== Testing GetBalance (%s) ===\n", trading.QuoteAsset)
	balance, err := client.GetBalance(ctx, trading.QuoteAsset)
	if err != nil {
		log.Fatalf("GetBalance failed: %v", err)
	}
	fmt.Printf("Available: %s\n", balance)

	// Test 5: Position
	fmt.Printf("\n=== Testing GetPosition (%s) ===\n", trading.Symbol)
	pos, err := client.GetPosition(ctx, trading.Symbol)
	if err != nil {
		log.Fatalf("GetPosition failed: %v", err)
	}
	switch {
	case pos.IsPositive():
		fmt.Printf("Long %s\n", pos)
	case pos.IsNegative():
		fmt.Printf("Short %s\n", pos.Abs())
	default:
		fmt.Println("Flat")
	}

	fmt.Println("\n=== All checks passed ===")
}
