package swap

import (
	"context"
	"errors"
	"testing"

	"instant-swap-go/ledger"
	"instant-swap-go/sim"
	"instant-swap-go/venue"
)

// countingVenue wraps a Venue and records submitted orders.
type countingVenue struct {
	inner  venue.Venue
	orders []venue.TakeOrder
}

func (c *countingVenue) SendTake(ctx context.Context, order venue.TakeOrder) error {
	c.orders = append(c.orders, order)
	if c.inner == nil {
		return nil
	}
	return c.inner.SendTake(ctx, order)
}

type market1Env struct {
	ledger *ledger.Memory
	venue  *sim.Venue
	market venue.MarketAccounts
	quote  ledger.AccountRef
}

// newMarketEnv builds an ETH/USDC market with funded user wallets and vaults.
func newMarketEnv(t *testing.T) market1Env {
	t.Helper()
	l := ledger.NewMemory()
	l.Open("user-eth", "ETH", 1000)
	l.Open("user-usdc", "USDC", 5000)
	l.Open("m1-base-vault", "ETH", 100000)
	l.Open("m1-quote-vault", "USDC", 100000)

	v := sim.NewVenue(l)
	m := venue.MarketAccounts{
		Market:     "ETH-USDC",
		BaseVault:  "m1-base-vault",
		QuoteVault: "m1-quote-vault",
		BaseWallet: "user-eth",
	}
	return market1Env{ledger: l, venue: v, market: m, quote: "user-usdc"}
}

func TestEngineSwapBid(t *testing.T) {
	env := newMarketEnv(t)
	env.venue.SetBook("ETH-USDC", sim.Book{Asks: []sim.Level{{Price: 1, Qty: 1000}}})

	e := &Engine{Ledger: env.ledger, Venue: env.venue}
	// Spend 1000 USDC, expect at least 1000 ETH units: limit price 1.
	result, err := e.Swap(context.Background(), env.market, env.quote, Request{
		Side:         Bid,
		Amount:       1000,
		AmountOutMin: 1000,
	})
	if err != nil {
		t.Fatalf("swap err: %v", err)
	}
	if result.AmountIn != 1000 || result.AmountOut != 1000 {
		t.Fatalf("result = %+v, want in=1000 out=1000", result)
	}

	ctx := context.Background()
	ethBal, _ := env.ledger.Balance(ctx, "user-eth")
	usdcBal, _ := env.ledger.Balance(ctx, "user-usdc")
	if ethBal != 2000 || usdcBal != 4000 {
		t.Fatalf("balances = eth %d / usdc %d, want 2000 / 4000", ethBal, usdcBal)
	}
}

func TestEngineSwapAskPartialFill(t *testing.T) {
	env := newMarketEnv(t)
	// Only 600 base units of resting bid demand at price 100.
	env.venue.SetBook("ETH-USDC", sim.Book{Bids: []sim.Level{{Price: 100, Qty: 600}}})

	e := &Engine{Ledger: env.ledger, Venue: env.venue}
	result, err := e.Swap(context.Background(), env.market, env.quote, Request{
		Side:         Ask,
		Amount:       1000,
		AmountOutMin: 10,
	})
	if err != nil {
		t.Fatalf("swap err: %v", err)
	}
	// Realized amounts come from balance deltas, not the requested amount.
	if result.AmountIn != 600 || result.AmountOut != 60000 {
		t.Fatalf("result = %+v, want in=600 out=60000", result)
	}
}

func TestEngineSwapSameAssetRejectedBeforeVenue(t *testing.T) {
	l := ledger.NewMemory()
	l.Open("user-usdc-a", "USDC", 1000)
	l.Open("user-usdc-b", "USDC", 1000)

	counter := &countingVenue{}
	e := &Engine{Ledger: l, Venue: counter}
	m := venue.MarketAccounts{Market: "X", BaseWallet: "user-usdc-a"}

	_, err := e.Swap(context.Background(), m, "user-usdc-b", Request{
		Side:         Bid,
		Amount:       1000,
		AmountOutMin: 1000,
	})
	if !errors.Is(err, ErrSwapAssetsCannotMatch) {
		t.Fatalf("expected ErrSwapAssetsCannotMatch, got %v", err)
	}
	if len(counter.orders) != 0 {
		t.Fatalf("no venue call should be issued, got %d", len(counter.orders))
	}
}

func TestEngineSwapVenueRejection(t *testing.T) {
	env := newMarketEnv(t)
	// Empty book: the min bounds cannot be met.
	env.venue.SetBook("ETH-USDC", sim.Book{})

	e := &Engine{Ledger: env.ledger, Venue: env.venue}
	_, err := e.Swap(context.Background(), env.market, env.quote, Request{
		Side:         Bid,
		Amount:       1000,
		AmountOutMin: 1000,
	})
	if !errors.Is(err, ErrVenueRejected) {
		t.Fatalf("expected ErrVenueRejected, got %v", err)
	}

	// A rejected dispatch leaves balances untouched.
	ctx := context.Background()
	usdcBal, _ := env.ledger.Balance(ctx, "user-usdc")
	if usdcBal != 5000 {
		t.Fatalf("usdc balance = %d, want 5000", usdcBal)
	}
}

func TestEngineSwapForwardsFeeDiscount(t *testing.T) {
	env := newMarketEnv(t)
	env.venue.SetBook("ETH-USDC", sim.Book{Asks: []sim.Level{{Price: 1, Qty: 1000}}})
	counter := &countingVenue{inner: env.venue}

	e := &Engine{Ledger: env.ledger, Venue: counter}
	discount := ledger.AccountRef("fee-tier-1")
	_, err := e.Swap(context.Background(), env.market, env.quote, Request{
		Side:         Bid,
		Amount:       1000,
		AmountOutMin: 1000,
		FeeDiscount:  &discount,
	})
	if err != nil {
		t.Fatalf("swap err: %v", err)
	}
	if len(counter.orders) != 1 {
		t.Fatalf("expected one venue call, got %d", len(counter.orders))
	}
	order := counter.orders[0]
	if order.FeeDiscount == nil || *order.FeeDiscount != "fee-tier-1" {
		t.Fatalf("fee discount not forwarded: %+v", order.FeeDiscount)
	}
	if order.MaxMatchIterations != venue.MaxMatchIterations {
		t.Fatalf("max match iterations = %d, want %d", order.MaxMatchIterations, venue.MaxMatchIterations)
	}
}
