package venue

import (
	"context"

	"instant-swap-go/ledger"
)

// MaxMatchIterations bounds how many resting orders the venue may cross before
// giving up. Fixed at the maximum representable value so a take order fills as
// much as is immediately matchable and never rests a remainder.
const MaxMatchIterations uint16 = 65535

// Side mirrors the venue's order direction on the wire.
type Side string

const (
	SideBid Side = "BID"
	SideAsk Side = "ASK"
)

// MarketAccounts bundles the opaque references to one venue market: the book
// state, the settlement vaults and their signing authority, plus the user's
// base-asset wallet. All refs are externally owned; this package only forwards
// them.
type MarketAccounts struct {
	Market       ledger.AccountRef
	RequestQueue ledger.AccountRef
	EventQueue   ledger.AccountRef
	Bids         ledger.AccountRef
	Asks         ledger.AccountRef
	BaseVault    ledger.AccountRef
	QuoteVault   ledger.AccountRef
	VaultSigner  ledger.AccountRef
	BaseWallet   ledger.AccountRef
}

// TakeOrder is the immediate take-order instruction submitted to the venue.
// The venue settles matched value atomically with the call and reports only
// success or failure; fill amounts are never part of the response.
type TakeOrder struct {
	Market             MarketAccounts
	QuoteWallet        ledger.AccountRef
	Side               Side
	LimitPrice         uint64
	MaxBaseQty         uint64
	MaxQuoteQtyInclFee uint64
	MinBaseQty         uint64
	MinNativeQuoteQty  uint64
	MaxMatchIterations uint16
	// FeeDiscount is an optional trailing reference for reduced-fee tiers.
	FeeDiscount *ledger.AccountRef
}

// Venue is the external order-matching service. SendTake either executes and
// settles the take order in one step or returns the venue's rejection.
type Venue interface {
	SendTake(ctx context.Context, order TakeOrder) error
}

// PriceSource serves the most recent best bid/ask for a market, keyed by the
// market account ref. Used by the transitive swap's slippage budgeter.
type PriceSource interface {
	BestAsk(market ledger.AccountRef) (uint64, bool)
	BestBid(market ledger.AccountRef) (uint64, bool)
}
