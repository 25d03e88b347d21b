package swap

import (
	"context"
	"fmt"

	"instant-swap-go/ledger"
	"instant-swap-go/venue"
)

// Dispatcher builds take-order instructions from resolved quote parameters
// and submits them to the external venue. Venue failures surface verbatim;
// retry policy, if any, belongs to the caller.
type Dispatcher struct {
	Venue venue.Venue
}

// Submit sends one immediate take order. MaxMatchIterations is pinned at the
// maximum representable value so the venue fills whatever is immediately
// matchable and never rests a remainder.
func (d Dispatcher) Submit(ctx context.Context, market venue.MarketAccounts, quoteWallet ledger.AccountRef, side Side, params QuoteParameters, feeDiscount *ledger.AccountRef) error {
	order := venue.TakeOrder{
		Market:             market,
		QuoteWallet:        quoteWallet,
		Side:               side.venueSide(),
		LimitPrice:         params.LimitPrice,
		MaxBaseQty:         params.MaxBaseQty,
		MaxQuoteQtyInclFee: params.MaxQuoteQtyInclFee,
		MinBaseQty:         params.MinBaseQty,
		MinNativeQuoteQty:  params.MinNativeQuoteQty,
		MaxMatchIterations: venue.MaxMatchIterations,
		FeeDiscount:        feeDiscount,
	}
	if err := d.Venue.SendTake(ctx, order); err != nil {
		return fmt.Errorf("%w: %v", ErrVenueRejected, err)
	}
	return nil
}
