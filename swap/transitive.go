package swap

import (
	"context"
	"errors"

	"instant-swap-go/ledger"
	"instant-swap-go/venue"
)

// TransitiveRequest swaps the base asset of From for the base asset of To via
// the quote asset the two markets share: leg 1 sells A for B on From (Ask),
// leg 2 buys C with the realized B on To (Bid).
type TransitiveRequest struct {
	From        venue.MarketAccounts
	To          venue.MarketAccounts
	QuoteWallet ledger.AccountRef
	// Amount is the A input; AmountOutMin is the end-to-end minimum C output.
	Amount       uint64
	AmountOutMin uint64
	FeeDiscount  *ledger.AccountRef
}

const bpsDenominator = 10000

// ErrAtomicHostRequired means the engine was not given an all-or-nothing
// execution unit, without which a transitive swap cannot be run safely.
var ErrAtomicHostRequired = errors.New("transitive swap requires an atomic execution host")

// SwapTransitive chains two take-order swaps as one all-or-nothing operation.
// Leg 2's input is leg 1's observed output, which is unknowable before leg 1
// settles; both legs run inside one atomic unit so a leg-2 failure unwinds
// leg 1's settlement as well. The returned result reports A consumed and C
// received.
func (e *Engine) SwapTransitive(ctx context.Context, req TransitiveRequest) (Result, error) {
	if e.Host == nil {
		return Result{}, ErrAtomicHostRequired
	}
	if err := ValidateAssets(ctx, e.Ledger, req.From.BaseWallet, req.To.BaseWallet); err != nil {
		return Result{}, e.reject(Ask, StateValidated, err)
	}

	leg1MinOut, err := e.legOneFloor(req)
	if err != nil {
		return Result{}, e.reject(Ask, StateValidated, err)
	}

	var result Result
	err = e.Host.Atomic(ctx, func(ctx context.Context) error {
		leg1, err := e.Swap(ctx, req.From, req.QuoteWallet, Request{
			Side:         Ask,
			Amount:       req.Amount,
			AmountOutMin: leg1MinOut,
			FeeDiscount:  req.FeeDiscount,
		})
		if err != nil {
			return err
		}
		if e.Log != nil {
			e.Log.LogLeg("leg1_settled", map[string]interface{}{
				"amountIn":  leg1.AmountIn,
				"amountOut": leg1.AmountOut,
			})
		}

		// Leg-2 input is the settled leg-1 output, never the pre-trade estimate.
		leg2, err := e.Swap(ctx, req.To, req.QuoteWallet, Request{
			Side:         Bid,
			Amount:       leg1.AmountOut,
			AmountOutMin: req.AmountOutMin,
			FeeDiscount:  req.FeeDiscount,
		})
		if err != nil {
			return err
		}
		if e.Log != nil {
			e.Log.LogLeg("leg2_settled", map[string]interface{}{
				"amountIn":  leg2.AmountIn,
				"amountOut": leg2.AmountOut,
			})
		}

		result = Result{AmountIn: leg1.AmountIn, AmountOut: leg2.AmountOut}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// legOneFloor budgets the leg-1 minimum output in intermediate units: enough
// B that buying the caller's minimum C on the second market still succeeds if
// leg 2 fills at its worst permitted price. The leg-2 best ask is read before
// leg 1 is submitted and padded by Leg2SlippageBps; without a readable price
// the request is rejected rather than budgeted blind.
func (e *Engine) legOneFloor(req TransitiveRequest) (uint64, error) {
	if e.Prices == nil {
		return 0, ErrPriceUnavailable
	}
	ask, ok := e.Prices.BestAsk(req.To.Market)
	if !ok || ask == 0 {
		return 0, ErrPriceUnavailable
	}
	padded, err := mulDivCeil(ask, bpsDenominator+e.Leg2SlippageBps, bpsDenominator)
	if err != nil {
		return 0, err
	}
	return mulU64(req.AmountOutMin, padded)
}
