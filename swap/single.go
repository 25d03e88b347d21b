package swap

import (
	"context"

	"instant-swap-go/infrastructure/logger"
	"instant-swap-go/ledger"
	"instant-swap-go/venue"
)

// Request is one caller-supplied swap: direction, input amount, minimum
// acceptable output, and an optional fee-discount account reference.
type Request struct {
	Side         Side
	Amount       uint64
	AmountOutMin uint64
	FeeDiscount  *ledger.AccountRef
}

// Recorder receives swap outcomes for metrics export. Implementations must be
// cheap; they are called on the swap path.
type Recorder interface {
	SwapSettled(side string, amountIn, amountOut uint64)
	SwapRejected(side string, stage string)
}

// Engine composes the guard, quote calculator, dispatcher and balance
// observer into the user-facing swap operations. Log, Rec, Host and Prices
// are optional; Host and Prices are required only for transitive swaps.
type Engine struct {
	Ledger ledger.Ledger
	Venue  venue.Venue
	Host   ledger.Host
	Prices venue.PriceSource
	Log    *logger.Logger
	Rec    Recorder

	// Leg2SlippageBps pads the observed leg-2 price when budgeting the leg-1
	// minimum output of a transitive swap.
	Leg2SlippageBps uint64

	sm *StateMachine
}

func (e *Engine) machine() *StateMachine {
	if e.sm == nil {
		e.sm = NewStateMachine()
	}
	return e.sm
}

// Swap executes one immediate take-order swap on a single market and returns
// the realized amounts. Any error aborts the whole operation with no partial
// effect: balance reads bracket a single atomic dispatch.
func (e *Engine) Swap(ctx context.Context, market venue.MarketAccounts, quoteWallet ledger.AccountRef, req Request) (Result, error) {
	state := StateValidated
	if err := ValidateAssets(ctx, e.Ledger, market.BaseWallet, quoteWallet); err != nil {
		return Result{}, e.reject(req.Side, state, err)
	}

	params, err := ComputeQuote(req.Side, req.Amount, req.AmountOutMin)
	if err != nil {
		return Result{}, e.reject(req.Side, state, err)
	}
	if state, err = e.advance(state, StateQuoted); err != nil {
		return Result{}, err
	}

	// Side determines which wallet spends and which receives.
	var from, to ledger.AccountRef
	switch req.Side {
	case Bid:
		from, to = quoteWallet, market.BaseWallet
	default:
		from, to = market.BaseWallet, quoteWallet
	}

	obs := Observer{Ledger: e.Ledger}
	before, err := obs.Before(ctx, from, to)
	if err != nil {
		return Result{}, e.reject(req.Side, state, err)
	}

	if err := (Dispatcher{Venue: e.Venue}).Submit(ctx, market, quoteWallet, req.Side, params, req.FeeDiscount); err != nil {
		return Result{}, e.reject(req.Side, state, err)
	}
	if state, err = e.advance(state, StateDispatched); err != nil {
		return Result{}, err
	}

	result, err := obs.After(ctx, from, to, before)
	if err != nil {
		return Result{}, e.reject(req.Side, state, err)
	}
	if state, err = e.advance(state, StateSettled); err != nil {
		return Result{}, err
	}

	if e.Log != nil {
		e.Log.LogSwap("swap_settled", map[string]interface{}{
			"side":       req.Side.String(),
			"limitPrice": params.LimitPrice,
			"amountIn":   result.AmountIn,
			"amountOut":  result.AmountOut,
			"state":      string(state),
		})
	}
	if e.Rec != nil {
		e.Rec.SwapSettled(req.Side.String(), result.AmountIn, result.AmountOut)
	}
	return result, nil
}

func (e *Engine) advance(from, to State) (State, error) {
	if err := e.machine().ValidateTransition(from, to); err != nil {
		return from, err
	}
	return to, nil
}

func (e *Engine) reject(side Side, stage State, err error) error {
	if e.Log != nil {
		e.Log.LogError(err, map[string]interface{}{
			"side":  side.String(),
			"stage": string(stage),
		})
	}
	if e.Rec != nil {
		e.Rec.SwapRejected(side.String(), string(stage))
	}
	return err
}
