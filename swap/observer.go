package swap

import (
	"context"

	"instant-swap-go/ledger"
)

// Result reports the realized amounts of a settled swap, derived from balance
// deltas. The venue's take-order call returns no fill quantities, so the
// ledger is the only trustworthy source.
type Result struct {
	AmountIn  uint64
	AmountOut uint64
}

// Observer brackets a dispatch with balance reads on the spending and
// receiving wallets.
type Observer struct {
	Ledger ledger.Ledger
}

// BalancePair holds the pre-dispatch balances of the two wallets.
type BalancePair struct {
	From uint64
	To   uint64
}

// Before reads both wallet balances prior to dispatch.
func (o Observer) Before(ctx context.Context, from, to ledger.AccountRef) (BalancePair, error) {
	fromBal, err := o.Ledger.Balance(ctx, from)
	if err != nil {
		return BalancePair{}, err
	}
	toBal, err := o.Ledger.Balance(ctx, to)
	if err != nil {
		return BalancePair{}, err
	}
	return BalancePair{From: fromBal, To: toBal}, nil
}

// After re-reads both balances and returns the realized deltas. The spending
// wallet must not have grown and the receiving wallet must not have shrunk;
// either indicates a venue or ledger inconsistency, reported as
// ErrBalanceUnderflow rather than a wrapped negative amount.
func (o Observer) After(ctx context.Context, from, to ledger.AccountRef, before BalancePair) (Result, error) {
	fromBal, err := o.Ledger.Balance(ctx, from)
	if err != nil {
		return Result{}, err
	}
	toBal, err := o.Ledger.Balance(ctx, to)
	if err != nil {
		return Result{}, err
	}
	amountIn, err := subU64(before.From, fromBal)
	if err != nil {
		return Result{}, err
	}
	amountOut, err := subU64(toBal, before.To)
	if err != nil {
		return Result{}, err
	}
	return Result{AmountIn: amountIn, AmountOut: amountOut}, nil
}
