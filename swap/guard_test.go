package swap

import (
	"context"
	"errors"
	"testing"

	"instant-swap-go/ledger"
)

func TestValidateAssetsRejectsSameAsset(t *testing.T) {
	l := ledger.NewMemory()
	l.Open("a", "USDC", 0)
	l.Open("b", "USDC", 9_999_999) // balances are irrelevant to the guard

	err := ValidateAssets(context.Background(), l, "a", "b")
	if !errors.Is(err, ErrSwapAssetsCannotMatch) {
		t.Fatalf("expected ErrSwapAssetsCannotMatch, got %v", err)
	}
}

func TestValidateAssetsAcceptsDistinctAssets(t *testing.T) {
	l := ledger.NewMemory()
	l.Open("a", "ETH", 0)
	l.Open("b", "USDC", 0)

	if err := ValidateAssets(context.Background(), l, "a", "b"); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestValidateAssetsPropagatesLookupError(t *testing.T) {
	l := ledger.NewMemory()
	l.Open("a", "ETH", 0)

	err := ValidateAssets(context.Background(), l, "a", "missing")
	if !errors.Is(err, ledger.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}
