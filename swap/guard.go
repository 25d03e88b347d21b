package swap

import (
	"context"

	"instant-swap-go/ledger"
)

// ValidateAssets checks that two accounts hold different underlying asset
// types. Applied before any quote computation; a swap between identical
// assets is a caller error, not a venue condition.
func ValidateAssets(ctx context.Context, l ledger.Ledger, a, b ledger.AccountRef) error {
	assetA, err := l.AssetOf(ctx, a)
	if err != nil {
		return err
	}
	assetB, err := l.AssetOf(ctx, b)
	if err != nil {
		return err
	}
	if assetA == assetB {
		return ErrSwapAssetsCannotMatch
	}
	return nil
}
