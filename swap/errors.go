package swap

import "errors"

var (
	// ErrSwapAssetsCannotMatch rejects a swap whose two sides resolve to the
	// same underlying asset.
	ErrSwapAssetsCannotMatch = errors.New("the assets being swapped must differ")
	// ErrInvalidLimitPrice means the derived limit price floors to zero.
	ErrInvalidLimitPrice = errors.New("the implied limit price is invalid")
	// ErrZeroAmount rejects a request whose input amount is zero.
	ErrZeroAmount = errors.New("swap amount must be positive")
	// ErrOverflow means a quote parameter exceeds the representable range.
	ErrOverflow = errors.New("arithmetic overflow deriving quote parameters")
	// ErrBalanceUnderflow means a balance moved against its expected direction.
	ErrBalanceUnderflow = errors.New("balance moved against expected direction")
	// ErrVenueRejected wraps a refusal from the external venue.
	ErrVenueRejected = errors.New("venue rejected the take order")
	// ErrPriceUnavailable means no leg-2 price could be read to budget the
	// transitive slippage split.
	ErrPriceUnavailable = errors.New("no price available for slippage budget")
)
