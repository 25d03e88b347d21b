package swap

// QuoteParameters are the derived take-order bounds: the worst acceptable
// price and the quantity caps/floors the venue must respect. Consumed once
// per order submission.
type QuoteParameters struct {
	LimitPrice         uint64
	MaxBaseQty         uint64
	MaxQuoteQtyInclFee uint64
	MinBaseQty         uint64
	MinNativeQuoteQty  uint64
}

// ComputeQuote derives take-order parameters from the swap direction, the
// input amount and the minimum acceptable output.
//
// Floor division is deliberate: it biases the effective limit price to be at
// least as favorable to the taker as requested, at the cost of potentially
// leaving the fill short of amount. A limit price that floors to zero cannot
// express the trade and is rejected.
func ComputeQuote(side Side, amount, amountOutMin uint64) (QuoteParameters, error) {
	if amount == 0 {
		return QuoteParameters{}, ErrZeroAmount
	}
	switch side {
	case Bid:
		// Spending quote to buy base: amount is the quote-side spending cap.
		limitPrice := amountOutMin / amount
		if limitPrice == 0 {
			return QuoteParameters{}, ErrInvalidLimitPrice
		}
		minNativeQuoteQty, err := mulU64(amountOutMin, limitPrice)
		if err != nil {
			return QuoteParameters{}, err
		}
		return QuoteParameters{
			LimitPrice:         limitPrice,
			MaxBaseQty:         amount / limitPrice,
			MaxQuoteQtyInclFee: amount,
			MinBaseQty:         amountOutMin,
			MinNativeQuoteQty:  minNativeQuoteQty,
		}, nil
	case Ask:
		// Spending base to buy quote: amount is the base-side quantity cap.
		if amountOutMin == 0 {
			return QuoteParameters{}, ErrInvalidLimitPrice
		}
		limitPrice := amount / amountOutMin
		if limitPrice == 0 {
			return QuoteParameters{}, ErrInvalidLimitPrice
		}
		maxQuoteQtyInclFee, err := mulU64(amount, limitPrice)
		if err != nil {
			return QuoteParameters{}, err
		}
		return QuoteParameters{
			LimitPrice:         limitPrice,
			MaxBaseQty:         amount,
			MaxQuoteQtyInclFee: maxQuoteQtyInclFee,
			MinBaseQty:         amountOutMin / limitPrice,
			MinNativeQuoteQty:  amountOutMin,
		}, nil
	default:
		return QuoteParameters{}, ErrInvalidLimitPrice
	}
}
