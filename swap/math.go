package swap

import "math/bits"

// mulU64 multiplies with an explicit overflow check; amounts must never wrap.
func mulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// subU64 subtracts b from a, failing instead of wrapping when b > a.
func subU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrBalanceUnderflow
	}
	return a - b, nil
}

// mulDivCeil returns ceil(a*b/den) with overflow checking. den must be > 0.
func mulDivCeil(a, b, den uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrOverflow
	}
	quo, rem := bits.Div64(hi, lo, den)
	if rem > 0 {
		if quo == ^uint64(0) {
			return 0, ErrOverflow
		}
		quo++
	}
	return quo, nil
}
