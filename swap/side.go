package swap

import "instant-swap-go/venue"

// Side is the swap direction. Bid spends the quote asset to acquire the base
// asset; Ask spends the base asset to acquire the quote asset.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

func (s Side) venueSide() venue.Side {
	if s == Bid {
		return venue.SideBid
	}
	return venue.SideAsk
}
