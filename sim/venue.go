// Package sim provides a scripted in-process venue for tests and dry runs.
// Take orders match deterministically against configured resting levels and
// settle through the in-memory ledger, mirroring how the real venue moves
// vault balances atomically with the call.
package sim

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"instant-swap-go/ledger"
	"instant-swap-go/venue"
)

// Level is resting liquidity: Qty base units offered at Price quote per base.
type Level struct {
	Price uint64
	Qty   uint64
}

// Book holds one market's resting orders. Asks ascend, bids descend.
type Book struct {
	Asks []Level
	Bids []Level
}

// Venue simulates the external order-matching service.
type Venue struct {
	Ledger *ledger.Memory

	mu    sync.Mutex
	books map[ledger.AccountRef]*Book
}

func NewVenue(l *ledger.Memory) *Venue {
	return &Venue{
		Ledger: l,
		books:  make(map[ledger.AccountRef]*Book),
	}
}

// SetBook installs the resting levels for a market, replacing any previous
// book.
func (v *Venue) SetBook(market ledger.AccountRef, book Book) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b := book
	v.books[market] = &b
}

// Atomic extends the ledger's all-or-nothing unit to the resting books: a
// failed fn restores the levels its orders consumed along with every balance,
// so a rolled-back swap leaves the market exactly as it found it. Implements
// ledger.Host.
func (v *Venue) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := v.snapshotBooks()
	err := v.Ledger.Atomic(ctx, fn)
	if err != nil {
		v.restoreBooks(snap)
	}
	return err
}

func (v *Venue) snapshotBooks() map[ledger.AccountRef]Book {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := make(map[ledger.AccountRef]Book, len(v.books))
	for market, b := range v.books {
		snap[market] = Book{
			Asks: append([]Level(nil), b.Asks...),
			Bids: append([]Level(nil), b.Bids...),
		}
	}
	return snap
}

func (v *Venue) restoreBooks(snap map[ledger.AccountRef]Book) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.books = make(map[ledger.AccountRef]*Book, len(snap))
	for market, b := range snap {
		restored := b
		v.books[market] = &restored
	}
}

// BestAsk returns the lowest resting ask. Implements venue.PriceSource.
func (v *Venue) BestAsk(market ledger.AccountRef) (uint64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.books[market]
	if !ok || len(b.Asks) == 0 {
		return 0, false
	}
	return b.Asks[0].Price, true
}

// BestBid returns the highest resting bid. Implements venue.PriceSource.
func (v *Venue) BestBid(market ledger.AccountRef) (uint64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.books[market]
	if !ok || len(b.Bids) == 0 {
		return 0, false
	}
	return b.Bids[0].Price, true
}

// SendTake crosses the order against resting levels inside the price bound,
// enforces the order's min quantities, and settles wallet and vault balances
// in one step. Unmatched remainder is discarded, never rested.
func (v *Venue) SendTake(ctx context.Context, order venue.TakeOrder) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if order.LimitPrice == 0 {
		return fmt.Errorf("limit price must be positive")
	}
	book, ok := v.books[order.Market.Market]
	if !ok {
		return fmt.Errorf("unknown market %s", order.Market.Market)
	}

	var filledBase, filledQuote uint64
	switch order.Side {
	case venue.SideBid:
		filledBase, filledQuote = matchBid(book, order)
	case venue.SideAsk:
		filledBase, filledQuote = matchAsk(book, order)
	default:
		return fmt.Errorf("unknown side %s", order.Side)
	}

	if filledBase < order.MinBaseQty {
		return fmt.Errorf("insufficient liquidity: base fill %d below min %d", filledBase, order.MinBaseQty)
	}
	if filledQuote < order.MinNativeQuoteQty {
		return fmt.Errorf("insufficient liquidity: quote fill %d below min %d", filledQuote, order.MinNativeQuoteQty)
	}

	if order.Side == venue.SideBid {
		return v.settle(order.QuoteWallet, filledQuote, order.Market.QuoteVault,
			order.Market.BaseVault, filledBase, order.Market.BaseWallet)
	}
	return v.settle(order.Market.BaseWallet, filledBase, order.Market.BaseVault,
		order.Market.QuoteVault, filledQuote, order.QuoteWallet)
}

// settle moves payAmount from payer into payVault and recvAmount out of
// recvVault into receiver.
func (v *Venue) settle(payer ledger.AccountRef, payAmount uint64, payVault ledger.AccountRef,
	recvVault ledger.AccountRef, recvAmount uint64, receiver ledger.AccountRef) error {
	if err := v.Ledger.Debit(payer, payAmount); err != nil {
		return err
	}
	if err := v.Ledger.Credit(payVault, payAmount); err != nil {
		return err
	}
	if err := v.Ledger.Debit(recvVault, recvAmount); err != nil {
		return err
	}
	return v.Ledger.Credit(receiver, recvAmount)
}

// matchBid walks asks at or below the limit price, bounded by the base and
// quote caps and the match-iteration limit.
func matchBid(book *Book, order venue.TakeOrder) (filledBase, filledQuote uint64) {
	remainingBase := order.MaxBaseQty
	remainingQuote := order.MaxQuoteQtyInclFee
	iterations := int(order.MaxMatchIterations)

	for len(book.Asks) > 0 && iterations > 0 {
		level := &book.Asks[0]
		if level.Price == 0 || level.Price > order.LimitPrice {
			break
		}
		take := level.Qty
		if take > remainingBase {
			take = remainingBase
		}
		if byQuote := remainingQuote / level.Price; take > byQuote {
			take = byQuote
		}
		if take == 0 {
			break
		}
		cost, ok := mulNoWrap(take, level.Price)
		if !ok {
			break
		}
		filledBase += take
		filledQuote += cost
		remainingBase -= take
		remainingQuote -= cost
		level.Qty -= take
		if level.Qty == 0 {
			book.Asks = book.Asks[1:]
		}
		iterations--
	}
	return filledBase, filledQuote
}

// matchAsk walks bids at or above the limit price.
func matchAsk(book *Book, order venue.TakeOrder) (filledBase, filledQuote uint64) {
	remainingBase := order.MaxBaseQty
	iterations := int(order.MaxMatchIterations)

	for len(book.Bids) > 0 && iterations > 0 {
		level := &book.Bids[0]
		if level.Price < order.LimitPrice {
			break
		}
		take := level.Qty
		if take > remainingBase {
			take = remainingBase
		}
		if take == 0 {
			break
		}
		proceeds, ok := mulNoWrap(take, level.Price)
		if !ok || filledQuote+proceeds < filledQuote {
			break
		}
		filledBase += take
		filledQuote += proceeds
		remainingBase -= take
		level.Qty -= take
		if level.Qty == 0 {
			book.Bids = book.Bids[1:]
		}
		iterations--
	}
	return filledBase, filledQuote
}

// mulNoWrap multiplies level quantities without silent wraparound; a walk
// that would overflow stops at the offending level instead.
func mulNoWrap(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
