package venue

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"instant-swap-go/ledger"
)

// PriceBook caches the latest best bid/ask per market from the venue's ticker
// stream. It implements PriceSource for the transitive slippage budgeter.
type PriceBook struct {
	mu    sync.RWMutex
	bids  map[ledger.AccountRef]uint64
	asks  map[ledger.AccountRef]uint64
	stamp map[ledger.AccountRef]time.Time

	// MaxAge invalidates quotes older than this; zero means no expiry.
	MaxAge time.Duration
}

func NewPriceBook() *PriceBook {
	return &PriceBook{
		bids:  make(map[ledger.AccountRef]uint64),
		asks:  make(map[ledger.AccountRef]uint64),
		stamp: make(map[ledger.AccountRef]time.Time),
	}
}

// Update records a ticker observation for a market.
func (b *PriceBook) Update(market ledger.AccountRef, bid, ask uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bid > 0 {
		b.bids[market] = bid
	}
	if ask > 0 {
		b.asks[market] = ask
	}
	b.stamp[market] = time.Now()
}

func (b *PriceBook) BestBid(market ledger.AccountRef) (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stale(market) {
		return 0, false
	}
	p, ok := b.bids[market]
	return p, ok && p > 0
}

func (b *PriceBook) BestAsk(market ledger.AccountRef) (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stale(market) {
		return 0, false
	}
	p, ok := b.asks[market]
	return p, ok && p > 0
}

func (b *PriceBook) stale(market ledger.AccountRef) bool {
	if b.MaxAge <= 0 {
		return false
	}
	ts, ok := b.stamp[market]
	return !ok || time.Since(ts) > b.MaxAge
}

type tickerMsg struct {
	Market string `json:"market"`
	Bid    uint64 `json:"bid"`
	Ask    uint64 `json:"ask"`
}

// PriceStream subscribes to the venue's combined ticker websocket and feeds a
// PriceBook. Minimal skeleton: connect plus a read loop; reconnect policy
// belongs to the caller.
type PriceStream struct {
	Endpoint string // e.g. wss://venue.example.com
	Dialer   *websocket.Dialer
	markets  []string
}

func NewPriceStream(endpoint string) *PriceStream {
	return &PriceStream{
		Endpoint: endpoint,
		Dialer:   websocket.DefaultDialer,
	}
}

func (s *PriceStream) Subscribe(market ledger.AccountRef) error {
	if market == "" {
		return fmt.Errorf("market required")
	}
	s.markets = append(s.markets, string(market))
	return nil
}

// Run connects and pumps ticker messages into book until the connection drops.
func (s *PriceStream) Run(book *PriceBook) error {
	if len(s.markets) == 0 {
		return fmt.Errorf("no markets subscribed")
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/stream"
	q := u.Query()
	q.Set("markets", strings.Join(s.markets, "/"))
	u.RawQuery = q.Encode()

	conn, _, err := s.Dialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg tickerMsg
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if book != nil && msg.Market != "" {
			book.Update(ledger.AccountRef(msg.Market), msg.Bid, msg.Ask)
		}
	}
}
