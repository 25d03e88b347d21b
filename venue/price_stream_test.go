package venue

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// A plain ws:// endpoint (local test venue) must connect as-is; the scheme
// comes from the endpoint, not a hardcoded wss.
func TestPriceStreamConnectsOverWS(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream" {
			t.Errorf("path = %s, want /stream", r.URL.Path)
		}
		if got := r.URL.Query().Get("markets"); got != "eth-usdc" {
			t.Errorf("markets = %q, want eth-usdc", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"market":"eth-usdc","bid":99,"ask":101}`))
		<-done
	}))
	defer ts.Close()
	defer close(done)

	stream := NewPriceStream("ws://" + strings.TrimPrefix(ts.URL, "http://"))
	if err := stream.Subscribe("eth-usdc"); err != nil {
		t.Fatalf("subscribe err: %v", err)
	}
	book := NewPriceBook()
	go func() { _ = stream.Run(book) }()

	deadline := time.After(2 * time.Second)
	for {
		if ask, ok := book.BestAsk("eth-usdc"); ok && ask == 101 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("no ticker update received")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
