package venue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"instant-swap-go/ledger"
)

func TestRESTClientSendTake(t *testing.T) {
	var got takeOrderPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/take" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-SIGNATURE") == "" {
			t.Fatalf("missing signature")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		w.WriteHeader(200)
	}))
	defer ts.Close()

	cli := &RESTClient{
		BaseURL:    ts.URL,
		APIKey:     "key",
		Secret:     "secret",
		HTTPClient: ts.Client(),
	}
	discount := ledger.AccountRef("fee-tier-1")
	err := cli.SendTake(context.Background(), TakeOrder{
		Market:             MarketAccounts{Market: "ETH-USDC", BaseWallet: "wallet-eth"},
		QuoteWallet:        "wallet-usdc",
		Side:               SideAsk,
		LimitPrice:         100,
		MaxBaseQty:         1000,
		MaxQuoteQtyInclFee: 100000,
		MinNativeQuoteQty:  10,
		MaxMatchIterations: MaxMatchIterations,
		FeeDiscount:        &discount,
	})
	if err != nil {
		t.Fatalf("send take err: %v", err)
	}
	if got.Side != "ASK" || got.LimitPrice != 100 || got.MaxMatchIterations != 65535 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.FeeDiscount == nil || *got.FeeDiscount != "fee-tier-1" {
		t.Fatalf("fee discount not forwarded: %+v", got.FeeDiscount)
	}
}

func TestRESTClientSendTakeOmitsFeeDiscount(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "feeDiscount") {
			t.Fatalf("feeDiscount should be omitted: %s", body)
		}
		w.WriteHeader(200)
	}))
	defer ts.Close()

	cli := &RESTClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	err := cli.SendTake(context.Background(), TakeOrder{Side: SideBid, LimitPrice: 2})
	if err != nil {
		t.Fatalf("send take err: %v", err)
	}
}

func TestRESTClientSendTakeRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(422)
		io.WriteString(w, `{"code":1203,"msg":"insufficient liquidity"}`)
	}))
	defer ts.Close()

	cli := &RESTClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	err := cli.SendTake(context.Background(), TakeOrder{Side: SideBid, LimitPrice: 2})
	if err == nil || !strings.Contains(err.Error(), "insufficient liquidity") {
		t.Fatalf("expected venue rejection message, got %v", err)
	}
}

func TestRESTClientBalanceAndAsset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("account"); got != "wallet-usdc" {
			t.Fatalf("account param = %q", got)
		}
		wantQuery, wantSig := SignParams(map[string]string{"account": "wallet-usdc"}, "topsecret")
		if r.URL.RawQuery != wantQuery+"&signature="+wantSig {
			t.Fatalf("query not signed: %s", r.URL.RawQuery)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/balance"):
			io.WriteString(w, `{"balance":12345}`)
		case strings.HasSuffix(r.URL.Path, "/asset"):
			io.WriteString(w, `{"asset":"USDC"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	cli := &RESTClient{BaseURL: ts.URL, Secret: "topsecret", HTTPClient: ts.Client()}
	bal, err := cli.Balance(context.Background(), "wallet-usdc")
	if err != nil || bal != 12345 {
		t.Fatalf("balance = %d, err = %v", bal, err)
	}
	asset, err := cli.AssetOf(context.Background(), "wallet-usdc")
	if err != nil || asset != "USDC" {
		t.Fatalf("asset = %s, err = %v", asset, err)
	}
}

func TestPriceBook(t *testing.T) {
	book := NewPriceBook()
	if _, ok := book.BestAsk("ETH-USDC"); ok {
		t.Fatal("expected no price before update")
	}
	book.Update("ETH-USDC", 99, 101)
	bid, ok := book.BestBid("ETH-USDC")
	if !ok || bid != 99 {
		t.Fatalf("bid = %d, ok = %v", bid, ok)
	}
	ask, ok := book.BestAsk("ETH-USDC")
	if !ok || ask != 101 {
		t.Fatalf("ask = %d, ok = %v", ask, ok)
	}
}
