package venue

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"instant-swap-go/ledger"
)

// RESTClient submits take orders to the venue over HTTP. HTTPClient is
// injectable so tests can use httptest; no real network call happens by
// default.
type RESTClient struct {
	BaseURL    string
	APIKey     string
	Secret     string
	HTTPClient *http.Client
	Limiter    RateLimiter
}

type takeOrderPayload struct {
	Market             string  `json:"market"`
	QuoteWallet        string  `json:"quoteWallet"`
	BaseWallet         string  `json:"baseWallet"`
	Side               string  `json:"side"`
	LimitPrice         uint64  `json:"limitPrice"`
	MaxBaseQty         uint64  `json:"maxBaseQty"`
	MaxQuoteQtyInclFee uint64  `json:"maxQuoteQtyInclFee"`
	MinBaseQty         uint64  `json:"minBaseQty"`
	MinNativeQuoteQty  uint64  `json:"minNativeQuoteQty"`
	MaxMatchIterations uint16  `json:"maxMatchIterations"`
	FeeDiscount        *string `json:"feeDiscount,omitempty"`
}

type rejectResp struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// SendTake POSTs the order to /v1/take. The venue answers 200 on settled
// execution; any other status is its rejection, surfaced verbatim.
func (c *RESTClient) SendTake(ctx context.Context, order TakeOrder) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	payload := takeOrderPayload{
		Market:             string(order.Market.Market),
		QuoteWallet:        string(order.QuoteWallet),
		BaseWallet:         string(order.Market.BaseWallet),
		Side:               string(order.Side),
		LimitPrice:         order.LimitPrice,
		MaxBaseQty:         order.MaxBaseQty,
		MaxQuoteQtyInclFee: order.MaxQuoteQtyInclFee,
		MinBaseQty:         order.MinBaseQty,
		MinNativeQuoteQty:  order.MinNativeQuoteQty,
		MaxMatchIterations: order.MaxMatchIterations,
	}
	if order.FeeDiscount != nil {
		fd := string(*order.FeeDiscount)
		payload.FeeDiscount = &fd
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := c.BaseURL + "/v1/take"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("X-SIGNATURE", signPayload(body, c.Secret))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var rej rejectResp
		if json.Unmarshal(raw, &rej) == nil && rej.Message != "" {
			return fmt.Errorf("venue status %d: %s", resp.StatusCode, rej.Message)
		}
		return fmt.Errorf("venue status %d", resp.StatusCode)
	}
	return nil
}

// Balance reads an account balance from /v1/account/balance.
func (c *RESTClient) Balance(ctx context.Context, ref ledger.AccountRef) (uint64, error) {
	var out struct {
		Balance uint64 `json:"balance"`
	}
	if err := c.get(ctx, "/v1/account/balance", map[string]string{"account": string(ref)}, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

// AssetOf reads an account's asset identifier from /v1/account/asset.
func (c *RESTClient) AssetOf(ctx context.Context, ref ledger.AccountRef) (ledger.AssetID, error) {
	var out struct {
		Asset string `json:"asset"`
	}
	if err := c.get(ctx, "/v1/account/asset", map[string]string{"account": string(ref)}, &out); err != nil {
		return "", err
	}
	return ledger.AssetID(out.Asset), nil
}

// get issues a signed query: params are sorted, signed and appended as the
// query string.
func (c *RESTClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	query, sig := SignParams(params, c.Secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query+"&signature="+sig, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("venue status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func signPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignParams builds a sorted query string and its HMAC signature, for venues
// that authenticate query parameters instead of request bodies.
func SignParams(params map[string]string, secret string) (string, string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	query := strings.Join(parts, "&")
	return query, signPayload([]byte(query), secret)
}

// NewDefaultHTTPClient provides an http.Client with a sane timeout.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
