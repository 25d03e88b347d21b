package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"instant-swap-go/config"
	"instant-swap-go/infrastructure/alert"
	"instant-swap-go/infrastructure/logger"
	"instant-swap-go/ledger"
	"instant-swap-go/metrics"
	"instant-swap-go/sim"
	"instant-swap-go/swap"
	"instant-swap-go/venue"

	"github.com/coreos/go-systemd/v22/daemon"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the config file")
	listenAddr := flag.String("listen", ":8080", "swap API listen address")
	dryRun := flag.Bool("dryRun", false, "execute against the in-process simulated venue instead of the real one")
	restRate := flag.Float64("restRate", 5, "REST limiter: tokens per second")
	restBurst := flag.Int("restBurst", 10, "REST limiter: max burst")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	if cfg.Metrics.Addr != "" {
		metrics.StartMetricsServer(cfg.Metrics.Addr)
	}

	alerts := alert.NewManager([]alert.Channel{alert.LoggerChannel{Log: lg}}, 30*time.Second)
	srv := &server{cfg: cfg, log: lg, rec: metrics.Recorder{}, alerts: alerts}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *dryRun {
		mem := ledger.NewMemory()
		simVenue := sim.NewVenue(mem)
		if err := seedSim(cfg, mem, simVenue); err != nil {
			log.Fatalf("seed dry-run venue: %v", err)
		}
		srv.led = mem
		srv.ven = simVenue
		srv.host = simVenue
		srv.prices = simVenue
		lg.LogSwap("dry_run_venue_ready", map[string]interface{}{"markets": len(cfg.Markets)})
	} else {
		client := &venue.RESTClient{
			BaseURL:    cfg.Venue.BaseURL,
			APIKey:     cfg.Venue.APIKey,
			Secret:     cfg.Venue.APISecret,
			HTTPClient: venue.NewDefaultHTTPClient(),
			Limiter:    venue.NewTokenBucketLimiter(*restRate, *restBurst),
		}
		srv.led = client
		srv.ven = client
		srv.prices = startPriceStream(ctx, cfg, lg, alerts)
	}

	go watchConfig(ctx, *cfgPath, srv, lg)

	mux := http.NewServeMux()
	mux.HandleFunc("/swap", srv.handleSwap)
	mux.HandleFunc("/swap/transitive", srv.handleTransitive)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	api := &http.Server{Addr: *listenAddr, Handler: mux}
	go func() {
		lg.LogSwap("api_listen", map[string]interface{}{"addr": *listenAddr})
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.LogError(err, map[string]interface{}{"addr": *listenAddr})
			cancel()
		}
	}()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		lg.LogError(err, map[string]interface{}{"stage": "sd_notify"})
	}
	go watchdogLoop(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = api.Shutdown(shutdownCtx)
	lg.LogSwap("swapd_exit", nil)
}

// watchdogLoop pets the systemd watchdog at half the configured interval.
// No-op when the unit has no WatchdogSec.
func watchdogLoop(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

func watchConfig(ctx context.Context, path string, srv *server, lg *logger.Logger) {
	w := config.Watcher{Path: path, Cooldown: time.Second}
	err := w.Start(ctx, func(updated config.AppConfig) {
		srv.setConfig(updated)
		lg.LogSwap("config_reloaded", map[string]interface{}{
			"leg2SlippageBps": updated.Swap.Leg2SlippageBps,
			"markets":         len(updated.Markets),
		})
	})
	if err != nil && ctx.Err() == nil {
		lg.LogError(err, map[string]interface{}{"stage": "config_watch"})
	}
}

// startPriceStream subscribes every configured market and keeps the stream
// alive with a flat reconnect delay.
func startPriceStream(ctx context.Context, cfg config.AppConfig, lg *logger.Logger, alerts *alert.Manager) *venue.PriceBook {
	book := venue.NewPriceBook()
	if cfg.Swap.PriceMaxAgeMs > 0 {
		book.MaxAge = time.Duration(cfg.Swap.PriceMaxAgeMs) * time.Millisecond
	}
	stream := venue.NewPriceStream(cfg.Venue.WSEndpoint)
	for _, mc := range cfg.Markets {
		if err := stream.Subscribe(ledger.AccountRef(mc.Market)); err != nil {
			lg.LogError(err, map[string]interface{}{"market": mc.Market})
		}
	}
	go func() {
		for ctx.Err() == nil {
			if err := stream.Run(book); err != nil {
				lg.LogError(err, map[string]interface{}{"stage": "price_stream"})
				_ = alerts.Warning("price stream disconnected", map[string]interface{}{"error": err.Error()})
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()
	return book
}

// seedSim opens ledger accounts and installs flat resting liquidity for every
// configured market so dry-run swaps execute end to end. Asset identifiers
// come from the market name (BASE-QUOTE).
func seedSim(cfg config.AppConfig, mem *ledger.Memory, v *sim.Venue) error {
	const depth = 1_000_000_000
	quoteOpened := false
	for name, mc := range cfg.Markets {
		base, quote, ok := strings.Cut(name, "-")
		if !ok {
			return fmt.Errorf("market %s: name must be BASE-QUOTE for dry run", name)
		}
		mem.Open(ledger.AccountRef(mc.BaseWallet), ledger.AssetID(base), depth)
		mem.Open(ledger.AccountRef(mc.BaseVault), ledger.AssetID(base), depth)
		mem.Open(ledger.AccountRef(mc.QuoteVault), ledger.AssetID(quote), depth)
		if !quoteOpened {
			mem.Open(ledger.AccountRef(cfg.QuoteWallet), ledger.AssetID(quote), depth)
			quoteOpened = true
		}
		v.SetBook(ledger.AccountRef(mc.Market), sim.Book{
			Asks: []sim.Level{{Price: 1, Qty: depth}},
			Bids: []sim.Level{{Price: 1, Qty: depth}},
		})
	}
	return nil
}

// server carries the wired dependencies and a reloadable config snapshot.
// Engines are built per request so a reload never races an in-flight swap.
type server struct {
	mu  sync.RWMutex
	cfg config.AppConfig

	led    ledger.Ledger
	ven    venue.Venue
	host   ledger.Host
	prices venue.PriceSource
	log    *logger.Logger
	rec    swap.Recorder
	alerts *alert.Manager
}

func (s *server) setConfig(cfg config.AppConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *server) snapshot() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *server) engine(cfg config.AppConfig) *swap.Engine {
	return &swap.Engine{
		Ledger:          s.led,
		Venue:           s.ven,
		Host:            s.host,
		Prices:          s.prices,
		Log:             s.log,
		Rec:             s.rec,
		Leg2SlippageBps: cfg.Swap.Leg2SlippageBps,
	}
}

type swapRequest struct {
	Market       string  `json:"market"`
	Side         string  `json:"side"`
	Amount       uint64  `json:"amount"`
	AmountOutMin uint64  `json:"amountOutMin"`
	FeeDiscount  *string `json:"feeDiscount,omitempty"`
}

type transitiveRequest struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Amount       uint64  `json:"amount"`
	AmountOutMin uint64  `json:"amountOutMin"`
	FeeDiscount  *string `json:"feeDiscount,omitempty"`
}

type swapResponse struct {
	AmountIn  uint64 `json:"amountIn"`
	AmountOut uint64 `json:"amountOut"`
}

func (s *server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg := s.snapshot()
	mc, ok := cfg.Markets[req.Market]
	if !ok {
		httpError(w, http.StatusNotFound, "unknown market "+req.Market)
		return
	}
	res, err := s.engine(cfg).Swap(r.Context(), mc.Accounts(), ledger.AccountRef(cfg.QuoteWallet), swap.Request{
		Side:         side,
		Amount:       req.Amount,
		AmountOutMin: req.AmountOutMin,
		FeeDiscount:  feeDiscountRef(req.FeeDiscount),
	})
	if err != nil {
		if errors.Is(err, swap.ErrVenueRejected) {
			_ = s.alerts.Warning("venue rejected swap", map[string]interface{}{"market": req.Market, "error": err.Error()})
		}
		httpError(w, swapStatus(err), err.Error())
		return
	}
	writeJSON(w, swapResponse{AmountIn: res.AmountIn, AmountOut: res.AmountOut})
}

func (s *server) handleTransitive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req transitiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	cfg := s.snapshot()
	from, ok := cfg.Markets[req.From]
	if !ok {
		httpError(w, http.StatusNotFound, "unknown market "+req.From)
		return
	}
	to, ok := cfg.Markets[req.To]
	if !ok {
		httpError(w, http.StatusNotFound, "unknown market "+req.To)
		return
	}
	res, err := s.engine(cfg).SwapTransitive(r.Context(), swap.TransitiveRequest{
		From:         from.Accounts(),
		To:           to.Accounts(),
		QuoteWallet:  ledger.AccountRef(cfg.QuoteWallet),
		Amount:       req.Amount,
		AmountOutMin: req.AmountOutMin,
		FeeDiscount:  feeDiscountRef(req.FeeDiscount),
	})
	if err != nil {
		if errors.Is(err, swap.ErrVenueRejected) {
			_ = s.alerts.Warning("venue rejected swap leg", map[string]interface{}{
				"from": req.From, "to": req.To, "error": err.Error(),
			})
		}
		httpError(w, swapStatus(err), err.Error())
		return
	}
	writeJSON(w, swapResponse{AmountIn: res.AmountIn, AmountOut: res.AmountOut})
}

func parseSide(s string) (swap.Side, error) {
	switch strings.ToLower(s) {
	case "bid", "buy":
		return swap.Bid, nil
	case "ask", "sell":
		return swap.Ask, nil
	default:
		return 0, fmt.Errorf("side must be bid or ask, got %q", s)
	}
}

func feeDiscountRef(s *string) *ledger.AccountRef {
	if s == nil || *s == "" {
		return nil
	}
	ref := ledger.AccountRef(*s)
	return &ref
}

// swapStatus maps engine errors onto HTTP statuses: caller mistakes are 4xx,
// venue and price failures are 502/503.
func swapStatus(err error) int {
	switch {
	case errors.Is(err, swap.ErrZeroAmount),
		errors.Is(err, swap.ErrInvalidLimitPrice),
		errors.Is(err, swap.ErrSwapAssetsCannotMatch),
		errors.Is(err, swap.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, swap.ErrAtomicHostRequired):
		return http.StatusNotImplemented
	case errors.Is(err, swap.ErrPriceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
