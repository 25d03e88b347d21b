package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"instant-swap-go/swap"
)

// Prints the take-order parameters a swap request would derive, without
// touching the venue. Handy for eyeballing limit prices before sending.
func main() {
	side := flag.String("side", "bid", "swap direction: bid (spend quote) or ask (spend base)")
	amount := flag.Uint64("amount", 0, "input amount in native units")
	amountOutMin := flag.Uint64("amountOutMin", 0, "minimum acceptable output in native units")
	asJSON := flag.Bool("json", false, "print as JSON")
	flag.Parse()

	var dir swap.Side
	switch strings.ToLower(*side) {
	case "bid":
		dir = swap.Bid
	case "ask":
		dir = swap.Ask
	default:
		log.Fatalf("side must be bid or ask, got %q", *side)
	}

	q, err := swap.ComputeQuote(dir, *amount, *amountOutMin)
	if err != nil {
		log.Fatalf("derive quote: %v", err)
	}
	if *asJSON {
		fmt.Printf(`{"limitPrice":%d,"maxBaseQty":%d,"maxQuoteQtyInclFee":%d,"minBaseQty":%d,"minNativeQuoteQty":%d}`+"\n",
			q.LimitPrice, q.MaxBaseQty, q.MaxQuoteQtyInclFee, q.MinBaseQty, q.MinNativeQuoteQty)
		return
	}
	fmt.Printf("%s amount=%d amountOutMin=%d\n", dir, *amount, *amountOutMin)
	fmt.Printf("  LimitPrice=%d\n", q.LimitPrice)
	fmt.Printf("  MaxBaseQty=%d MaxQuoteQtyInclFee=%d\n", q.MaxBaseQty, q.MaxQuoteQtyInclFee)
	fmt.Printf("  MinBaseQty=%d MinNativeQuoteQty=%d\n", q.MinBaseQty, q.MinNativeQuoteQty)
}
