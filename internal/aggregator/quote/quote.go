// Package quote turns the pure curve math in internal/aggregator/curve
// into a concrete quote for a proposed IVY<->GAME swap, the "Quote for
// IVY<->GAME" read endpoint spec.md's §4.8 names but leaves unspecified
// in detail.
package quote

import "github.com/R3E-Network/service_layer/internal/aggregator/curve"

// Quote is the result of simulating a swap without applying it.
type Quote struct {
	AmountOut      uint64 `json:"amount_out"`
	PriceImpactBps uint16 `json:"price_impact_bps"`
}

// IvyGameSwap quotes a constant-product swap against a game's IVY/GAME
// reserves. feeBps is taken on the input side only, matching how
// state.GamesComponent.processSwap treats swap balances as already net
// of fees on-chain.
func IvyGameSwap(ivyReserve, gameReserve, amountIn uint64, isBuy bool, feeBps uint16) Quote {
	if gameReserve == 0 || ivyReserve == 0 {
		return Quote{}
	}

	var reserveIn, reserveOut uint64
	if isBuy {
		reserveIn, reserveOut = ivyReserve, gameReserve
	} else {
		reserveIn, reserveOut = gameReserve, ivyReserve
	}
	out := curve.ConstantProductSwapOut(reserveIn, reserveOut, amountIn, feeBps, 0)

	oldPrice := float64(ivyReserve) / float64(gameReserve)

	var newIvy, newGame uint64
	if isBuy {
		newIvy, newGame = ivyReserve+amountIn, gameReserve-out
	} else {
		newIvy, newGame = satSub(ivyReserve, out), gameReserve+amountIn
	}
	if newGame == 0 {
		return Quote{AmountOut: out, PriceImpactBps: 10000}
	}
	newPrice := float64(newIvy) / float64(newGame)

	return Quote{AmountOut: out, PriceImpactBps: curve.PriceImpactBps(oldPrice, newPrice)}
}

func satSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
