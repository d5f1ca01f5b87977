// Package money converts between on-chain fixed-point integers and the
// float32 values used for display, charts, and USD aggregation.
package money

// Token amounts (Ivy, Game, Sync, SOL) all use 9 decimals on-chain.
const tokenScale = 1_000_000_000.0

// USDC uses 6 decimals.
const usdcScale = 1_000_000.0

// A "mil" is 1/1000 of a US dollar, used for integer volume/PnL accounting.
const milScale = 1000.0

// FromIvyAmount converts a raw 9-decimal Ivy amount to whole units.
func FromIvyAmount(raw uint64) float32 { return float32(raw) / tokenScale }

// FromGameAmount converts a raw 9-decimal Game token amount to whole units.
func FromGameAmount(raw uint64) float32 { return float32(raw) / tokenScale }

// FromSolAmount converts a raw 9-decimal SOL amount (lamports) to whole units.
func FromSolAmount(raw uint64) float32 { return float32(raw) / tokenScale }

// FromTokenAmount converts a raw Sync token amount to whole units. Upstream
// pump-protocol tokens use 6 decimals but synced ones are rescaled to 9 by
// the bridge program before this service ever sees them, so the conversion
// is the same as FromIvyAmount.
func FromTokenAmount(raw uint64) float32 { return float32(raw) / tokenScale }

// FromUsdcAmount converts a raw 6-decimal USDC amount to whole units.
func FromUsdcAmount(raw uint64) float32 { return float32(raw) / usdcScale }

// USDToMil converts a float USD value into integer mils (1/1000 USD).
// Non-normal inputs (NaN, Inf, subnormal, zero) convert to zero mils.
func USDToMil(v float32) uint64 {
	if !isNormal(v) {
		return 0
	}
	return uint64(v * milScale)
}

// MilToUSD converts integer mils back into a float USD value.
func MilToUSD(v uint64) float32 { return float32(v) / milScale }

// smallestNormalFloat32 is the smallest positive normal float32 (2^-126).
const smallestNormalFloat32 = 1.1754943508222875e-38

func isNormal(v float32) bool {
	if v != v { // NaN
		return false
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs == 0 {
		return false
	}
	if abs > 3.4028235e38 { // +/-Inf or overflow
		return false
	}
	if abs < smallestNormalFloat32 { // subnormal
		return false
	}
	return true
}

// IsNormal reports whether v is a finite, non-zero float32 — the same
// "normal" test the original curve and swap handlers use to reject bad
// derived prices before they reach a chart or balance.
func IsNormal(v float32) bool { return isNormal(v) }
