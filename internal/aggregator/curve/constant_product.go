package curve

import "math/big"

const basisPointsDenominator = 10_000

// applyFeeBps subtracts a basis-point fee from amount, rounding down.
func applyFeeBps(amount uint64, feeBps uint16) uint64 {
	if feeBps == 0 {
		return amount
	}
	a := new(big.Int).SetUint64(amount)
	num := new(big.Int).Mul(a, big.NewInt(int64(basisPointsDenominator-feeBps)))
	num.Div(num, big.NewInt(basisPointsDenominator))
	return num.Uint64()
}

// ConstantProductSwapOut computes the output amount of a constant-product
// swap (x*y=k) with a basis-point fee taken on the input and another taken
// on the output, using 128-bit (big.Int) intermediates to avoid overflow
// on the reserveIn*reserveOut product — grounded on the x*y=k algebra
// spec.md §4.8 names directly; the upstream vendor/constant_product.rs
// helper referenced there was not present in the retrieval pack, so this
// applies the documented formula from first principles.
func ConstantProductSwapOut(reserveIn, reserveOut, amountIn uint64, inputFeeBps, outputFeeBps uint16) uint64 {
	amountInAfterFee := applyFeeBps(amountIn, inputFeeBps)
	if amountInAfterFee == 0 {
		return 0
	}

	rIn := new(big.Int).SetUint64(reserveIn)
	rOut := new(big.Int).SetUint64(reserveOut)
	aIn := new(big.Int).SetUint64(amountInAfterFee)

	// out = reserveOut * amountIn / (reserveIn + amountIn)
	numerator := new(big.Int).Mul(rOut, aIn)
	denominator := new(big.Int).Add(rIn, aIn)
	if denominator.Sign() == 0 {
		return 0
	}
	out := new(big.Int).Div(numerator, denominator)
	if !out.IsUint64() {
		return 0
	}
	return applyFeeBps(out.Uint64(), outputFeeBps)
}

// PriceImpactBps computes |newPrice - oldPrice| / oldPrice in basis
// points, clamped to 10000 (100%).
func PriceImpactBps(oldPrice, newPrice float64) uint16 {
	if oldPrice == 0 {
		return basisPointsDenominator
	}
	delta := newPrice - oldPrice
	if delta < 0 {
		delta = -delta
	}
	bps := delta / oldPrice * basisPointsDenominator
	if bps > basisPointsDenominator {
		return basisPointsDenominator
	}
	return uint16(bps)
}
