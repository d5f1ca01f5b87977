// Package curve implements the pure bonding-curve math spec.md explicitly
// scopes out of the core but still names by algebraic identity: the
// square-root curve backing the World (Ivy/USDC) market and the
// constant-product curve backing per-Game markets.
package curve

import "math"

// integrateSqrt computes the area under sqrt(c*x) from a to b:
// (2/3) * sqrt(c) * (b^1.5 - a^1.5). Grounded on sqrt_curve.rs's Math::integrate_sqrt.
func integrateSqrt(c, a, b float64, roundUp bool) float64 {
	if b <= a {
		return 0
	}
	sqrtC := math.Sqrt(c)
	result := (2.0 / 3.0) * sqrtC * (math.Pow(b, 1.5) - math.Pow(a, 1.5))
	if roundUp {
		return math.Ceil(result)
	}
	return result
}

// sqrtIntegralRightBound solves the integral for b given area, a, and c.
func sqrtIntegralRightBound(c, area, a float64, roundUp bool) float64 {
	sqrtC := math.Sqrt(c)
	term := math.Pow(a, 1.5) + (3.0*area)/(2.0*sqrtC)
	result := math.Pow(term, 2.0/3.0)
	if roundUp {
		return math.Ceil(result)
	}
	return result
}

// SqrtCurrentPrice returns the instantaneous price of the sqrt(c*x) curve
// at the given supply: sqrt(supply * inputScale).
func SqrtCurrentPrice(supply, inputScale float64) float64 {
	return math.Sqrt(supply * inputScale)
}

// SqrtExactTokensIn returns the reserve received for depositing tokenAmount
// tokens into the curve at the given supply.
func SqrtExactTokensIn(supply, inputScale, tokenAmount float64) (float64, error) {
	if tokenAmount > supply {
		return 0, errInsufficientSupply("exactTokensIn")
	}
	newSupply := supply - tokenAmount
	return integrateSqrt(inputScale, newSupply, supply, false), nil
}

// SqrtExactReserveIn returns the number of tokens received for depositing
// reserveAmount of the reserve asset, capped by maxSupply.
func SqrtExactReserveIn(supply, maxSupply, inputScale, reserveAmount float64) (float64, error) {
	newSupply := sqrtIntegralRightBound(inputScale, reserveAmount, supply, false)
	if newSupply > maxSupply {
		return 0, errExceedsMaxSupply("exactReserveIn")
	}
	return newSupply - supply, nil
}

type curveError struct {
	op  string
	msg string
}

func (e curveError) Error() string { return "curve: " + e.op + ": " + e.msg }

func errInsufficientSupply(op string) error { return curveError{op, "insufficient supply"} }
func errExceedsMaxSupply(op string) error   { return curveError{op, "exceeds maximum supply"} }
