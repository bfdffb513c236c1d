// Package pricing prices European call options under the Black-Scholes model
// using the bounded decimal arithmetic of package decmath.
//
// Every function here is pure: the same decimal inputs always produce the
// same (mantissa, scale) result, on any machine.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/decmath"
)

var (
	two = decimal.New(2, 0)

	// 1/sqrt(2), fixed at MaxScale digits.
	invSqrt2 = mustInvSqrt2()
)

func mustInvSqrt2() decimal.Decimal {
	sqrt2, err := decmath.Sqrt(two)
	if err != nil {
		panic(err)
	}
	inv, err := decmath.Div(decmath.One, sqrt2)
	if err != nil {
		panic(err)
	}
	return inv
}

// OptionParameters are the five inputs of a single pricing request.
type OptionParameters struct {
	Stock    decimal.Decimal `json:"stock"`    // spot price, > 0
	Strike   decimal.Decimal `json:"strike"`   // strike price, > 0
	Rate     decimal.Decimal `json:"rate"`     // risk-free rate (annual, any sign)
	Sigma    decimal.Decimal `json:"sigma"`    // volatility (annual, as a decimal), >= 0
	Maturity decimal.Decimal `json:"maturity"` // time to expiry in years, >= 0
}

// Horizon holds the discount factor and the volatility-scaled time horizon
// derived from the raw inputs.
type Horizon struct {
	Discount          decimal.Decimal // exp(-rate * maturity)
	SqrtMaturity      decimal.Decimal // sqrt(maturity)
	SqrtMaturitySigma decimal.Decimal // sqrt(maturity) * sigma
}

// Degenerate reports whether the volatility-time term is not positive, in
// which case the option is worth its intrinsic value.
func (h Horizon) Degenerate() bool {
	return h.SqrtMaturitySigma.Sign() <= 0
}

// NewHorizon computes the discount factor and the volatility-scaled time
// horizon.
//
// Parameters:
//   - rate: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - maturity: time to expiry in years
//
// A negative maturity fails with decmath.ErrNegativeOrZeroDomain.
func NewHorizon(rate, sigma, maturity decimal.Decimal) (Horizon, error) {
	exponent, err := decmath.Mul(rate.Neg(), maturity)
	if err != nil {
		return Horizon{}, fmt.Errorf("discount exponent: %w", err)
	}
	discount, err := decmath.Exp(exponent)
	if err != nil {
		return Horizon{}, fmt.Errorf("discount factor: %w", err)
	}
	sqrtMaturity, err := decmath.Sqrt(maturity)
	if err != nil {
		return Horizon{}, fmt.Errorf("sqrt of maturity: %w", err)
	}
	sqrtMaturitySigma, err := decmath.Mul(sqrtMaturity, sigma)
	if err != nil {
		return Horizon{}, fmt.Errorf("sqrt(maturity)*sigma: %w", err)
	}
	return Horizon{
		Discount:          discount,
		SqrtMaturity:      sqrtMaturity,
		SqrtMaturitySigma: sqrtMaturitySigma,
	}, nil
}

// NormCDF computes the cumulative distribution function of the standard
// normal distribution through the error function:
//
//	Φ(x) = erf(x * (1 / sqrt(2))) * 0.5 + 0.5
//
// It is defined for every x and returns a value in [0, 1].
func NormCDF(x decimal.Decimal) (decimal.Decimal, error) {
	scaled, err := decmath.Mul(x, invSqrt2)
	if err != nil {
		return decimal.Decimal{}, err
	}
	erf, err := decmath.Erf(scaled)
	if err != nil {
		return decimal.Decimal{}, err
	}
	half, err := decmath.Mul(erf, decmath.Half)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decmath.Add(half, decmath.Half)
}

// D1 computes the standardized d1 term with the discount folded into the
// price ratio:
//
//	d1 = ln(stock / (strike * discount)) / sqrtMaturitySigma + 0.5 * sqrtMaturitySigma
//
// This is algebraically the textbook ln(S/K) + (r + σ²/2)T form but it is
// not evaluated that way, and results differ in the last digits.
func D1(stock, strike, discount, sqrtMaturitySigma decimal.Decimal) (decimal.Decimal, error) {
	kDiscount, err := decmath.Mul(strike, discount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	ratio, err := decmath.Div(stock, kDiscount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	logRatio, err := decmath.Ln(ratio)
	if err != nil {
		return decimal.Decimal{}, err
	}
	scaled, err := decmath.Div(logRatio, sqrtMaturitySigma)
	if err != nil {
		return decimal.Decimal{}, err
	}
	drift, err := decmath.Mul(decmath.Half, sqrtMaturitySigma)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decmath.Add(scaled, drift)
}

// CallPrice evaluates the Black-Scholes call formula
//
//	d2 = d1 - sqrtMaturitySigma
//	price = stock * Φ(d1) - (strike * discount) * Φ(d2)
//
// The result is not clamped: a pathological input may yield a negative
// price, which is returned as is.
func CallPrice(stock, strike, discount, sqrtMaturitySigma decimal.Decimal) (decimal.Decimal, error) {
	d1, err := D1(stock, strike, discount, sqrtMaturitySigma)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("d1: %w", err)
	}
	d2, err := decmath.Sub(d1, sqrtMaturitySigma)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("d2: %w", err)
	}
	cdfD1, err := NormCDF(d1)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("N(d1): %w", err)
	}
	cdfD2, err := NormCDF(d2)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("N(d2): %w", err)
	}

	kDiscount, err := decmath.Mul(strike, discount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("strike*discount: %w", err)
	}
	long, err := decmath.Mul(stock, cdfD1)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("stock*N(d1): %w", err)
	}
	short, err := decmath.Mul(kDiscount, cdfD2)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("strike*discount*N(d2): %w", err)
	}
	price, err := decmath.Sub(long, short)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("call price: %w", err)
	}
	return price, nil
}

// Intrinsic returns max(stock - strike, 0), the value of the option with no
// time or volatility left.
func Intrinsic(stock, strike decimal.Decimal) (decimal.Decimal, error) {
	diff, err := decmath.Sub(stock, strike)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("intrinsic value: %w", err)
	}
	return decmath.Max(diff, decmath.Zero), nil
}

// ComputePrice calculates the price of a European call option.
//
// Parameters:
//   - stock: spot price of the underlying asset
//   - strike: strike price of the option
//   - rate: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - maturity: time to expiry in years
//
// Returns:
//
//	The theoretical call price. If sqrt(maturity) * sigma is zero or negative,
//	returns the intrinsic value max(stock - strike, 0).
//
// Errors unwrap to one of the decmath error kinds; no error is ever replaced
// by a default price.
func ComputePrice(stock, strike, rate, sigma, maturity decimal.Decimal) (decimal.Decimal, error) {
	return Price(OptionParameters{
		Stock:    stock,
		Strike:   strike,
		Rate:     rate,
		Sigma:    sigma,
		Maturity: maturity,
	})
}

// Price is ComputePrice taking its inputs as a single struct.
func Price(p OptionParameters) (decimal.Decimal, error) {
	p, err := p.normalized()
	if err != nil {
		return decimal.Decimal{}, err
	}

	h, err := NewHorizon(p.Rate, p.Sigma, p.Maturity)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if h.Degenerate() {
		return Intrinsic(p.Stock, p.Strike)
	}
	return CallPrice(p.Stock, p.Strike, h.Discount, h.SqrtMaturitySigma)
}

func (p OptionParameters) normalized() (OptionParameters, error) {
	fields := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"stock", &p.Stock},
		{"strike", &p.Strike},
		{"rate", &p.Rate},
		{"sigma", &p.Sigma},
		{"maturity", &p.Maturity},
	}
	for _, f := range fields {
		n, err := decmath.Normalize(*f.v)
		if err != nil {
			return OptionParameters{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.v = n
	}
	return p, nil
}
