/*
Package decmath implements the bounded, deterministic decimal arithmetic used
by the pricing engine.

Values are [decimal.Decimal] numbers kept in a canonical form:

  - the scale (number of digits after the decimal point) is between 0 and
    [MaxScale];
  - the absolute value of the mantissa fits in 96 bits.

Every operation computes its exact result (or, for transcendental functions,
a result carried to [MaxScale] digits) and then normalizes it. Normalization
rounds half away from zero to [MaxScale] digits. If the mantissa still does
not fit, the scale is reduced one digit at a time, rounding half away from
zero each time, until it does. A mantissa that does not fit at scale 0 is an
[ErrMantissaOverflow].

Because normalization depends only on the exact intermediate value, two
evaluators running the same sequence of operations on the same inputs always
obtain identical (mantissa, scale) pairs.
*/
package decmath

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	MaxScale     = 28 // maximum number of digits after the decimal point
	mantissaBits = 96 // bit width of the mantissa magnitude

	// digits of 2^96 - 1
	mantissaDigits = 29
)

var (
	maxMantissa = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), mantissaBits), big.NewInt(1))
	bigTen      = big.NewInt(10)

	// Zero, One and Half are shared constants. Decimals are immutable values.
	Zero = decimal.New(0, 0)
	One  = decimal.New(1, 0)
	Half = decimal.New(5, -1)
)

// MaxMantissa returns the largest representable mantissa magnitude, 2^96 - 1.
func MaxMantissa() *big.Int {
	return new(big.Int).Set(maxMantissa)
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

func fits(coef *big.Int) bool {
	return new(big.Int).Abs(coef).Cmp(maxMantissa) <= 0
}

// digitBounds returns lower and upper bounds on the number of decimal digits
// of a non-zero |coef|, from its bit length alone.
// 0.30102 < log10(2) < 0.30103.
func digitBounds(coef *big.Int) (lo, hi int64) {
	n := int64(coef.BitLen())
	return (n-1)*30102/100000 + 1, n*30103/100000 + 1
}

func normalize(op string, d decimal.Decimal) (decimal.Decimal, error) {
	coef := d.Coefficient()
	exp := int64(d.Exponent())
	if coef.Sign() == 0 {
		return decimal.New(0, int32(min(max(exp, -MaxScale), 0))), nil
	}
	lo, hi := digitBounds(coef)

	// |d| >= 10^(lo-1+exp); 10^29 is above 2^96.
	if exp > 0 && exp+lo > mantissaDigits {
		return decimal.Decimal{}, overflowError(op, d)
	}
	// |d| < 10^(hi+exp) <= 10^-(MaxScale+1), which rounds to zero.
	if -exp-hi >= MaxScale+1 {
		return decimal.New(0, -MaxScale), nil
	}

	if exp > 0 {
		d = decimal.NewFromBigInt(new(big.Int).Mul(coef, pow10(int32(exp))), 0)
	}
	if -d.Exponent() > MaxScale {
		d = d.Round(MaxScale)
	}
	for !fits(d.Coefficient()) {
		scale := -d.Exponent()
		if scale == 0 {
			return decimal.Decimal{}, overflowError(op, d)
		}
		d = d.Round(scale - 1)
	}
	return d, nil
}

// Normalize brings d into canonical form.
// It fails with ErrMantissaOverflow if the integer part of d needs more
// than 96 bits.
func Normalize(d decimal.Decimal) (decimal.Decimal, error) {
	return normalize("normalize", d)
}

// Parse converts a string such as "0.05" or "-1.25" into a normalized decimal.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return normalize("parse", d)
}

// Parts splits d into its mantissa and scale, so that d = mantissa × 10^-scale.
// d is expected to be normalized; a positive exponent is folded into the
// mantissa at scale 0.
func Parts(d decimal.Decimal) (*big.Int, uint32) {
	exp := d.Exponent()
	if exp > 0 {
		return new(big.Int).Mul(d.Coefficient(), pow10(exp)), 0
	}
	return d.Coefficient(), uint32(-exp)
}

// Mantissa returns the signed mantissa of d.
func Mantissa(d decimal.Decimal) *big.Int {
	m, _ := Parts(d)
	return m
}

// Scale returns the number of digits after the decimal point of d.
func Scale(d decimal.Decimal) uint32 {
	_, s := Parts(d)
	return s
}

// FromParts is the inverse of Parts. Unlike Normalize it never rounds: a
// scale above MaxScale or a mantissa wider than 96 bits is rejected.
func FromParts(mantissa *big.Int, scale uint32) (decimal.Decimal, error) {
	d := decimal.NewFromBigInt(mantissa, -int32(min(scale, MaxScale+1)))
	if scale > MaxScale || !fits(mantissa) {
		return decimal.Decimal{}, overflowError("from_parts", d)
	}
	return d, nil
}

// Add returns the normalized sum d + e.
func Add(d, e decimal.Decimal) (decimal.Decimal, error) {
	return normalize("add", d.Add(e))
}

// Sub returns the normalized difference d - e.
func Sub(d, e decimal.Decimal) (decimal.Decimal, error) {
	return normalize("sub", d.Sub(e))
}

// Mul returns the normalized product d * e.
func Mul(d, e decimal.Decimal) (decimal.Decimal, error) {
	return normalize("mul", d.Mul(e))
}

// Div returns the quotient d / e rounded half away from zero to MaxScale
// digits, then normalized.
func Div(d, e decimal.Decimal) (decimal.Decimal, error) {
	if e.IsZero() {
		return decimal.Decimal{}, &ArithmeticError{Op: "div", Operand: e, Err: ErrDivisionByZero}
	}
	return normalize("div", d.DivRound(e, MaxScale))
}

// Max returns the larger of d and e. It cannot fail.
func Max(d, e decimal.Decimal) decimal.Decimal {
	if d.Cmp(e) >= 0 {
		return d
	}
	return e
}
