package decmath

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// exp(67) needs more than 96 bits; exp(-70) rounds to 0 at MaxScale.
	expOverflowAt  = decimal.New(67, 0)
	expUnderflowAt = decimal.New(-70, 0)

	// Abramowitz & Stegun 7.1.28, |error| <= 3e-7.
	erfCoefficients = [...]decimal.Decimal{
		decimal.New(705230784, -10),
		decimal.New(422820123, -10),
		decimal.New(92705272, -10),
		decimal.New(1520143, -10),
		decimal.New(2765672, -10),
		decimal.New(430638, -10),
	}

	// Beyond this point (1 + a1x + ... + a6x^6)^-16 is below 10^-28.
	erfSaturation = decimal.New(10, 0)
)

// Ln returns the natural logarithm of d.
// It fails with ErrNegativeOrZeroDomain if d <= 0.
func Ln(d decimal.Decimal) (decimal.Decimal, error) {
	if d.Sign() <= 0 {
		return decimal.Decimal{}, domainError("ln", d)
	}
	r, err := d.Ln(MaxScale)
	if err != nil {
		return decimal.Decimal{}, domainError("ln", d)
	}
	return normalize("ln", r)
}

// Exp returns e raised to the power d.
// It fails with ErrMantissaOverflow when the result does not fit.
func Exp(d decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case d.IsZero():
		return One, nil
	case d.Cmp(expOverflowAt) >= 0:
		return decimal.Decimal{}, overflowError("exp", d)
	case d.Cmp(expUnderflowAt) <= 0:
		return Zero, nil
	}
	r, err := d.ExpTaylor(MaxScale)
	if err != nil {
		return decimal.Decimal{}, overflowError("exp", d)
	}
	return normalize("exp", r)
}

// Sqrt returns the square root of d rounded half away from zero to MaxScale
// digits. It fails with ErrNegativeOrZeroDomain if d < 0.
//
// The root is taken exactly on integers:
//
//	sqrt(c × 10^-s) × 10^MaxScale = sqrt(c × 10^(2×MaxScale - s))
func Sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Decimal{}, domainError("sqrt", d)
	}
	if d.IsZero() {
		return Zero, nil
	}
	d, err := normalize("sqrt", d)
	if err != nil {
		return decimal.Decimal{}, err
	}
	coef, scale := Parts(d)
	n := coef.Mul(coef, pow10(int32(2*MaxScale-scale)))
	root := new(big.Int).Sqrt(n)
	// root+0.5 < sqrt(n) iff n - root^2 > root
	rem := new(big.Int).Sub(n, new(big.Int).Mul(root, root))
	if rem.Cmp(root) > 0 {
		root.Add(root, big.NewInt(1))
	}
	return normalize("sqrt", decimal.NewFromBigInt(root, -MaxScale))
}

// Erf returns the error function of d using the Abramowitz & Stegun 7.1.28
// approximation
//
//	erf(x) = 1 - (1 + a1·x + a2·x² + a3·x³ + a4·x⁴ + a5·x⁵ + a6·x⁶)^-16
//
// for x >= 0 and erf(-x) = -erf(x). It is defined on the whole real line and
// the result always lies in [-1, 1].
func Erf(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		r, err := Erf(d.Neg())
		if err != nil {
			return decimal.Decimal{}, err
		}
		return r.Neg(), nil
	}
	if d.Cmp(erfSaturation) >= 0 {
		return One, nil
	}

	var (
		sum  = One
		pow  = One
		term decimal.Decimal
		err  error
	)
	for _, a := range erfCoefficients {
		if pow, err = Mul(pow, d); err != nil {
			return decimal.Decimal{}, err
		}
		if term, err = Mul(a, pow); err != nil {
			return decimal.Decimal{}, err
		}
		if sum, err = Add(sum, term); err != nil {
			return decimal.Decimal{}, err
		}
	}

	// sum >= 1, so squaring the reciprocal four times stays within (0, 1].
	inv, err := Div(One, sum)
	if err != nil {
		return decimal.Decimal{}, err
	}
	for i := 0; i < 4; i++ {
		if inv, err = Mul(inv, inv); err != nil {
			return decimal.Decimal{}, err
		}
	}
	return Sub(One, inv)
}
