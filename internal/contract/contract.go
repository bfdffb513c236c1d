// Package contract is the stateless entry point that exposes the pricing
// engine to external callers. It returns prices as (mantissa, scale) pairs,
// or as packed ABI words, and logs the human-readable price.
package contract

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/abi"
	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// InputSize is the length of a packed Call input: five ABI decimals in the
// order stock, strike, rate, sigma, maturity.
const InputSize = 5 * abi.DecimalSize

// Reference returns the parameters priced by Compute: stock=100, strike=105,
// rate=0.05, sigma=0.20, maturity=1.
func Reference() pricing.OptionParameters {
	return pricing.OptionParameters{
		Stock:    decimal.New(100, 0),
		Strike:   decimal.New(105, 0),
		Rate:     decimal.New(5, -2),
		Sigma:    decimal.New(20, -2),
		Maturity: decimal.New(1, 0),
	}
}

// BlackScholes holds no state; the zero value is ready to use.
type BlackScholes struct{}

// Compute prices the reference scenario.
func (c BlackScholes) Compute() (mantissa, scale *big.Int, err error) {
	return c.ComputeWith(Reference())
}

// ComputeWith prices p and returns the result split into its transport
// values.
func (c BlackScholes) ComputeWith(p pricing.OptionParameters) (mantissa, scale *big.Int, err error) {
	price, err := c.price(p)
	if err != nil {
		return nil, nil, err
	}
	mantissa, scale = abi.Split(price)
	return mantissa, scale, nil
}

// Call is the packed form of ComputeWith: input holds InputSize bytes, the
// output is the abi-encoded price.
func (c BlackScholes) Call(input []byte) ([]byte, error) {
	if len(input) != InputSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", abi.ErrInvalidLength, len(input), InputSize)
	}
	v, err := abi.DecodeAll(input, 5)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	price, err := c.price(pricing.OptionParameters{
		Stock:    v[0],
		Strike:   v[1],
		Rate:     v[2],
		Sigma:    v[3],
		Maturity: v[4],
	})
	if err != nil {
		return nil, err
	}
	return abi.Encode(price)
}

func (BlackScholes) price(p pricing.OptionParameters) (decimal.Decimal, error) {
	logger.Debugf("pricing stock=%s strike=%s rate=%s sigma=%s maturity=%s",
		decmath.Format(p.Stock), decmath.Format(p.Strike), decmath.Format(p.Rate),
		decmath.Format(p.Sigma), decmath.Format(p.Maturity))

	price, err := pricing.Price(p)
	if err != nil {
		logger.Errorf("pricing failed: %v", err)
		return decimal.Decimal{}, fmt.Errorf("compute price: %w", err)
	}
	logger.Infof("Call price: %s", price)
	return price, nil
}

// EncodeInput packs p into the Call input layout.
func EncodeInput(p pricing.OptionParameters) ([]byte, error) {
	return abi.EncodeAll(p.Stock, p.Strike, p.Rate, p.Sigma, p.Maturity)
}
