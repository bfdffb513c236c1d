// Package abi encodes decimals as pairs of 32-byte words: a two's-complement
// int256 mantissa followed by a uint256 scale. This is the return shape of
// the on-chain pricing entry point.
package abi

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/decmath"
)

const (
	WordSize    = 32
	DecimalSize = 2 * WordSize
)

var (
	ErrInvalidLength = errors.New("abi: invalid input length")
	ErrOutOfRange    = errors.New("abi: value out of range")
)

var (
	two256    = new(big.Int).Lsh(big.NewInt(1), 256)
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

// Split returns the two transport values of d: its signed mantissa and its
// non-negative scale.
func Split(d decimal.Decimal) (mantissa, scale *big.Int) {
	m, s := decmath.Parts(d)
	return m, new(big.Int).SetUint64(uint64(s))
}

// Encode packs d into DecimalSize bytes.
func Encode(d decimal.Decimal) ([]byte, error) {
	out := make([]byte, DecimalSize)
	if err := put(out, d); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode unpacks exactly DecimalSize bytes produced by Encode.
func Decode(b []byte) (decimal.Decimal, error) {
	if len(b) != DecimalSize {
		return decimal.Decimal{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), DecimalSize)
	}
	mantissa := readInt256(b[:WordSize])
	scale := new(big.Int).SetBytes(b[WordSize:])
	if !scale.IsUint64() || scale.Uint64() > decmath.MaxScale {
		return decimal.Decimal{}, fmt.Errorf("%w: scale %s", ErrOutOfRange, scale)
	}
	d, err := decmath.FromParts(mantissa, uint32(scale.Uint64()))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return d, nil
}

// EncodeAll packs ds back to back.
func EncodeAll(ds ...decimal.Decimal) ([]byte, error) {
	out := make([]byte, len(ds)*DecimalSize)
	for i, d := range ds {
		if err := put(out[i*DecimalSize:(i+1)*DecimalSize], d); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return out, nil
}

// DecodeAll unpacks n decimals from b, which must be exactly n*DecimalSize
// bytes long.
func DecodeAll(b []byte, n int) ([]decimal.Decimal, error) {
	if len(b) != n*DecimalSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), n*DecimalSize)
	}
	out := make([]decimal.Decimal, n)
	for i := range out {
		d, err := Decode(b[i*DecimalSize : (i+1)*DecimalSize])
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func put(dst []byte, d decimal.Decimal) error {
	mantissa, scale := Split(d)
	if mantissa.Cmp(maxInt256) > 0 || mantissa.Cmp(minInt256) < 0 {
		return fmt.Errorf("%w: mantissa %s", ErrOutOfRange, mantissa)
	}
	if mantissa.Sign() < 0 {
		mantissa.Add(mantissa, two256)
	}
	mantissa.FillBytes(dst[:WordSize])
	scale.FillBytes(dst[WordSize:DecimalSize])
	return nil
}

func readInt256(word []byte) *big.Int {
	v := new(big.Int).SetBytes(word)
	if word[0]&0x80 != 0 {
		v.Sub(v, two256)
	}
	return v
}
