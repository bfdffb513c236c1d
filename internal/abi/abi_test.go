package abi

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEncode_Layout(t *testing.T) {
	b, err := Encode(decimal.RequireFromString("-12.345"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(b) != DecimalSize {
		t.Fatalf("len = %d, want %d", len(b), DecimalSize)
	}

	wantMantissa := bytes.Repeat([]byte{0xff}, WordSize)
	wantMantissa[30], wantMantissa[31] = 0xcf, 0xc7 // -12345
	if !bytes.Equal(b[:WordSize], wantMantissa) {
		t.Errorf("mantissa word = %x, want %x", b[:WordSize], wantMantissa)
	}

	wantScale := make([]byte, WordSize)
	wantScale[31] = 3
	if !bytes.Equal(b[WordSize:], wantScale) {
		t.Errorf("scale word = %x, want %x", b[WordSize:], wantScale)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, s := range []string{
		"0",
		"1",
		"-1",
		"8.021326891427987781148053217",
		"-0.0000000000000000000000000001",
		"79228162514264337593543950335",
	} {
		t.Run(s, func(t *testing.T) {
			d := decimal.RequireFromString(s)
			b, err := Encode(d)
			if err != nil {
				t.Fatalf("Encode(%s) failed: %v", s, err)
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.String() != d.String() || got.Exponent() != d.Exponent() {
				t.Errorf("Decode(Encode(%s)) = %s (exp %d)", s, got, got.Exponent())
			}
		})
	}
}

func TestSplit(t *testing.T) {
	m, s := Split(decimal.RequireFromString("8.50"))
	if m.Cmp(big.NewInt(850)) != 0 || s.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("Split(8.50) = (%s, %s), want (850, 2)", m, s)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(make([]byte, DecimalSize-1)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("short input error = %v, want %v", err, ErrInvalidLength)
	}

	b := make([]byte, DecimalSize)
	b[DecimalSize-1] = 29
	if _, err := Decode(b); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("scale 29 error = %v, want %v", err, ErrOutOfRange)
	}

	b = make([]byte, DecimalSize)
	new(big.Int).Lsh(big.NewInt(1), 100).FillBytes(b[:WordSize])
	if _, err := Decode(b); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("wide mantissa error = %v, want %v", err, ErrOutOfRange)
	}
}

func TestEncodeAll(t *testing.T) {
	in := []decimal.Decimal{
		decimal.New(100, 0),
		decimal.New(105, 0),
		decimal.New(5, -2),
	}
	b, err := EncodeAll(in...)
	if err != nil {
		t.Fatalf("EncodeAll failed: %v", err)
	}
	out, err := DecodeAll(b, len(in))
	if err != nil {
		t.Fatalf("DecodeAll failed: %v", err)
	}
	for i := range in {
		if !out[i].Equal(in[i]) {
			t.Errorf("value %d = %s, want %s", i, out[i], in[i])
		}
	}

	if _, err := DecodeAll(b, len(in)+1); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("DecodeAll with wrong count error = %v, want %v", err, ErrInvalidLength)
	}
}
