package decmath

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Error kinds. Every failure returned by this package unwraps to one of them.
var (
	ErrNegativeOrZeroDomain = errors.New("argument outside function domain")
	ErrMantissaOverflow     = errors.New("mantissa overflow")
	ErrDivisionByZero       = errors.New("division by zero")
)

// ArithmeticError reports which operation failed and on what operand.
type ArithmeticError struct {
	Op      string          // operation name, e.g. "sqrt" or "div"
	Operand decimal.Decimal // offending operand (the divisor for "div")
	Err     error           // one of the Err* kinds above
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s(%s): %v", e.Op, Format(e.Operand), e.Err)
}

func (e *ArithmeticError) Unwrap() error {
	return e.Err
}

// maxFormatLen caps the length of Format output.
const maxFormatLen = 64

// Format renders d for messages and reports. Values with an extreme exponent
// are printed as <coefficient>e<exponent> rather than expanded, and the
// result is truncated to a bounded length.
func Format(d decimal.Decimal) string {
	var s string
	if exp := d.Exponent(); exp > mantissaDigits || exp < -2*MaxScale {
		s = d.Coefficient().String() + "e" + strconv.Itoa(int(exp))
	} else {
		s = d.String()
	}
	if len(s) > maxFormatLen {
		s = s[:maxFormatLen] + "..."
	}
	return s
}

func domainError(op string, d decimal.Decimal) error {
	return &ArithmeticError{Op: op, Operand: d, Err: ErrNegativeOrZeroDomain}
}

func overflowError(op string, d decimal.Decimal) error {
	return &ArithmeticError{Op: op, Operand: d, Err: ErrMantissaOverflow}
}

// Kind returns a short, stable name for the kind of err, or "" when err is
// not an arithmetic error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNegativeOrZeroDomain):
		return "negative_or_zero_domain"
	case errors.Is(err, ErrMantissaOverflow):
		return "mantissa_overflow"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	}
	return ""
}
