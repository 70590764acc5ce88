// Package dec is the arithmetic currency for every safety value in the
// engine. Values stay exact through intermediate computation; rounding
// happens only at the presentation boundaries defined in round.go, and no
// safety value is ever converted to binary floating point.
package dec

import (
	"github.com/shopspring/decimal"

	"mechintegrity/domain/core"
)

// workingPrecision is the number of significant digits kept by division.
// The contract requires at least 28; 34 gives headroom for chained
// divisions inside the iterative solvers.
const workingPrecision = 34

// maxDigits bounds the coefficient size of any computed value. Exceeding it
// means an operand escaped its physical range and the computation must fail
// rather than carry a silently degraded number.
const maxDigits = 60

// Dec is an immutable fixed-precision decimal value.
type Dec struct {
	v decimal.Decimal
}

// FromString parses a canonical decimal string.
func FromString(s string) (Dec, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Dec{}, core.NewErrorf(core.KindArithmeticFailure, "parse decimal %q", s).WithCause(err)
	}
	return Dec{v: v}, nil
}

// MustParse parses a canonical decimal string and panics on malformed
// input. Reserved for literals in source.
func MustParse(s string) Dec {
	return Dec{v: decimal.RequireFromString(s)}
}

// FromInt builds a decimal from an integer.
func FromInt(n int64) Dec {
	return Dec{v: decimal.NewFromInt(n)}
}

// FromFloat converts a binary float at a declared precision. The only
// sanctioned entry point for float-born values (dimensionless statistical
// factors); digits states how many fractional digits of the float are
// meaningful, and everything beyond them is dropped half-even.
func FromFloat(f float64, digits int32) Dec {
	return Dec{v: decimal.NewFromFloat(f).RoundBank(digits)}
}

// Zero returns the zero value.
func Zero() Dec { return Dec{} }

// One returns decimal 1.
func One() Dec { return Dec{v: decimal.NewFromInt(1)} }

// Add returns d + o exactly.
func (d Dec) Add(o Dec) Dec { return Dec{v: d.v.Add(o.v)} }

// Sub returns d − o exactly.
func (d Dec) Sub(o Dec) Dec { return Dec{v: d.v.Sub(o.v)} }

// Mul returns d × o exactly.
func (d Dec) Mul(o Dec) Dec { return Dec{v: d.v.Mul(o.v)} }

// Neg returns −d.
func (d Dec) Neg() Dec { return Dec{v: d.v.Neg()} }

// Abs returns |d|.
func (d Dec) Abs() Dec { return Dec{v: d.v.Abs()} }

// Div returns d ÷ o at the working precision. A zero divisor fails with
// ArithmeticFailure; a result outside the representable digit budget fails
// with PrecisionLoss.
func (d Dec) Div(o Dec) (Dec, error) {
	if o.v.IsZero() {
		return Dec{}, core.NewErrorf(core.KindArithmeticFailure, "division by zero: %s / 0", d.v.String())
	}
	q := d.v.DivRound(o.v, workingPrecision)
	if q.NumDigits() > maxDigits {
		return Dec{}, core.NewErrorf(core.KindPrecisionLoss, "quotient exceeds %d significant digits", maxDigits).
			WithField("dividend", d.v.String()).
			WithField("divisor", o.v.String())
	}
	return Dec{v: q}, nil
}

// Cmp returns -1, 0, or 1.
func (d Dec) Cmp(o Dec) int { return d.v.Cmp(o.v) }

// Equal reports exact numeric equality.
func (d Dec) Equal(o Dec) bool { return d.v.Equal(o.v) }

// LessThan reports d < o.
func (d Dec) LessThan(o Dec) bool { return d.v.LessThan(o.v) }

// GreaterThan reports d > o.
func (d Dec) GreaterThan(o Dec) bool { return d.v.GreaterThan(o.v) }

// IsZero reports d == 0.
func (d Dec) IsZero() bool { return d.v.IsZero() }

// IsNegative reports d < 0.
func (d Dec) IsNegative() bool { return d.v.IsNegative() }

// IsPositive reports d > 0.
func (d Dec) IsPositive() bool { return d.v.IsPositive() }

// Sign returns -1, 0, or 1.
func (d Dec) Sign() int { return d.v.Sign() }

// Min returns the smaller of d and o.
func Min(d, o Dec) Dec { return Dec{v: decimal.Min(d.v, o.v)} }

// Max returns the larger of d and o.
func Max(d, o Dec) Dec { return Dec{v: decimal.Max(d.v, o.v)} }

// String returns the canonical string form: plain notation, no exponent,
// exactly the digits the value carries.
func (d Dec) String() string {
	if exp := d.v.Exponent(); exp < 0 {
		return d.v.StringFixed(-exp)
	}
	return d.v.String()
}

// relEpsilon keeps the relative-difference denominator away from zero.
var relEpsilon = MustParse("0.000000000001")

// RelDiff computes |p − s| / max(|p|, |s|, ε), the reconciliation metric
// for dual-path results.
func RelDiff(p, s Dec) (Dec, error) {
	num := p.Sub(s).Abs()
	den := Max(Max(p.Abs(), s.Abs()), relEpsilon)
	return num.Div(den)
}

// WithinRel reports whether p and s agree within the given relative
// tolerance.
func WithinRel(p, s, tol Dec) (bool, error) {
	rd, err := RelDiff(p, s)
	if err != nil {
		return false, err
	}
	return rd.Cmp(tol) <= 0, nil
}

// WithinAbs reports whether a and b agree within the given absolute
// tolerance.
func WithinAbs(a, b, tol Dec) bool {
	return a.Sub(b).Abs().Cmp(tol) <= 0
}
