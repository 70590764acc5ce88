package dec

import (
	"mechintegrity/domain/core"
)

// Sqrt computes the square root by Newton iteration at the working
// precision. Needed by the trend analyzer for the regression standard
// error; gonum's float64 sqrt would break the decimal contract there.
func (d Dec) Sqrt() (Dec, error) {
	if d.IsNegative() {
		return Dec{}, core.NewErrorf(core.KindArithmeticFailure, "square root of negative value %s", d.String())
	}
	if d.IsZero() {
		return Zero(), nil
	}

	two := FromInt(2)
	// First guess: (d+1)/2 converges for any positive input.
	x, err := d.Add(One()).Div(two)
	if err != nil {
		return Dec{}, err
	}
	// 1e-30 absolute step tolerance; workingPrecision division keeps each
	// iterate exact to 34 digits, so the iteration stabilizes well before
	// the cap.
	tol := MustParse("0.000000000000000000000000000001")
	for i := 0; i < 100; i++ {
		q, err := d.Div(x)
		if err != nil {
			return Dec{}, err
		}
		next, err := x.Add(q).Div(two)
		if err != nil {
			return Dec{}, err
		}
		if WithinAbs(next, x, tol) {
			return next, nil
		}
		x = next
	}
	return x, nil
}
