package dec

// Presentation rounding. Each safety quantity has one declared boundary
// precision and one declared rounding mode; values are rounded here and
// nowhere else.
//
//	thickness   4 fractional digits, half-even
//	pressure    2 fractional digits, half-even
//	stress      whole psi, half-even
//	life        1 fractional digit, toward zero (a projected life is never
//	            rounded up)
//	confidence  2 fractional digits, half-even

// RoundThickness rounds to 4 fractional digits, half-even.
func (d Dec) RoundThickness() Dec { return Dec{v: d.v.RoundBank(4)} }

// RoundPressure rounds to 2 fractional digits, half-even.
func (d Dec) RoundPressure() Dec { return Dec{v: d.v.RoundBank(2)} }

// RoundStress rounds to whole psi, half-even.
func (d Dec) RoundStress() Dec { return Dec{v: d.v.RoundBank(0)} }

// RoundLife rounds to 1 fractional digit toward zero.
func (d Dec) RoundLife() Dec { return Dec{v: d.v.Truncate(1)} }

// RoundConfidence rounds to 2 fractional digits, half-even.
func (d Dec) RoundConfidence() Dec { return Dec{v: d.v.RoundBank(2)} }

// RoundRatio rounds a dimensionless ratio (RSF, rates) to 4 fractional
// digits, half-even.
func (d Dec) RoundRatio() Dec { return Dec{v: d.v.RoundBank(4)} }

// FloorToStep rounds d down to the nearest multiple of step. Used by the
// interval engine (0.5-year steps, 0.25-year floor).
func (d Dec) FloorToStep(step Dec) (Dec, error) {
	q, err := d.Div(step)
	if err != nil {
		return Dec{}, err
	}
	return Dec{v: q.v.Floor()}.Mul(step), nil
}
