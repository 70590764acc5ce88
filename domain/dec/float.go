package dec

// InexactFloat64 converts to binary floating point for advisory
// diagnostics (spread heuristics, log output). Never feed the result back
// into a safety calculation; that path is what this package exists to
// forbid.
func (d Dec) InexactFloat64() float64 {
	return d.v.InexactFloat64()
}
