package dec

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// JSON round-trips use the canonical string form. A bare JSON number would
// pass through the decoder's float64 path and lose digits, so numbers are
// rejected outright.

// MarshalJSON encodes the value as a quoted canonical string.
func (d Dec) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted canonical string. Unquoted numeric tokens
// are refused.
func (d *Dec) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("decimal must be a JSON string, got %s", string(data))
	}
	v, err := decimal.NewFromString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("malformed decimal string %s: %w", string(data), err)
	}
	d.v = v
	return nil
}
