package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Minor is an amount in minor currency units (cents).
type Minor = int64

// BasisPoints converts a percentage (e.g. 2.5) into hundredths of a percent.
func BasisPoints(percent float64) int64 {
	return int64(math.Round(percent * 100))
}

// ApplyBasisPoints returns amount*bps/10000 rounded half-up to the minor unit.
func ApplyBasisPoints(amount Minor, bps int64) Minor {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*bps + 5000) / 10000
}

// Format renders minor units as a two-decimal string: 1155 -> "11.55".
func Format(amount Minor) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// ToDecimal is used only when a third-party API insists on floats.
func ToDecimal(amount Minor) float64 {
	return float64(amount) / 100
}

// Parse reads a decimal string ("11.5", "11.55", "11") into minor units.
// More than two fractional digits is an error, not a rounding.
func Parse(s string) (Minor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if !digits(whole) || strings.Trim(frac, "0123456789") != "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	v := w*100 + f
	if neg {
		v = -v
	}
	return v, nil
}

func digits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
