package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPriceRange is returned by ParsePriceRangeStrict for tokens that are
// neither "A-B" nor "A+".
var ErrInvalidPriceRange = errors.New("invalid price range")

// PriceRange is a parsed price-range token. A nil bound means unbounded.
type PriceRange struct {
	Min *float64
	Max *float64
}

// ParsePriceRange parses tokens of the form "A-B" and "A+".
// Empty or malformed tokens yield an unbounded range; no error is reported.
func ParsePriceRange(token string) PriceRange {
	r, err := ParsePriceRangeStrict(token)
	if err != nil {
		return PriceRange{}
	}
	return r
}

// ParsePriceRangeStrict is ParsePriceRange but rejects malformed tokens.
// An empty token is still an unbounded range, not an error.
func ParsePriceRangeStrict(token string) (PriceRange, error) {
	clean := strings.TrimSpace(token)
	if clean == "" {
		return PriceRange{}, nil
	}

	if strings.HasSuffix(clean, "+") {
		min, ok := parseAmount(strings.TrimSuffix(clean, "+"))
		if !ok {
			return PriceRange{}, fmt.Errorf("%w: %q", ErrInvalidPriceRange, token)
		}
		return PriceRange{Min: &min}, nil
	}

	parts := strings.Split(clean, "-")
	if len(parts) != 2 {
		return PriceRange{}, fmt.Errorf("%w: %q", ErrInvalidPriceRange, token)
	}
	min, okMin := parseAmount(parts[0])
	max, okMax := parseAmount(parts[1])
	if !okMin || !okMax {
		return PriceRange{}, fmt.Errorf("%w: %q", ErrInvalidPriceRange, token)
	}
	return PriceRange{Min: &min, Max: &max}, nil
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
