package market

import (
	"fmt"
	"math"
)

// Price is a positive, finite price in account currency.
type Price float64

// NewPrice rejects zero, negative, NaN and infinite values.
func NewPrice(v float64) (Price, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price must be finite, got %v", v)
	}
	if v <= 0 {
		return 0, fmt.Errorf("price must be positive, got %v", v)
	}
	return Price(v), nil
}

// MustPrice is NewPrice that panics on error.
func MustPrice(v float64) Price {
	p, err := NewPrice(v)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Value() float64 { return float64(p) }

// Quantity is a signed, non-zero share count. Positive is long, negative
// is short.
type Quantity int64

// NewQuantity rejects zero.
func NewQuantity(n int64) (Quantity, error) {
	if n == 0 {
		return 0, fmt.Errorf("quantity must be non-zero")
	}
	return Quantity(n), nil
}

func (q Quantity) Value() int64 { return int64(q) }

// Abs returns the unsigned share count.
func (q Quantity) Abs() int64 {
	if q < 0 {
		return int64(-q)
	}
	return int64(q)
}

// Sign is +1 for long, -1 for short.
func (q Quantity) Sign() int {
	if q < 0 {
		return -1
	}
	return 1
}

func (q Quantity) IsLong() bool { return q > 0 }

// Confidence is a signal conviction score in [0, 1].
type Confidence float64

// NewConfidence rejects values outside [0, 1] and non-finite values.
func NewConfidence(v float64) (Confidence, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("confidence must be between 0 and 1, got %v", v)
	}
	return Confidence(v), nil
}

// ClampConfidence forces v into [0, 1]. Used where the math can drift a
// hair past the bounds (aggregation ratios).
func ClampConfidence(v float64) Confidence {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return Confidence(v)
	}
}

func (c Confidence) Value() float64 { return float64(c) }
