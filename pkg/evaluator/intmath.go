package evaluator

import (
	"math"

	"github.com/thomasrohde/whispy/pkg/diagnostics"
	"github.com/thomasrohde/whispy/pkg/value"
)

// AddInt returns a+b and whether the sum fits in an int64.
func AddInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

// SubInt returns a-b and whether the difference fits in an int64.
func SubInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

// MulInt returns a*b and whether the product fits in an int64.
func MulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}

func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	var ok bool
	for exp > 0 {
		if exp&1 == 1 {
			if result, ok = MulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = MulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func shiftLeft(a, n int64) (int64, bool) {
	c := a << uint64(n)
	return c, c>>uint64(n) == a
}

// checked wraps an int result, turning a lost overflow check into an error.
func checked(name string, n int64, ok bool) (value.Value, error) {
	if !ok {
		return nil, overflow(name)
	}
	return value.NewInt(n), nil
}

func checkedInts(name string, fn func(a, b int64) (int64, bool)) func(a, b int64) (value.Value, error) {
	return func(a, b int64) (value.Value, error) {
		n, ok := fn(a, b)
		return checked(name, n, ok)
	}
}

func overflow(name string) error {
	return &diagnostics.EvaluationError{Message: name + ": integer overflow"}
}
