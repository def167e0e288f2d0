package imageio

import "golang.org/x/exp/constraints"

// mulChecked returns a*b and false if the product overflows T.
func mulChecked[T constraints.Unsigned](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// fitsInt reports whether n can be used as a slice length.
func fitsInt[T constraints.Unsigned](n T) bool {
	return uint64(n) <= uint64(maxInt)
}

const maxInt = int(^uint(0) >> 1)
