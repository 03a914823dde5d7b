// Package rootfind provides the 1-D bracketed root solver used to recover
// temperature from entropy. The calling contract: start from a warm guess,
// expand the bracket geometrically by a fixed factor until the objective
// changes sign, then bisect.
package rootfind

import (
	"errors"
	"math"
)

var (
	ErrBracket  = errors.New("rootfind: no sign change within bracket expansion")
	ErrBadGuess = errors.New("rootfind: guess and factor must be positive, factor > 1")
)

// The expansion factor is typically close to 1 (1.001 by default), so the
// bracket widens slowly; the cap allows a total range of factor^maxExpand
// on each side of the guess before giving up.
const (
	maxExpand = 10000
	maxBisect = 200
	relTol    = 1.0e-12
)

// Solve finds a root of f near guess. The bracket starts at
// [guess/factor, guess*factor] and widens by factor on each side until f
// changes sign across it.
func Solve(f func(float64) float64, guess, factor float64) (float64, error) {
	if guess <= 0 || factor <= 1 {
		return 0, ErrBadGuess
	}

	lo := guess / factor
	hi := guess * factor
	flo := f(lo)
	fhi := f(hi)

	expand := 0
	for flo*fhi > 0 {
		if expand++; expand > maxExpand {
			return 0, ErrBracket
		}
		lo /= factor
		hi *= factor
		flo = f(lo)
		fhi = f(hi)
	}

	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}

	for i := 0; i < maxBisect; i++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if fmid == 0 || (hi-lo) <= relTol*math.Abs(mid) {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo = mid
			flo = fmid
		}
	}

	return 0.5 * (lo + hi), nil
}
