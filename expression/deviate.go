package expression

import "math/rand"

// Uniform is a minimal example deviate over [Lo, Hi], used in tests and by
// the uncertainty-analysis Monte Carlo driver to exercise IsDeviate()==true
// expressions. Concrete probability-distribution formulas (Weibull,
// lognormal, ...) are a caller concern; this type exists only to give the
// engine something non-constant to sample from without requiring a real
// distribution library.
type Uniform struct {
	Lo, Hi float64
}

// NewUniform returns a Uniform deviate over the closed range [lo, hi].
func NewUniform(lo, hi float64) *Uniform { return &Uniform{Lo: lo, Hi: hi} }

func (u *Uniform) Value() float64    { return (u.Lo + u.Hi) / 2 }
func (u *Uniform) Interval() Interval { return Interval{Lo: u.Lo, Hi: u.Hi} }
func (u *Uniform) IsDeviate() bool   { return true }

func (u *Uniform) Sample(rng *rand.Rand) float64 {
	return u.Lo + rng.Float64()*(u.Hi-u.Lo)
}
