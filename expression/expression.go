// Package expression models the lazy numeric values that feed basic-event
// probabilities: constants, shared parameters, the distinguished mission-time
// cell, and simple combinators (Add, Mul). The rest of the engine treats an
// Expression as opaque — it only ever calls Value, Interval, IsDeviate and
// Sample — so concrete probability-distribution formulas (Weibull,
// lognormal, ...) can be supplied by a caller without this package knowing
// about them.
package expression

import "math/rand"

// Interval is a closed bound [Lo, Hi] on an Expression's possible value.
type Interval struct {
	Lo float64
	Hi float64
}

// Expression is a lazy node producing a real value.
//
// Value returns the expression's current point estimate. Interval returns
// the closed range the value can take. IsDeviate reports whether the
// expression carries uncertainty (and therefore participates in Monte Carlo
// uncertainty propagation). Sample draws one realization using rng.
type Expression interface {
	Value() float64
	Interval() Interval
	IsDeviate() bool
	Sample(rng *rand.Rand) float64
}

// Constant is a fixed value with no uncertainty. It mirrors
// mef::ConstantExpression: Sample always returns the same value.
type Constant struct {
	V float64
}

// NewConstant returns a Constant expression wrapping v.
func NewConstant(v float64) *Constant { return &Constant{V: v} }

var (
	// One is the shared constant 1 (true, certainty).
	One = NewConstant(1)
	// Zero is the shared constant 0 (false, impossibility).
	Zero = NewConstant(0)
)

func (c *Constant) Value() float64                { return c.V }
func (c *Constant) Interval() Interval             { return Interval{Lo: c.V, Hi: c.V} }
func (c *Constant) IsDeviate() bool                { return false }
func (c *Constant) Sample(_ *rand.Rand) float64    { return c.V }

// Parameter is a named, shared Expression carrying a physical unit tag.
// Parameters may be redefined in place (their wrapped Expression swapped)
// without invalidating references held by basic events — every reader goes
// through Value()/Sample(), never touching the wrapped pointer directly.
type Parameter struct {
	Name string
	Unit string
	expr Expression
}

// NewParameter returns a Parameter with the given name, unit, and initial
// defining Expression.
func NewParameter(name, unit string, expr Expression) *Parameter {
	return &Parameter{Name: name, Unit: unit, expr: expr}
}

// Redefine replaces the Parameter's defining expression.
func (p *Parameter) Redefine(expr Expression) { p.expr = expr }

func (p *Parameter) Value() float64             { return p.expr.Value() }
func (p *Parameter) Interval() Interval          { return p.expr.Interval() }
func (p *Parameter) IsDeviate() bool             { return p.expr.IsDeviate() }
func (p *Parameter) Sample(rng *rand.Rand) float64 { return p.expr.Sample(rng) }

// MissionTime is the single mutable parameter owned by the model. All
// time-dependent expressions read it through this shared pointer; the
// probability analyser mutates it in place when sweeping the time curve
// and nothing else in the engine holds global mutable state.
type MissionTime struct {
	hours float64
}

// NewMissionTime returns a MissionTime initialized to hours.
func NewMissionTime(hours float64) *MissionTime { return &MissionTime{hours: hours} }

// Value returns the current mission time in hours.
func (m *MissionTime) Value() float64 { return m.hours }

// Set mutates the mission time in place. Every Expression that reads
// MissionTime observes the new value on its next Value()/Sample() call.
func (m *MissionTime) Set(hours float64) { m.hours = hours }

func (m *MissionTime) Interval() Interval          { return Interval{Lo: m.hours, Hi: m.hours} }
func (m *MissionTime) IsDeviate() bool             { return false }
func (m *MissionTime) Sample(_ *rand.Rand) float64 { return m.hours }

// Add is the sum of its argument expressions.
type Add struct {
	Args []Expression
}

// NewAdd returns an Add expression over args.
func NewAdd(args ...Expression) *Add { return &Add{Args: args} }

func (a *Add) Value() float64 {
	sum := 0.0
	for _, arg := range a.Args {
		sum += arg.Value()
	}
	return sum
}

func (a *Add) Interval() Interval {
	lo, hi := 0.0, 0.0
	for _, arg := range a.Args {
		iv := arg.Interval()
		lo += iv.Lo
		hi += iv.Hi
	}
	return Interval{Lo: lo, Hi: hi}
}

func (a *Add) IsDeviate() bool {
	for _, arg := range a.Args {
		if arg.IsDeviate() {
			return true
		}
	}
	return false
}

func (a *Add) Sample(rng *rand.Rand) float64 {
	sum := 0.0
	for _, arg := range a.Args {
		sum += arg.Sample(rng)
	}
	return sum
}

// Mul is the product of its argument expressions.
type Mul struct {
	Args []Expression
}

// NewMul returns a Mul expression over args.
func NewMul(args ...Expression) *Mul { return &Mul{Args: args} }

func (m *Mul) Value() float64 {
	prod := 1.0
	for _, arg := range m.Args {
		prod *= arg.Value()
	}
	return prod
}

func (m *Mul) Interval() Interval {
	lo, hi := 1.0, 1.0
	for _, arg := range m.Args {
		iv := arg.Interval()
		// Arguments are probabilities/rates in [0, +inf); bounds multiply directly.
		lo *= iv.Lo
		hi *= iv.Hi
	}
	return Interval{Lo: lo, Hi: hi}
}

func (m *Mul) IsDeviate() bool {
	for _, arg := range m.Args {
		if arg.IsDeviate() {
			return true
		}
	}
	return false
}

func (m *Mul) Sample(rng *rand.Rand) float64 {
	prod := 1.0
	for _, arg := range m.Args {
		prod *= arg.Sample(rng)
	}
	return prod
}

// Clamp01 restricts v to the closed [0,1] interval, reporting whether
// clamping actually changed the value (used by callers that must log a
// numeric warning per the error-handling taxonomy).
func Clamp01(v float64) (clamped float64, wasClamped bool) {
	switch {
	case v < 0:
		return 0, true
	case v > 1:
		return 1, true
	default:
		return v, false
	}
}
