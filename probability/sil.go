package probability

import (
	"errors"
	"math"

	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/expression"
	"github.com/openpra-org/scram-go/pdag"
)

// ErrInsufficientPoints indicates Integrate/AverageY/PartitionY were given
// fewer than two points, which cannot define a range to integrate over.
var ErrInsufficientPoints = errors.New("probability: need at least two points to integrate")

// Point is one sample of the probability-over-time curve: the computed
// top-event probability at Time hours into the mission.
type Point struct {
	Probability float64
	Time        float64
}

// ProbabilityCalculator is anything that can evaluate a top-event
// probability from a fresh set of basic-event probabilities — satisfied by
// both Analyzer and BddAnalyzer, so CalculateProbabilityOverTime works with
// either the approximate or the exact calculator.
type ProbabilityCalculator interface {
	CalculateTotalProbability(pVars pdag.IndexMap[float64]) float64
}

// CalculateProbabilityOverTime sweeps missionTime from 0 to totalTime in
// timeStep increments (plus one final point at totalTime, to cover the case
// where totalTime is not evenly divisible by timeStep), recomputing every
// basic event's probability and the top-event probability at each step.
// It returns nil when timeStep is 0 (no time-dependent analysis requested).
func CalculateProbabilityOverTime(calc ProbabilityCalculator, graph *pdag.PDAG, missionTime *expression.MissionTime, timeStep, totalTime float64, model *event.Model) []Point {
	if timeStep == 0 {
		return nil
	}

	pVars := pdag.NewIndexMap[float64](len(graph.BasicEvents))
	var points []Point

	update := func(t float64) {
		missionTime.Set(t)
		for idx, be := range graph.BasicEvents {
			if be == nil {
				continue
			}
			p, _ := be.P()
			pVars.Set(idx, p)
		}
		probability := calc.CalculateTotalProbability(pVars)
		points = append(points, Point{
			Probability: ApplyInitiatingEventFrequency(probability, model),
			Time:        t,
		})
	}

	for t := 0.0; t < totalTime; t += timeStep {
		update(t)
	}
	update(totalTime)
	return points
}

// Integrate computes the trapezoidal area under points (probability over
// time), matching the original engine's Integrate helper exactly: points
// must be ordered ascending by Time.
func Integrate(points []Point) (float64, error) {
	if len(points) < 2 {
		return 0, ErrInsufficientPoints
	}
	area := 0.0
	for i := 1; i < len(points); i++ {
		area += (points[i].Probability + points[i-1].Probability) * (points[i].Time - points[i-1].Time)
	}
	return area / 2, nil
}

// AverageY returns the time-weighted average probability over points' range.
func AverageY(points []Point) (float64, error) {
	if len(points) < 2 {
		return 0, ErrInsufficientPoints
	}
	rangeX := points[len(points)-1].Time - points[0].Time
	area, err := Integrate(points)
	if err != nil {
		return 0, err
	}
	return area / rangeX, nil
}

// SilBucket is one ordered probability bucket (e.g. one SIL band), holding
// the normalized fraction of the mission time points spent with probability
// at or below UpperBound but above the previous bucket's UpperBound.
type SilBucket struct {
	UpperBound float64
	Fraction   float64
}

// defaultPfdBuckets returns the IEC 61508 low-demand (PFDavg) SIL bands,
// bucketed by upper bound, plus a final catch-all bucket for anything worse
// than SIL1.
func defaultPfdBuckets() []SilBucket {
	return []SilBucket{
		{UpperBound: 1e-5},
		{UpperBound: 1e-4}, // SIL4
		{UpperBound: 1e-3}, // SIL3
		{UpperBound: 1e-2}, // SIL2
		{UpperBound: 1e-1}, // SIL1
		{UpperBound: math.Inf(1)},
	}
}

// defaultPfhBuckets returns the IEC 61508 high-demand/continuous (PFH,
// per-hour) SIL bands.
func defaultPfhBuckets() []SilBucket {
	return []SilBucket{
		{UpperBound: 1e-9},
		{UpperBound: 1e-8}, // SIL4
		{UpperBound: 1e-7}, // SIL3
		{UpperBound: 1e-6}, // SIL2
		{UpperBound: 1e-5}, // SIL1
		{UpperBound: math.Inf(1)},
	}
}

// PartitionY partitions the f(time) = probability curve over the probability
// axis into buckets, normalized so the fractions sum to 1 across the whole
// mission time. Ported from the original engine's PartitionY template.
func PartitionY(points []Point, buckets []SilBucket) error {
	if len(points) < 2 {
		return ErrInsufficientPoints
	}
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1].Probability, points[i].Probability
		t0, t1 := points[i-1].Time, points[i].Time
		k := (p1 - p0) / (t1 - t0)
		if k < 0 {
			k = -k
			p1, p0 = p0, p1
		}

		fraction := func(b0, b1 float64) float64 {
			switch {
			case p0 <= b0 && b1 <= p1: // sub-range
				return (b1 - b0) / k
			case b0 <= p0 && p1 <= b1: // super-range (covers k == 0)
				return t1 - t0
			case p0 <= b0 && b0 <= p1: // b1 is outside (>) of the range
				return (p1 - b0) / k
			case p0 <= b1 && b1 <= p1: // b0 is outside (<) of the range
				return (b1 - p0) / k
			default: // ranges do not overlap
				return 0
			}
		}

		b0 := 0.0
		for j := range buckets {
			b1 := buckets[j].UpperBound
			buckets[j].Fraction += fraction(b0, b1)
			b0 = b1
		}
	}

	rangeX := points[len(points)-1].Time - points[0].Time
	for j := range buckets {
		buckets[j].Fraction /= rangeX
	}
	return nil
}

// Sil is the Safety Integrity Level summary computed from a probability-
// over-time curve: the average probability of failure on demand (PfdAvg)
// and per-hour (PfhAvg), each with the mission time fraction spent in every
// SIL band.
type Sil struct {
	PfdAvg       float64
	PfdFractions []SilBucket
	PfhAvg       float64
	PfhFractions []SilBucket
}

// ComputeSil derives a Sil from pTime, ordered ascending by Time. A
// single-point curve (time_step effectively disabled) degenerates to placing
// all weight on the one bucket pTime's probability falls into.
func ComputeSil(pTime []Point) (*Sil, error) {
	if len(pTime) == 0 {
		return nil, ErrInsufficientPoints
	}

	sil := &Sil{PfdFractions: defaultPfdBuckets()}

	if len(pTime) == 1 {
		sil.PfdAvg = pTime[0].Probability
		for i := range sil.PfdFractions {
			if sil.PfdAvg <= sil.PfdFractions[i].UpperBound {
				sil.PfdFractions[i].Fraction = 1
				break
			}
		}
		return sil, nil
	}

	avg, err := AverageY(pTime)
	if err != nil {
		return nil, err
	}
	sil.PfdAvg = avg
	if err := PartitionY(pTime, sil.PfdFractions); err != nil {
		return nil, err
	}

	pfhTime := make([]Point, len(pTime))
	for i, pt := range pTime {
		rate := 0.0
		if pt.Time != 0 {
			rate = pt.Probability / pt.Time
		}
		pfhTime[i] = Point{Probability: rate, Time: pt.Time}
	}
	pfhAvg, err := AverageY(pfhTime)
	if err != nil {
		return nil, err
	}
	sil.PfhAvg = pfhAvg
	sil.PfhFractions = defaultPfhBuckets()
	if err := PartitionY(pfhTime, sil.PfhFractions); err != nil {
		return nil, err
	}
	return sil, nil
}
