// Package productfilter applies order-limit, cut-off, and adaptive
// convergence filtering to a zbdd.Zbdd's product list, following
// product_filter.cc's numeric-floor and Rare-Event/MCUB convergence rules.
package productfilter

import (
	"math"
	"sort"

	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/zbdd"
)

// Approximation selects which convergence estimator adaptive filtering uses
// to track the running total probability.
type Approximation int

const (
	// ApproximationNone disables adaptive filtering regardless of Adaptive.
	ApproximationNone Approximation = iota
	// ApproximationRareEvent approximates total probability by plain
	// summation (valid only while individual product probabilities stay
	// small, per the rare-event assumption).
	ApproximationRareEvent
	// ApproximationMCUB (min-cut-upper-bound) approximates total
	// probability as 1 - product(1 - p_i), which never exceeds 1.
	ApproximationMCUB
)

// FilterOptions configures FilterProducts.
type FilterOptions struct {
	// LimitOrder drops any product with more literals than this, when > 0.
	LimitOrder int
	// CutOff drops any product whose probability falls below this value,
	// when > 0.
	CutOff float64
	// Adaptive enables convergence-driven truncation: products are kept,
	// highest probability first, until the running total estimate reaches
	// AdaptiveTarget.
	Adaptive       bool
	AdaptiveTarget float64
	// Epsilon is the convergence slack added to the running estimate before
	// comparing against AdaptiveTarget; DefaultEpsilon is used when it is
	// zero.
	Epsilon float64
	// Approximation selects the adaptive convergence estimator.
	Approximation Approximation
	// ExactQuantification requests exact (not rare-event-approximated)
	// per-product probability, with early termination at CutOff.
	ExactQuantification bool
}

// DefaultEpsilon matches float64 machine epsilon, as in the original engine.
const DefaultEpsilon = 2.220446049250313e-16

// ProductSummary reports what FilterProducts kept and dropped.
type ProductSummary struct {
	ProductCount         int
	OriginalProductCount int
	PrunedProducts       int
	// Distribution[k] is the number of retained products with k+1 literals.
	Distribution []int
	EventIndices []int
	CutOffApplied bool
	AppliedCutOff float64
}

// ProductConsumer receives each retained product and its probability, in the
// same order FilterProducts finished processing them.
type ProductConsumer func(product zbdd.Product, probability float64)

// CalculateProductProbability multiplies each literal's probability
// (or its complement, for a negative literal) across product, short-
// circuiting once the running value falls below stopThreshold (pass a
// negative stopThreshold to disable early exit), then scales by the
// graph's initiating-event frequency.
func CalculateProductProbability(product zbdd.Product, graph *pdag.PDAG, stopThreshold float64) float64 {
	firstIndex := pdag.VariableStartIndex
	lastIndexExclusive := firstIndex + len(graph.BasicEvents)
	probability := 1.0
	for _, literal := range product {
		index := literal
		if index < 0 {
			index = -index
		}
		if index < firstIndex || index >= lastIndexExclusive {
			continue
		}
		be := graph.BasicEvents.Get(index)
		eventProbability := 0.0
		if be != nil {
			eventProbability, _ = be.P()
		}
		if literal < 0 {
			probability *= 1 - eventProbability
		} else {
			probability *= eventProbability
		}
		if stopThreshold >= 0 && probability < stopThreshold {
			break
		}
	}
	probability *= graph.InitiatingEventFrequency
	return probability
}

type scoredProduct struct {
	product     zbdd.Product
	probability float64
}

// FilterProducts applies options to products, returning a populated summary
// and, when consumer is non-nil and filtering actually changed the product
// set, invoking consumer once per retained product.
func FilterProducts(products *zbdd.Zbdd, graph *pdag.PDAG, options FilterOptions, consumer ProductConsumer) ProductSummary {
	var summary ProductSummary

	enforceOrder := options.LimitOrder > 0
	enforceCutOff := options.CutOff > 0
	adaptiveActive := options.Adaptive && options.AdaptiveTarget > 0 && options.Approximation != ApproximationNone
	filteringRequested := enforceOrder || enforceCutOff || adaptiveActive
	requiresProbability := enforceCutOff || adaptiveActive

	epsilon := options.Epsilon
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}

	firstIndex := pdag.VariableStartIndex
	lastIndexExclusive := firstIndex + len(graph.BasicEvents)

	if !filteringRequested {
		seen := make(map[int]bool, len(graph.BasicEvents))
		for _, product := range products.Products {
			summary.OriginalProductCount++
			summary.ProductCount++
			recordOrder(&summary.Distribution, len(product))
			recordEvents(&summary.EventIndices, seen, product, firstIndex, lastIndexExclusive)
		}
		sort.Ints(summary.EventIndices)
		return summary
	}

	var retained []scoredProduct
	for _, product := range products.Products {
		summary.OriginalProductCount++

		if enforceOrder && len(product) > options.LimitOrder {
			continue
		}

		probability := 0.0
		if requiresProbability {
			stopThreshold := -1.0
			if options.ExactQuantification && enforceCutOff {
				stopThreshold = options.CutOff
			}
			probability = CalculateProductProbability(product, graph, stopThreshold)
		}

		if probability > 0 {
			threshold := logMeanEpsilonFloor(probability, DefaultEpsilon)
			if probability <= threshold {
				continue
			}
		}

		if enforceCutOff && probability < options.CutOff {
			continue
		}

		retained = append(retained, scoredProduct{product: product, probability: probability})
	}

	appliedCutOff := 0.0
	if enforceCutOff {
		appliedCutOff = options.CutOff
	}

	if adaptiveActive && len(retained) > 0 {
		sort.Slice(retained, func(i, j int) bool { return retained[i].probability > retained[j].probability })

		adaptiveSubset := make([]scoredProduct, 0, len(retained))
		complementAcc := 1.0
		rareSum := 0.0
		for _, item := range retained {
			adaptiveSubset = append(adaptiveSubset, item)
			estimatedTotal := 0.0
			if options.Approximation == ApproximationRareEvent {
				rareSum += item.probability
				if rareSum > 1 {
					rareSum = 1
				}
				estimatedTotal = rareSum
			} else {
				complementFactor := clamp01(1 - item.probability)
				complementAcc *= complementFactor
				estimatedTotal = 1 - complementAcc
			}
			if estimatedTotal+epsilon >= options.AdaptiveTarget {
				appliedCutOff = item.probability
				break
			}
		}
		if len(adaptiveSubset) > 0 {
			retained = adaptiveSubset
		}
	}

	summary.ProductCount = len(retained)
	summary.PrunedProducts = summary.OriginalProductCount - summary.ProductCount
	if summary.PrunedProducts < 0 {
		summary.PrunedProducts = 0
	}
	summary.CutOffApplied = enforceCutOff || (adaptiveActive && len(retained) > 0)
	if summary.CutOffApplied {
		summary.AppliedCutOff = appliedCutOff
	}

	seen := make(map[int]bool, len(graph.BasicEvents))
	for _, item := range retained {
		recordOrder(&summary.Distribution, len(item.product))
		recordEvents(&summary.EventIndices, seen, item.product, firstIndex, lastIndexExclusive)
	}

	emitFiltered := consumer != nil && len(retained) > 0 &&
		(summary.PrunedProducts > 0 || summary.CutOffApplied || adaptiveActive)
	if emitFiltered {
		for _, item := range retained {
			consumer(item.product, item.probability)
		}
	}

	sort.Ints(summary.EventIndices)
	return summary
}

// logMeanEpsilonFloor computes the numeric floor below which a product's
// probability is treated as noise: the antilog of the arithmetic mean of
// log10(probability) and log10(machine epsilon). This resolves the open
// question of the exact numeric-floor formula by following
// product_filter.cc's "Method 1: Log 10 based arithmetic mean" verbatim.
func logMeanEpsilonFloor(probability, epsilon float64) float64 {
	logProbability := math.Log10(probability)
	logEpsilon := math.Log10(epsilon)
	logMean := (logProbability + logEpsilon) / 2
	return math.Pow(10, logMean)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func recordOrder(distribution *[]int, order int) {
	idx := order - 1
	if idx < 0 {
		idx = 0
	}
	for len(*distribution) <= idx {
		*distribution = append(*distribution, 0)
	}
	(*distribution)[idx]++
}

func recordEvents(eventIndices *[]int, seen map[int]bool, product zbdd.Product, firstIndex, lastIndexExclusive int) {
	for _, literal := range product {
		index := literal
		if index < 0 {
			index = -index
		}
		if index < firstIndex || index >= lastIndexExclusive {
			continue
		}
		if seen[index] {
			continue
		}
		seen[index] = true
		*eventIndices = append(*eventIndices, index)
	}
}
