// Package engine wires pdag, bdd, zbdd, productfilter, probability,
// montecarlo, and eventtree into the two host entry points a caller
// actually needs: a full quantification run and a model-only dry run.
// It owns no analysis logic of its own beyond the orchestration shape,
// following FaultTreeAnalysis::Analyze's dispatch in the original engine:
// build the PDAG, convert it to a BDD, then branch on whether qualitative
// products are required before assembling the report.
package engine

import (
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/productfilter"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/settings"
	"github.com/openpra-org/scram-go/zbdd"
)

// ErrNoTopEvent indicates a model has no top gate to quantify.
var ErrNoTopEvent = errors.New("engine: model has no top event")

// Engine runs quantifications against a logger; the zero value is usable
// because a zero zerolog.Logger discards output, matching the pack's
// pattern of optional, injectable loggers.
type Engine struct {
	Log zerolog.Logger
}

// New returns an Engine logging through log. A zero zerolog.Logger already
// discards output, so passing one unconfigured is safe.
func New(log zerolog.Logger) *Engine {
	return &Engine{Log: log}
}

// Summary is BuildModelOnly's result: counts and name lists describing a
// validated, but not yet quantified, model.
type Summary struct {
	GateCount       int
	BasicEventCount int
	HouseEventCount int
	CCFGroupCount   int
	BasicEventNames []string
	GateNames       []string
}

// BuildModelOnly validates model and expands its CCF groups, returning
// descriptive counts without running any analysis — the Go analogue of the
// original engine's "--validate"/dry-run mode.
func (e *Engine) BuildModelOnly(model *event.Model) (Summary, error) {
	if err := model.ExpandCCFGroups(); err != nil {
		return Summary{}, err
	}
	if err := model.Validate(); err != nil {
		return Summary{}, err
	}
	summary := Summary{
		GateCount:       len(model.Gates),
		BasicEventCount: len(model.BasicEvents),
		HouseEventCount: len(model.HouseEvents),
		CCFGroupCount:   len(model.CCFGroups),
	}
	for id := range model.BasicEvents {
		summary.BasicEventNames = append(summary.BasicEventNames, id)
	}
	for id := range model.Gates {
		summary.GateNames = append(summary.GateNames, id)
	}
	return summary, nil
}

// QuantifyModel runs the full pipeline against model under s, synchronously,
// and returns a populated report.Data ready for report.Write.
//
// Orchestration, following FaultTreeAnalysis::Analyze: build the PDAG, build
// a BDD over it, then branch on s.RequiresProducts(). When products are
// required, generate the ZBDD, run product_filter, and (when s.Adaptive())
// fall back to an exact BDD oracle the way ComputeAdaptiveTargetProbability
// does. When products are not required (BDD-exact, no approximation, no
// prime implicants), the top event's probability is priced directly off the
// BDD and product enumeration is skipped entirely.
//
// s.CcfAnalysis() gates whether CCF groups are expanded into their
// synthesized OR-gates before the PDAG is built; when false, CCF group
// definitions are left registered on model but unexpanded, and their
// members quantify as ordinary independent basic events.
func (e *Engine) QuantifyModel(s *settings.Settings, model *event.Model) (*report.Data, error) {
	logger := e.logger()
	start := time.Now()

	if model.TopEvent == nil {
		return nil, ErrNoTopEvent
	}
	if s.CcfAnalysis() {
		if err := model.ExpandCCFGroups(); err != nil {
			return nil, err
		}
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	graph, err := pdag.New(model, pdag.Options{
		KeepNullGates:      s.KeepNullGates(),
		ExpandAtleastGates: s.ExpandAtleastGates(),
		ExpandXorGates:     s.ExpandXorGates(),
	})
	if err != nil {
		return nil, err
	}

	data := &report.Data{
		ModelFeatures: modelFeatures(model, graph),
	}
	resultID := report.ResultID{GateName: model.TopEvent.ID}

	b, err := bdd.New(graph)
	if err != nil {
		return nil, err
	}

	var warnings []report.Warning
	var summary productfilter.ProductSummary
	var products *zbdd.Zbdd

	if !s.SkipProducts() && (s.RequiresProducts() || s.PrimeImplicants()) {
		products, err = zbdd.New(b, b.Coherent)
		if err != nil {
			return nil, err
		}
		options := buildFilterOptions(s, graph, b)
		result := newSumOfProducts(resultID, graph, products, options, s, logger)
		summary = result.summary
		warnings = append(warnings, result.warnings...)
		data.Products = append(data.Products, result.sop)
	}

	if s.ProbabilityAnalysis() {
		probResult, probWarnings := e.analyzeProbability(resultID, s, model, graph, b, products, summary)
		data.Probabilities = append(data.Probabilities, probResult)
		warnings = append(warnings, probWarnings...)
	}

	if s.ImportanceAnalysis() {
		imp := computeImportance(resultID, graph, b, products)
		data.Importances = append(data.Importances, imp)
	}

	if s.UncertaintyAnalysis() {
		unc, err := computeUncertainty(resultID, s, model, graph, b)
		if err != nil {
			logger.Warn().Err(err).Msg("uncertainty analysis skipped")
			warnings = append(warnings, report.Warning(err.Error()))
		} else {
			data.Uncertainties = append(data.Uncertainties, unc)
		}
	}

	data.Warnings = warnings
	data.CalculatedQuantities = calculatedQuantities(s)
	data.PerformanceSeconds = map[report.ResultID]map[string]float64{
		resultID: {"total": time.Since(start).Seconds()},
	}
	return data, nil
}

func (e *Engine) logger() zerolog.Logger {
	return e.Log
}

func modelFeatures(model *event.Model, graph *pdag.PDAG) report.ModelFeatures {
	return report.ModelFeatures{
		Name:        model.Name,
		Gates:       len(graph.Gates),
		BasicEvents: len(model.BasicEvents),
		HouseEvents: len(model.HouseEvents),
		CCFGroups:   len(model.CCFGroups),
		FaultTrees:  1,
	}
}

func calculatedQuantities(s *settings.Settings) []report.CalculatedQuantity {
	cqs := []report.CalculatedQuantity{{
		Name:       "Fault Tree Analysis",
		Definition: "Minimal cut sets / prime implicants",
		MethodName: s.Algorithm().String(),
	}}
	if s.ProbabilityAnalysis() {
		missionTime := s.MissionTime()
		cq := report.CalculatedQuantity{
			Name:          "Probability Analysis",
			Approximation: s.Approximation().String(),
			MissionTime:   &missionTime,
		}
		if s.TimeStep() > 0 {
			step := s.TimeStep()
			cq.TimeStep = &step
		}
		cqs = append(cqs, cq)
	}
	if s.ImportanceAnalysis() {
		cqs = append(cqs, report.CalculatedQuantity{Name: "Importance Analysis"})
	}
	if s.UncertaintyAnalysis() {
		trials := s.NumTrials()
		seed := s.Seed()
		cqs = append(cqs, report.CalculatedQuantity{
			Name:      "Uncertainty Analysis",
			NumTrials: &trials,
			Seed:      &seed,
		})
	}
	return cqs
}

func newRand(seed int, salt int) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)*1_000_003 + int64(salt)))
}
