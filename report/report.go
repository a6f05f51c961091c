// Package report renders a quantification's results as the XML stream
// described by the original engine's Reporter class: one <report> root
// holding an <information> block (software identity, calculated
// quantities, model features) and a <results> block (one entry per
// sum-of-products / curve / importance / uncertainty / SIL result).
//
// This package only ever writes what engine.QuantifyModel hands it — it
// has no dependency on pdag/zbdd/event, so every analysis package stays
// free to change its internal representation without touching the report
// schema.
package report

import (
	"io"
	"time"
)

// ResultID identifies which gate or (initiating event, sequence) pair a
// result entry belongs to, plus an optional alignment/phase context —
// mirroring core::RiskAnalysis::Result::Id's variant target.
type ResultID struct {
	GateName        string
	InitiatingEvent string
	SequenceName    string
	Alignment       string
	Phase           string
}

func (id ResultID) apply(e *Element) {
	if id.InitiatingEvent != "" || id.SequenceName != "" {
		e.SetAttribute("initiating-event", id.InitiatingEvent)
		e.SetAttribute("name", id.SequenceName)
	} else {
		e.SetAttribute("name", id.GateName)
	}
	if id.Alignment != "" {
		e.SetAttribute("alignment", id.Alignment)
	}
	if id.Phase != "" {
		e.SetAttribute("phase", id.Phase)
	}
}

// Literal is one product's member: a basic event (optionally a CCF
// member-event expansion) with its polarity.
type Literal struct {
	Name       string
	Complement bool
	// CCF, when non-nil, renders this literal as a <ccf-event> instead of
	// a plain <basic-event>, with the named common-cause group members.
	CCF *CCFLiteral
}

// CCFLiteral is the member-event detail for a literal drawn from a CCF
// group's explosion, mirroring mef::CcfEvent.
type CCFLiteral struct {
	GroupID   string
	GroupSize int
	Members   []string
}

// Product is one retained minimal cut set / prime implicant, with its
// computed probability and contribution fraction when probability
// analysis ran alongside products.
type Product struct {
	Order        int
	Probability  *float64
	Contribution *float64
	Literals     []Literal
}

// BitPackedRecord is one product serialized as the packed format:
// Order plus a dense LSB-first bit-vector over BasicEventTable's indices.
type BitPackedRecord struct {
	Order  uint16
	Vector []byte
}

// BitPackedCutSets is the base64 packed-cut-set alternative to a flat
// []Product list, used when Settings.BitPackCutSets() is set.
type BitPackedCutSets struct {
	// BasicEventNames[i] names the basic event packed into bit i of every
	// record's vector.
	BasicEventNames []string
	Records         []BitPackedRecord
}

// BytesPerVector is the per-record vector width for n basic events.
func BytesPerVector(n int) int { return (n + 7) / 8 }

// SumOfProducts is the <sum-of-products> entry for one gate/sequence's
// fault tree analysis.
type SumOfProducts struct {
	ID ResultID

	Warning string

	OriginalProductCount int
	HasOriginalCount      bool

	// AdaptiveTargetProbability, when > 0, records the exact BDD
	// probability adaptive filtering converged against.
	AdaptiveTargetProbability float64

	HasProducts     bool
	BasicEventCount int
	Distribution    []int

	// TotalProbability is set when probability analysis accompanied the
	// products.
	TotalProbability *float64

	Products  []Product
	BitPacked *BitPackedCutSets
}

// Point is one (probability, time) sample of a p(t) curve.
type Point struct {
	Time        float64
	Probability float64
}

// SilBucket is one histogram bin of a SIL fraction distribution.
type SilBucket struct {
	LowerBound, UpperBound float64
	Fraction               float64
}

// ProbabilityResult is the probability-analysis contribution to one
// result: the mission-time curve and, if requested, SIL metrics.
type ProbabilityResult struct {
	ID ResultID

	Curve []Point

	HasSil      bool
	PfdAverage  float64
	PfhAverage  float64
	PfdBuckets  []SilBucket
	PfhBuckets  []SilBucket
}

// ImportanceEntry is one basic event's importance factors.
type ImportanceEntry struct {
	Name        string
	Occurrence  int
	Probability float64
	MIF, CIF, DIF, RAW, RRW float64
}

// ImportanceResult is the <importance> entry for one gate/sequence.
type ImportanceResult struct {
	ID      ResultID
	Warning string
	Events  []ImportanceEntry
}

// Quantile is one uncertainty-distribution quantile bucket.
type Quantile struct {
	Value, LowerBound, UpperBound float64
}

// HistogramBin is one uncertainty-distribution histogram bin.
type HistogramBin struct {
	Value, LowerBound, UpperBound float64
}

// UncertaintyResult is the <measure> entry for one gate/sequence's Monte
// Carlo uncertainty propagation.
type UncertaintyResult struct {
	ID ResultID

	Warning string

	Mean, StdDev            float64
	Confidence95Lower, Confidence95Upper float64
	ErrorFactor95            float64

	Quantiles []Quantile
	Bins      []HistogramBin
}

// EventTreeSequenceResult is one sequence's quantified probability under
// one initiating event.
type EventTreeSequenceResult struct {
	Name        string
	Probability float64
}

// EventTreeResult is the <initiating-event> entry summarizing one event
// tree's sequence probabilities.
type EventTreeResult struct {
	InitiatingEvent string
	Alignment       string
	Phase           string
	Sequences       []EventTreeSequenceResult
}

// CalculatedQuantity describes one analysis technique performed, rendered
// under <information><calculated-quantity>.
type CalculatedQuantity struct {
	Name           string
	Definition     string
	Approximation  string
	MethodName     string
	MissionTime    *float64
	TimeStep       *float64
	NumTrials      *int
	Seed           *int
	ProductOrderLimit *int
}

// ModelFeatures counts the named element kinds present in the quantified
// model, rendered under <information><model-features>.
type ModelFeatures struct {
	Name                string
	Gates               int
	BasicEvents         int
	HouseEvents         int
	CCFGroups           int
	FaultTrees          int
	EventTrees          int
	FunctionalEvents    int
	Sequences           int
	InitiatingEvents    int
}

// Warning is one free-form diagnostic rendered as <information><warning>.
type Warning string

// Data is everything engine.QuantifyModel collects to produce one report.
type Data struct {
	GeneratedAt time.Time

	CalculatedQuantities []CalculatedQuantity
	ModelFeatures        ModelFeatures
	Warnings             []Warning

	EventTreeResults []EventTreeResult
	Products         []SumOfProducts
	Probabilities    []ProbabilityResult
	Importances      []ImportanceResult
	Uncertainties    []UncertaintyResult

	// PerformanceSeconds, keyed by phase name ("preprocessing", "products",
	// "probability", "importance", "uncertainty"), reports analysis wall-
	// clock time per result id when the caller collected it; nil entries
	// are simply omitted.
	PerformanceSeconds map[ResultID]map[string]float64
}

func (d Data) hasResults() bool {
	return len(d.EventTreeResults) > 0 || len(d.Products) > 0 || len(d.Probabilities) > 0 ||
		len(d.Importances) > 0 || len(d.Uncertainties) > 0
}

// Write renders data as the XML report to w, indenting when indent is
// true.
func Write(w io.Writer, data Data, indent bool) error {
	writer := NewWriter(w, indent)
	root := writer.Root("report")

	if data.hasResults() {
		results := root.AddChild("results")
		for _, etr := range data.EventTreeResults {
			writeEventTreeResult(results, etr)
		}
		for _, sop := range data.Products {
			writeSumOfProducts(results, sop)
		}
		for _, pr := range data.Probabilities {
			writeProbabilityResult(results, pr)
		}
		for _, ir := range data.Importances {
			writeImportanceResult(results, ir)
		}
		for _, ur := range data.Uncertainties {
			writeUncertaintyResult(results, ur)
		}
		results.Close()
	}

	writeInformation(root, data)
	root.Close()
	return writer.Flush()
}

func writeInformation(root *Element, data Data) {
	information := root.AddChild("information")
	defer information.Close()

	software := information.AddChild("software")
	software.SetAttribute("name", "SCRAM").SetAttribute("version", "UNSET").SetAttribute("contacts", "")
	software.Close()

	if !data.GeneratedAt.IsZero() {
		information.AddChild("time").AddText(data.GeneratedAt.UTC().Format("2006-01-02T15:04:05")).Close()
	}

	for _, cq := range data.CalculatedQuantities {
		writeCalculatedQuantity(information, cq)
	}

	writeModelFeatures(information, data.ModelFeatures)

	for _, warning := range data.Warnings {
		information.AddChild("warning").AddText(string(warning)).Close()
	}

	writePerformance(information, data.PerformanceSeconds)
}

func writeCalculatedQuantity(information *Element, cq CalculatedQuantity) {
	quant := information.AddChild("calculated-quantity")
	defer quant.Close()
	quant.SetAttribute("name", cq.Name)
	if cq.Definition != "" {
		quant.SetAttribute("definition", cq.Definition)
	}
	if cq.Approximation != "" {
		quant.SetAttribute("approximation", cq.Approximation)
	}
	if cq.MethodName == "" && cq.MissionTime == nil && cq.NumTrials == nil && cq.ProductOrderLimit == nil {
		return
	}
	method := quant.AddChild("calculation-method")
	defer method.Close()
	method.SetAttribute("name", cq.MethodName)

	limits := method.AddChild("limits")
	defer limits.Close()
	if cq.ProductOrderLimit != nil {
		limits.AddChild("product-order").AddText(*cq.ProductOrderLimit).Close()
	}
	if cq.MissionTime != nil {
		limits.AddChild("mission-time").AddText(*cq.MissionTime).Close()
	}
	if cq.TimeStep != nil {
		limits.AddChild("time-step").AddText(*cq.TimeStep).Close()
	}
	if cq.NumTrials != nil {
		limits.AddChild("number-of-trials").AddText(*cq.NumTrials).Close()
	}
	if cq.Seed != nil {
		limits.AddChild("seed").AddText(*cq.Seed).Close()
	}
}

func writeModelFeatures(information *Element, mf ModelFeatures) {
	features := information.AddChild("model-features")
	defer features.Close()
	if mf.Name != "" {
		features.SetAttribute("name", mf.Name)
	}
	emit := func(name string, n int) {
		if n > 0 {
			features.AddChild(name).AddText(n).Close()
		}
	}
	emit("gates", mf.Gates)
	emit("basic-events", mf.BasicEvents)
	emit("house-events", mf.HouseEvents)
	emit("ccf-groups", mf.CCFGroups)
	emit("fault-trees", mf.FaultTrees)
	emit("event-trees", mf.EventTrees)
	emit("functional-events", mf.FunctionalEvents)
	emit("sequences", mf.Sequences)
	emit("initiating-events", mf.InitiatingEvents)
}

func writePerformance(information *Element, perf map[ResultID]map[string]float64) {
	if len(perf) == 0 {
		return
	}
	performance := information.AddChild("performance")
	defer performance.Close()
	for id, phases := range perf {
		calcTime := performance.AddChild("calculation-time")
		id.apply(calcTime)
		for _, phase := range []string{"preprocessing", "products", "probability", "importance", "uncertainty", "report-generation"} {
			if seconds, ok := phases[phase]; ok {
				calcTime.AddChild(phase).AddText(seconds).Close()
			}
		}
		calcTime.Close()
	}
}

func writeEventTreeResult(results *Element, etr EventTreeResult) {
	initiatingEvent := results.AddChild("initiating-event")
	defer initiatingEvent.Close()
	initiatingEvent.SetAttribute("name", etr.InitiatingEvent)
	if etr.Alignment != "" {
		initiatingEvent.SetAttribute("alignment", etr.Alignment)
	}
	if etr.Phase != "" {
		initiatingEvent.SetAttribute("phase", etr.Phase)
	}
	initiatingEvent.SetAttribute("sequences", len(etr.Sequences))
	for _, seq := range etr.Sequences {
		initiatingEvent.AddChild("sequence").
			SetAttribute("name", seq.Name).
			SetAttribute("value", seq.Probability).
			Close()
	}
}

func writeSumOfProducts(results *Element, sop SumOfProducts) {
	el := results.AddChild("sum-of-products")
	defer el.Close()
	sop.ID.apply(el)

	if sop.Warning != "" {
		el.SetAttribute("warning", sop.Warning)
	}
	if sop.HasOriginalCount {
		el.SetAttribute("original-products", sop.OriginalProductCount)
	}
	if sop.AdaptiveTargetProbability > 0 {
		el.SetAttribute("exact-probability", sop.AdaptiveTargetProbability)
	}
	if sop.HasProducts {
		el.SetAttribute("basic-events", sop.BasicEventCount)
		count := len(sop.Products)
		if sop.BitPacked != nil {
			count = len(sop.BitPacked.Records)
		}
		el.SetAttribute("products", count)
	}
	if sop.TotalProbability != nil {
		el.SetAttribute("probability", *sop.TotalProbability)
	}
	if sop.HasProducts && len(sop.Distribution) > 0 {
		el.SetAttribute("distribution", joinInts(sop.Distribution))
	}

	if !sop.HasProducts {
		return
	}

	if sop.BitPacked != nil {
		writeBitPackedCutSets(el, *sop.BitPacked)
		return
	}

	var sum float64
	if sop.TotalProbability != nil {
		for _, p := range sop.Products {
			if p.Probability != nil {
				sum += *p.Probability
			}
		}
	}
	for _, p := range sop.Products {
		product := el.AddChild("product")
		product.SetAttribute("order", p.Order)
		if p.Probability != nil {
			product.SetAttribute("probability", *p.Probability)
			if sum != 0 {
				contribution := *p.Probability / sum
				product.SetAttribute("contribution", contribution)
			}
		}
		for _, lit := range p.Literals {
			writeLiteral(product, lit)
		}
		product.Close()
	}
}

func writeLiteral(parent *Element, lit Literal) {
	target := parent
	if lit.Complement {
		target = parent.AddChild("not")
		defer target.Close()
	}
	writeBasicEvent(target, lit)
}

func writeBasicEvent(parent *Element, lit Literal) {
	if lit.CCF == nil {
		parent.AddChild("basic-event").SetAttribute("name", lit.Name).Close()
		return
	}
	el := parent.AddChild("ccf-event")
	defer el.Close()
	el.SetAttribute("ccf-group", lit.CCF.GroupID).
		SetAttribute("order", len(lit.CCF.Members)).
		SetAttribute("group-size", lit.CCF.GroupSize)
	for _, member := range lit.CCF.Members {
		el.AddChild("basic-event").SetAttribute("name", member).Close()
	}
}

// batchRecords caps buffer size, matching the original's 10,000,000-record
// batches.
const batchRecords = 10_000_000

// flushBytes is the approximate base64-chunk size, matching the original's
// 1 MiB flush threshold.
const flushBytes = 1 << 20

func writeBitPackedCutSets(parent *Element, packed BitPackedCutSets) {
	n := len(packed.BasicEventNames)
	bytesPerVector := BytesPerVector(n)

	el := parent.AddChild("bit-packed-cut-sets")
	defer el.Close()
	el.SetAttribute("encoding", "base64").
		SetAttribute("batch-records", batchRecords).
		SetAttribute("basic-events", n).
		SetAttribute("bytes-per-vector", bytesPerVector).
		SetAttribute("order-bytes", 2).
		SetAttribute("endianness", "little").
		SetAttribute("bit-order", "lsb0")

	table := el.AddChild("basic-event-table")
	for i, name := range packed.BasicEventNames {
		table.AddChild("basic-event").SetAttribute("index", i).SetAttribute("name", name).Close()
	}
	table.Close()

	buffers := el.AddChild("buffers")
	defer buffers.Close()

	recordBytes := 2 + bytesPerVector
	bufferIndex := 0
	for start := 0; start < len(packed.Records) || (start == 0 && len(packed.Records) == 0); start += batchRecords {
		end := start + batchRecords
		if end > len(packed.Records) {
			end = len(packed.Records)
		}
		buffer := buffers.AddChild("buffer")
		buffer.SetAttribute("index", bufferIndex).
			SetAttribute("max-records", batchRecords).
			SetAttribute("record-bytes", recordBytes)
		data := buffer.AddChild("data")
		data.SetAttribute("encoding", "base64")
		writeBase64Records(data, packed.Records[start:end])
		data.Close()
		buffer.Close()
		bufferIndex++
		if len(packed.Records) == 0 {
			break
		}
	}
}

func writeProbabilityResult(results *Element, pr ProbabilityResult) {
	if len(pr.Curve) > 0 {
		curve := results.AddChild("curve")
		pr.ID.apply(curve)
		curve.SetAttribute("description", "Probability values over time").
			SetAttribute("X-title", "Mission time").
			SetAttribute("Y-title", "Probability").
			SetAttribute("X-unit", "hours")
		for _, point := range pr.Curve {
			curve.AddChild("point").SetAttribute("X", point.Time).SetAttribute("Y", point.Probability).Close()
		}
		curve.Close()
	}

	if !pr.HasSil {
		return
	}
	sil := results.AddChild("safety-integrity-levels")
	pr.ID.apply(sil)
	sil.SetAttribute("PFD-avg", pr.PfdAverage).SetAttribute("PFH-avg", pr.PfhAverage)
	writeSilHistogram(sil, pr.PfdBuckets)
	writeSilHistogram(sil, pr.PfhBuckets)
	sil.Close()
}

func writeSilHistogram(sil *Element, buckets []SilBucket) {
	hist := sil.AddChild("histogram")
	defer hist.Close()
	hist.SetAttribute("number", len(buckets))
	for i, bucket := range buckets {
		hist.AddChild("bin").
			SetAttribute("number", i+1).
			SetAttribute("value", bucket.Fraction).
			SetAttribute("lower-bound", bucket.LowerBound).
			SetAttribute("upper-bound", bucket.UpperBound).
			Close()
	}
}

func writeImportanceResult(results *Element, ir ImportanceResult) {
	importance := results.AddChild("importance")
	defer importance.Close()
	ir.ID.apply(importance)
	if ir.Warning != "" {
		importance.SetAttribute("warning", ir.Warning)
	}
	importance.SetAttribute("basic-events", len(ir.Events))
	for _, entry := range ir.Events {
		el := importance.AddChild("basic-event")
		el.SetAttribute("name", entry.Name).
			SetAttribute("occurrence", entry.Occurrence).
			SetAttribute("probability", entry.Probability).
			SetAttribute("MIF", entry.MIF).
			SetAttribute("CIF", entry.CIF).
			SetAttribute("DIF", entry.DIF).
			SetAttribute("RAW", entry.RAW).
			SetAttribute("RRW", entry.RRW).
			Close()
	}
}

func writeUncertaintyResult(results *Element, ur UncertaintyResult) {
	measure := results.AddChild("measure")
	defer measure.Close()
	ur.ID.apply(measure)
	if ur.Warning != "" {
		measure.SetAttribute("warning", ur.Warning)
	}
	measure.AddChild("mean").SetAttribute("value", ur.Mean).Close()
	measure.AddChild("standard-deviation").SetAttribute("value", ur.StdDev).Close()
	measure.AddChild("confidence-range").
		SetAttribute("percentage", "95").
		SetAttribute("lower-bound", ur.Confidence95Lower).
		SetAttribute("upper-bound", ur.Confidence95Upper).
		Close()
	measure.AddChild("error-factor").
		SetAttribute("percentage", "95").
		SetAttribute("value", ur.ErrorFactor95).
		Close()

	quantiles := measure.AddChild("quantiles")
	quantiles.SetAttribute("number", len(ur.Quantiles))
	for i, q := range ur.Quantiles {
		quantiles.AddChild("quantile").
			SetAttribute("number", i+1).
			SetAttribute("value", q.Value).
			SetAttribute("lower-bound", q.LowerBound).
			SetAttribute("upper-bound", q.UpperBound).
			Close()
	}
	quantiles.Close()

	hist := measure.AddChild("histogram")
	hist.SetAttribute("number", len(ur.Bins))
	for i, bin := range ur.Bins {
		hist.AddChild("bin").
			SetAttribute("number", i+1).
			SetAttribute("value", bin.Value).
			SetAttribute("lower-bound", bin.LowerBound).
			SetAttribute("upper-bound", bin.UpperBound).
			Close()
	}
	hist.Close()
}
