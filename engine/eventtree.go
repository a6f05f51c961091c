package engine

import (
	"github.com/openpra-org/scram-go/bdd"
	"github.com/openpra-org/scram-go/event"
	"github.com/openpra-org/scram-go/eventtree"
	"github.com/openpra-org/scram-go/pdag"
	"github.com/openpra-org/scram-go/probability"
	"github.com/openpra-org/scram-go/report"
	"github.com/openpra-org/scram-go/settings"
)

// QuantifyEventTree unfolds tree into one synthesized gate per sequence
// (eventtree.Analyze), then prices each sequence exactly off its own BDD by
// temporarily rooting model at that gate — one sequence at a time through
// the same pdag/bdd path QuantifyModel uses for a standalone fault tree.
// initiatingEvent labels the resulting report.EventTreeResult; it is not
// otherwise looked up on model, since event.Model carries no event-tree
// bindings of its own (see DESIGN.md's engine ledger entry). Unlike
// QuantifyModel, it runs neither model.ExpandCCFGroups nor model.Validate;
// the caller is responsible for having already run them.
func (e *Engine) QuantifyEventTree(s *settings.Settings, model *event.Model, tree *eventtree.EventTree, initiatingEvent string) (report.EventTreeResult, error) {
	analysis, err := eventtree.Analyze(tree, tree.Name)
	if err != nil {
		return report.EventTreeResult{}, err
	}

	result := report.EventTreeResult{InitiatingEvent: initiatingEvent}

	savedTop := model.TopEvent
	defer func() { model.TopEvent = savedTop }()

	for _, seqResult := range analysis.Sequences {
		model.TopEvent = seqResult.Gate

		graph, err := pdag.New(model, pdag.Options{
			KeepNullGates:      s.KeepNullGates(),
			ExpandAtleastGates: s.ExpandAtleastGates(),
			ExpandXorGates:     s.ExpandXorGates(),
		})
		if err != nil {
			return report.EventTreeResult{}, err
		}

		b, err := bdd.New(graph)
		if err != nil {
			return report.EventTreeResult{}, err
		}

		pVars := probability.ExtractVariableProbabilities(graph)
		prob := probability.NewBddAnalyzer(b).CalculateTotalProbability(pVars)

		result.Sequences = append(result.Sequences, report.EventTreeSequenceResult{
			Name:        seqResult.Sequence.Name,
			Probability: prob,
		})
	}

	return result, nil
}
