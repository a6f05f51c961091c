// Package scram provides a probabilistic risk assessment engine for fault
// trees and event trees: given a model of gates, basic events, house events,
// and common-cause failure groups, it derives minimal cut sets / prime
// implicants, exact or approximate top-event probability, importance
// factors, and uncertainty distributions, and folds initiating-event
// sequences through event trees into per-sequence consequence frequencies.
//
// The pipeline mirrors the original engine's dispatch in FaultTreeAnalysis::
// Analyze: a model (package event) is compiled into a directed acyclic
// propositional graph (package pdag), converted to a binary decision diagram
// (package bdd), and then, when qualitative results are needed, into a
// zero-suppressed BDD of minimal cut sets (package zbdd) that productfilter
// trims by cut-off, order, or adaptive target. Quantitative results —
// exact and approximate top-event probability, Birnbaum/critical/Fussell-
// Vesely/RAW/RRW importance factors, and Monte Carlo / resampled uncertainty
// distributions — come from package probability and package montecarlo.
// Event trees (package eventtree) synthesize one gate per sequence and are
// quantified through the same pdag/bdd path as an ordinary fault tree.
//
// Package engine orchestrates all of the above behind two entry points,
// BuildModelOnly (validate and count, no analysis) and QuantifyModel (the
// full run), plus QuantifyEventTree for sequence-level quantification.
// Package report defines the result types both entry points populate and
// package settings defines the run configuration both accept.
package scram
