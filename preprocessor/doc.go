// Package preprocessor intentionally has no code of its own: the
// normal-form rewrites commonly attributed to a distinct "Preprocessor"
// stage (XOR/ATLEAST expansion, module discovery, variable ordering) are
// implemented directly in package pdag (normalize.go,
// modules.go, order.go) as part of pdag.New; no gate coalescing is
// performed. In this engine the
// canonical-form construction and the preprocessing rewrites that feed it
// operate on the same in-progress graph and share the same builder state —
// splitting them into a second package would mean passing the builder's
// internals across a package boundary for no benefit. See pdag's DESIGN.md
// entry for the grounding of each rewrite.
package preprocessor
