package term

// Unfold resolves metavariable instantiations carried by a term
// without performing any beta or rule (delta) reduction. This port
// carries no proof-mode metavariable store, so Unfold is the identity;
// it is kept as a named call site (spec.md 4.1) so that every
// downstream shape-dispatch in internal/reduce and internal/check goes
// through one place that a future proof-mode elaborator can hook.
func Unfold(t Term) Term {
	return t
}
