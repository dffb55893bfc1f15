// Package ids mints process-wide unique identifiers, used for the
// request_id internal/rpcapi stamps on every RPC response, wrapping
// github.com/google/uuid, grounded
// on mcgru-funxy's internal/evaluator/builtins_uuid.go Uuid wrapper
// (same library, a thinner surface -- lambdaPi only ever needs
// random v4 identifiers and their string form).
package ids

import "github.com/google/uuid"

// New returns a fresh, random (v4) identifier string.
func New() string {
	return uuid.New().String()
}

// NewID returns a fresh identifier as a uuid.UUID, for callers that
// want to compare or store the raw 16 bytes rather than its string form.
func NewID() uuid.UUID {
	return uuid.New()
}
