package csp

import "errors"

// Error kinds for the solver's embedding surface. They are ordinary Go errors, never panics or
// exceptions: posting helpers and domain surgery return them directly, and
// Solve reports search-time infeasibility via its bool result rather than an
// error.
var (
	// ErrUnsat means the model (or the constraint being posted) is
	// infeasible at the root level.
	ErrUnsat = errors.New("csp: model is unsatisfiable")

	// ErrUnsupported means a front-end encountered a construct the core
	// deliberately does not implement (e.g. full Table/Regular
	// propagation). The core keeps the sentinel so a front-end can wrap it;
	// nothing in this repo's embedding surface itself returns it.
	ErrUnsupported = errors.New("csp: construct not supported by the core")

	// ErrType is reserved for a modelling front-end's type checker. No
	// front-end ships in this repo, so nothing here raises it; it exists so
	// a front-end built on this core has a sentinel to wrap.
	ErrType = errors.New("csp: type error")
)
