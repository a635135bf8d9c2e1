package crdtcore

import "errors"

// Sentinel error kinds per the library's error taxonomy. UnknownIdentifier
// and IdentifierExhaustion are structural errors surfaced to the caller;
// EmptyClock is never returned (it is a swallowed no-op, logged at debug
// level by the types that detect it); ErrEmptyClock only names the
// condition, and neither the return values nor the log lines of this
// library carry it.
var (
	// ErrEmptyClock marks an Op whose causal clock carries no dependencies.
	// Applying such an Op is a documented no-op, not a caller-visible error.
	ErrEmptyClock = errors.New("crdtcore: op carries an empty causal clock")

	// ErrUnknownIdentifier is returned when an LSeq Delete targets an
	// identifier absent from the sequence, under the causal-delivery
	// assumption (§4.6 of the spec) that a delete can never race ahead of
	// the insert it targets.
	ErrUnknownIdentifier = errors.New("lseq: delete targets an unknown identifier")

	// ErrIdentifierExhaustion is returned when the LSeq allocator cannot
	// mint a fresh identifier strictly between two neighbors within the
	// allocator's current depth bound.
	ErrIdentifierExhaustion = errors.New("lseq: identifier space exhausted between neighbors")
)
