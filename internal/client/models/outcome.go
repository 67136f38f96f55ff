package models

import "fmt"

// FailureKind tags why a cache operation did not succeed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureTransport: the remote was unreachable or answered with an error status.
	FailureTransport
	// FailureDecode: the remote payload did not match the expected shape.
	FailureDecode
	// FailureNotFound: the remote has no record with the requested id.
	FailureNotFound
	// FailureStorage: the local store rejected the write; the transaction was rolled back.
	FailureStorage
	// FailureConflict: a locally added record collides with an existing id.
	FailureConflict
	// FailureInvalid: the caller supplied an unusable record or kind.
	FailureInvalid
	// FailureInternal: an unexpected fault was recovered inside the engine.
	FailureInternal
	// FailureCancelled: the caller stopped waiting; the run itself may still commit.
	FailureCancelled
)

var failureNames = map[FailureKind]string{
	FailureNone:      "none",
	FailureTransport: "transport",
	FailureDecode:    "decode",
	FailureNotFound:  "not_found",
	FailureStorage:   "storage",
	FailureConflict:  "conflict",
	FailureInvalid:   "invalid",
	FailureInternal:  "internal",
	FailureCancelled: "cancelled",
}

func (f FailureKind) String() string {
	if s, ok := failureNames[f]; ok {
		return s
	}
	return fmt.Sprintf("failure(%d)", int(f))
}

// Outcome is the explicit result of every write-side cache operation.
// Callers inspect OK (or Failure) instead of receiving a bare error.
type Outcome struct {
	Kind    Kind
	ID      int64
	Failure FailureKind
	Err     error

	// Rows written by a successful sync, per table.
	Planets         int
	Characters      int
	Transformations int
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Failure == FailureNone }

// Cause returns a human-readable reason for a failed outcome, or "" on success.
func (o Outcome) Cause() string {
	if o.OK() {
		return ""
	}
	if o.Err == nil {
		return o.Failure.String()
	}
	return fmt.Sprintf("%s: %v", o.Failure, o.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (o Outcome) Unwrap() error { return o.Err }

// Succeeded builds a successful outcome for kind.
func Succeeded(kind Kind, id int64) Outcome {
	return Outcome{Kind: kind, ID: id}
}

// Failed builds a failed outcome.
func Failed(kind Kind, id int64, failure FailureKind, err error) Outcome {
	return Outcome{Kind: kind, ID: id, Failure: failure, Err: err}
}
