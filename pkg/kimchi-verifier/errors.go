// Package kimchiverifier is the public API for the kimchi-family PLONK
// verifier: a thin wrapper over internal/kimchi-verifier/verifier that
// classifies its plain/sentinel errors into a typed *Error value.
package kimchiverifier

import (
	"errors"
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/verifier"
)

// ErrorCode identifies one of the error kinds a verify call can produce.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota

	// ErrDifferentSRS: two indices in a batch reference SRSes of differing length.
	ErrDifferentSRS

	// ErrSRSTooSmall: an SRS's max degree is less than its circuit domain size.
	ErrSRSTooSmall

	// ErrIncorrectPublicInputLength: proof's public-input vector length
	// does not match the index's declared public-input size.
	ErrIncorrectPublicInputLength

	// ErrIncorrectCommitmentLength: a commitment's chunk count does not
	// match the expected length (currently only "t" is checked this way).
	ErrIncorrectCommitmentLength

	// ErrIncorrectPrevChallengesLength: recursion-challenge count mismatch.
	ErrIncorrectPrevChallengesLength

	// ErrLookupCommitmentMissing: index expects lookup but proof omits
	// lookup commitments.
	ErrLookupCommitmentMissing

	// ErrLookupEvalsMissing: lookup commitments present but corresponding
	// evaluations absent.
	ErrLookupEvalsMissing

	// ErrProofInconsistentLookup: lookup sorted-commitment count does not
	// match evaluation count.
	ErrProofInconsistentLookup

	// ErrIncorrectRuntimeProof: runtime table required/provided inconsistently.
	ErrIncorrectRuntimeProof

	// ErrOpenProof: the opening proof was rejected.
	ErrOpenProof
)

func (c ErrorCode) String() string {
	switch c {
	case ErrDifferentSRS:
		return "DifferentSRS"
	case ErrSRSTooSmall:
		return "SRSTooSmall"
	case ErrIncorrectPublicInputLength:
		return "IncorrectPublicInputLength"
	case ErrIncorrectCommitmentLength:
		return "IncorrectCommitmentLength"
	case ErrIncorrectPrevChallengesLength:
		return "IncorrectPrevChallengesLength"
	case ErrLookupCommitmentMissing:
		return "LookupCommitmentMissing"
	case ErrLookupEvalsMissing:
		return "LookupEvalsMissing"
	case ErrProofInconsistentLookup:
		return "ProofInconsistentLookup"
	case ErrIncorrectRuntimeProof:
		return "IncorrectRuntimeProof"
	case ErrOpenProof:
		return "OpenProof"
	default:
		return "Unknown"
	}
}

// Error is the public error type every exported Verify/BatchVerify call
// returns on failure, grounded on the teacher's public VMError (same
// Code+Message+Cause, Error()/Unwrap()/Is() shape).
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("kimchi-verifier error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("kimchi-verifier error [%s]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// classify maps an internal/kimchi-verifier/verifier error into the
// public typed *Error, matching the sentinel it wraps via errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, verifier.ErrDifferentSRS):
		return &Error{Code: ErrDifferentSRS, Message: "batch references SRSes of differing length", Cause: err}
	case errors.Is(err, verifier.ErrSRSTooSmall):
		return &Error{Code: ErrSRSTooSmall, Message: "SRS max degree is smaller than circuit domain size", Cause: err}
	case errors.Is(err, verifier.ErrIncorrectPublicInputLength):
		return &Error{Code: ErrIncorrectPublicInputLength, Message: "public input length does not match the index", Cause: err}
	case errors.Is(err, verifier.ErrIncorrectCommitmentLength):
		return &Error{Code: ErrIncorrectCommitmentLength, Message: "commitment has an unexpected chunk count", Cause: err}
	case errors.Is(err, verifier.ErrIncorrectPrevChallengesLength):
		return &Error{Code: ErrIncorrectPrevChallengesLength, Message: "recursion challenge count mismatch", Cause: err}
	case errors.Is(err, verifier.ErrLookupCommitmentMissing):
		return &Error{Code: ErrLookupCommitmentMissing, Message: "index expects lookup but proof omits lookup commitments", Cause: err}
	case errors.Is(err, verifier.ErrLookupEvalsMissing):
		return &Error{Code: ErrLookupEvalsMissing, Message: "lookup commitments present but evaluations absent", Cause: err}
	case errors.Is(err, verifier.ErrProofInconsistentLookup):
		return &Error{Code: ErrProofInconsistentLookup, Message: "lookup sorted-commitment count does not match evaluation count", Cause: err}
	case errors.Is(err, verifier.ErrIncorrectRuntimeProof):
		return &Error{Code: ErrIncorrectRuntimeProof, Message: "runtime table required/provided inconsistently", Cause: err}
	case errors.Is(err, verifier.ErrOpenProof):
		return &Error{Code: ErrOpenProof, Message: "opening proof rejected", Cause: err}
	default:
		return &Error{Code: ErrUnknown, Message: "verification failed", Cause: err}
	}
}
