package verifier

import "errors"

// Sentinel errors, one per spec.md §7 error kind. The public wrapper
// (pkg/kimchi-verifier) classifies these into its own *Error type; this
// package only ever returns plain errors, wrapping a sentinel via %w so
// errors.Is still works across the package boundary.
var (
	ErrDifferentSRS              = errors.New("verifier: batch references SRSes of differing length")
	ErrSRSTooSmall               = errors.New("verifier: SRS max degree is smaller than circuit domain size")
	ErrIncorrectPublicInputLength = errors.New("verifier: incorrect public input length")
	ErrIncorrectCommitmentLength = errors.New("verifier: incorrect commitment length")
	ErrIncorrectPrevChallengesLength = errors.New("verifier: incorrect previous-challenges length")
	ErrLookupCommitmentMissing   = errors.New("verifier: index expects lookup but proof omits lookup commitments")
	ErrLookupEvalsMissing        = errors.New("verifier: lookup commitments present but evaluations absent")
	ErrProofInconsistentLookup   = errors.New("verifier: lookup sorted-commitment count does not match evaluation count")
	ErrIncorrectRuntimeProof     = errors.New("verifier: runtime table required/provided inconsistently")
	ErrOpenProof                 = errors.New("verifier: opening proof rejected")
)
