package kimchiverifier

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/field"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/index"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/proof"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/verifier"
)

// Config is a Verifier's configuration (see verifier.Config for which
// fields are read); re-exported so callers never import the internal
// verifier package directly.
type Config = verifier.Config

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return verifier.DefaultConfig()
}

// Hooks bundles every external collaborator a Verifier needs: sponge
// construction, the endomorphism decomposition, the index digest
// function, the public-input commitment builder, the Poseidon MDS table,
// and the opening verifier (spec.md §6). Re-exported unchanged.
type Hooks[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]] = verifier.Hooks[Fq, Fr, G]

// VerifierIndex and ProverProof are re-exported so callers assembling a
// BatchInput never need to import the internal index/proof packages
// under their own names.
type VerifierIndex[Fq any, Fr any, G any] = index.VerifierIndex[Fq, Fr, G]
type ProverProof[Fq any, Fr any, G any] = proof.ProverProof[Fq, Fr, G]

// BatchInput pairs one proof with the verifier index and SRS parameters
// it is checked against — the unit Verify/BatchVerify operate on.
type BatchInput[Fq any, Fr any, G any] = verifier.BatchInput[Fq, Fr, G]

// Verifier is the public handle returned by New; Verify/BatchVerify are
// its only operations, matching pkg/vybium-starks-vm's "public interface
// wraps a private impl" shape.
type Verifier[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]] struct {
	inner *verifier.Verifier[Fq, Fr, G]
}

// New builds a Verifier from its consumed collaborators and a
// configuration, classifying any configuration error into *Error.
func New[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](hooks Hooks[Fq, Fr, G], cfg Config) (*Verifier[Fq, Fr, G], error) {
	inner, err := verifier.New(hooks, cfg)
	if err != nil {
		return nil, &Error{Code: ErrUnknown, Message: "invalid verifier configuration", Cause: err}
	}
	return &Verifier[Fq, Fr, G]{inner: inner}, nil
}

// Verify checks a single proof against its verifier index, per spec.md
// §4.7's `verify(proof)`.
func (v *Verifier[Fq, Fr, G]) Verify(b BatchInput[Fq, Fr, G]) error {
	if err := v.inner.Verify(b); err != nil {
		return classify(err)
	}
	return nil
}

// BatchVerify checks every proof in batch, succeeding only if all of them
// verify, per spec.md §4.7's `batch_verify`.
func (v *Verifier[Fq, Fr, G]) BatchVerify(batch []BatchInput[Fq, Fr, G]) error {
	if err := v.inner.BatchVerify(batch); err != nil {
		return classify(err)
	}
	return nil
}

// Verify is a package-level convenience wrapper building a one-shot
// Verifier from hooks/config and checking a single proof, for callers
// who don't need to reuse the Verifier across many proofs.
func Verify[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](hooks Hooks[Fq, Fr, G], cfg Config, b BatchInput[Fq, Fr, G]) error {
	v, err := New(hooks, cfg)
	if err != nil {
		return fmt.Errorf("kimchi-verifier: %w", err)
	}
	return v.Verify(b)
}

// BatchVerify is the package-level convenience form of BatchVerify.
func BatchVerify[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](hooks Hooks[Fq, Fr, G], cfg Config, batch []BatchInput[Fq, Fr, G]) error {
	v, err := New(hooks, cfg)
	if err != nil {
		return fmt.Errorf("kimchi-verifier: %w", err)
	}
	return v.BatchVerify(batch)
}
