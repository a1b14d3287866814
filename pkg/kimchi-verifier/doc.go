// Package kimchiverifier is the public API for a kimchi-family PLONK
// proof verifier: generic gates, Poseidon rounds, EC-point gates,
// Plookup-style lookups with optional runtime tables, and IPA-style
// polynomial openings.
//
// # Architecture
//
// Like the teacher this module is adapted from, the public API is a thin
// wrapper over a private implementation:
//
//   - pkg/kimchi-verifier/: public API (this package)
//   - internal/kimchi-verifier/: private implementation (not importable)
//
// Every piece of field, curve, FFT-domain, and sponge arithmetic is
// consumed through an interface (internal/kimchi-verifier/field,
// .../curve, .../domain, .../sponge); this module supplies one concrete,
// demonstrative binding in internal/kimchi-verifier/backend/bn254.
//
// # Quick start
//
//	hooks := kimchiverifier.Hooks[bn254.BaseElement, bn254.ScalarElement, bn254.Point]{ ... }
//	v, err := kimchiverifier.New(hooks, kimchiverifier.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = v.Verify(kimchiverifier.BatchInput[bn254.BaseElement, bn254.ScalarElement, bn254.Point]{
//		Index: index,
//		Proof: proof,
//		SRSLength:    srsLength,
//		SRSMaxDegree: srsMaxDegree,
//	})
//	if err != nil {
//		var verr *kimchiverifier.Error
//		if errors.As(err, &verr) {
//			fmt.Println(verr.Code, verr.Message)
//		}
//	}
package kimchiverifier
