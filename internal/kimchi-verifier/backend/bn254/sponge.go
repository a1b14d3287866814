package bn254

import (
	"golang.org/x/crypto/sha3"

	ksponge "github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
)

// hashState is the shared sha3-based absorb/squeeze machinery behind
// both ScalarSponge and BaseSponge, grounded on utils/channel.go's own
// use of sha3 to drive its Fiat-Shamir channel. Production kimchi uses a
// Poseidon sponge (out of scope per spec.md §1); this sponge exists only
// so the bn254 backend has one instantiable, testable implementation
// (SPEC_FULL.md §6).
type hashState struct {
	state [32]byte
}

func (h *hashState) absorb(b []byte) {
	d := sha3.New256()
	d.Write(h.state[:])
	d.Write(b)
	copy(h.state[:], d.Sum(nil))
}

func (h *hashState) squeeze() [32]byte {
	d := sha3.New256()
	d.Write(h.state[:])
	d.Write([]byte("squeeze"))
	sum := d.Sum(nil)
	copy(h.state[:], sum)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// ScalarSponge implements sponge.Backend[ScalarElement].
type ScalarSponge struct {
	h hashState
}

func NewScalarSponge() *ScalarSponge { return &ScalarSponge{} }

func (s *ScalarSponge) Absorb(v ScalarElement) { s.h.absorb(v.Bytes()) }
func (s *ScalarSponge) AbsorbMany(vs []ScalarElement) {
	for _, v := range vs {
		s.Absorb(v)
	}
}
func (s *ScalarSponge) Squeeze() ScalarElement {
	out := s.h.squeeze()
	return ScalarFactory{}.FromBytes(out[:])
}
func (s *ScalarSponge) Clone() ksponge.Backend[ScalarElement] {
	cp := *s
	return &cp
}

// BaseSponge implements sponge.Backend[BaseElement].
type BaseSponge struct {
	h hashState
}

func NewBaseSponge() *BaseSponge { return &BaseSponge{} }

func (s *BaseSponge) Absorb(v BaseElement) { s.h.absorb(v.Bytes()) }
func (s *BaseSponge) AbsorbMany(vs []BaseElement) {
	for _, v := range vs {
		s.Absorb(v)
	}
}
func (s *BaseSponge) Squeeze() BaseElement {
	out := s.h.squeeze()
	return BaseFactory{}.FromBytes(out[:])
}
func (s *BaseSponge) Clone() ksponge.Backend[BaseElement] {
	cp := *s
	return &cp
}
