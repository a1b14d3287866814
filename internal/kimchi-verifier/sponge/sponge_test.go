package sponge_test

import (
	"testing"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/backend/bn254"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
)

func endo() sponge.DefaultEndomorphism[bn254.ScalarElement] {
	f := bn254.ScalarFactory{}
	return sponge.DefaultEndomorphism[bn254.ScalarElement]{Zero: f.Zero(), One: f.One()}
}

func TestScalarChallengeLimbsRoundTrip(t *testing.T) {
	limbs := []uint64{0xdeadbeef, 0x1234abcd}
	c := sponge.NewScalarChallenge[bn254.ScalarElement](limbs)
	got := c.Limbs()
	if len(got) != len(limbs) {
		t.Fatalf("got %d limbs, want %d", len(got), len(limbs))
	}
	for i := range limbs {
		if got[i] != limbs[i] {
			t.Fatalf("limb %d: got %x, want %x", i, got[i], limbs[i])
		}
	}
	// NewScalarChallenge must copy, not alias, the input slice.
	limbs[0] = 0
	if c.Limbs()[0] == 0 {
		t.Fatal("ScalarChallenge aliased the caller's slice")
	}
}

func TestToFieldDeterministic(t *testing.T) {
	endoR := bn254.ScalarFactory{}.FromUint64(7)
	c := sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{1, 2})
	a := sponge.ToField(c, endoR, endo())
	b := sponge.ToField(c, endoR, endo())
	if a != b {
		t.Fatal("ToField is not deterministic for identical inputs")
	}
}

func TestToFieldSensitiveToLimbs(t *testing.T) {
	endoR := bn254.ScalarFactory{}.FromUint64(7)
	a := sponge.ToField(sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{1, 2}), endoR, endo())
	b := sponge.ToField(sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{1, 3}), endoR, endo())
	if a == b {
		t.Fatal("ToField produced the same scalar for different limb sequences")
	}
}

func TestToFieldSensitiveToEndoR(t *testing.T) {
	c := sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{1, 2})
	a := sponge.ToField(c, bn254.ScalarFactory{}.FromUint64(7), endo())
	b := sponge.ToField(c, bn254.ScalarFactory{}.FromUint64(9), endo())
	if a == b {
		t.Fatal("ToField ignored endoR")
	}
}

func TestRawFieldDiffersFromToField(t *testing.T) {
	endoR := bn254.ScalarFactory{}.FromUint64(7)
	c := sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{0x1111111111111111, 0x2222222222222222})
	raw := sponge.RawField[bn254.ScalarElement](c, bn254.ScalarFactory{})
	derived := sponge.ToField(c, endoR, endo())
	if raw == derived {
		t.Fatal("RawField and ToField must use distinct derivation paths (spec.md §4.3 step 7)")
	}
}

func TestRawFieldDeterministic(t *testing.T) {
	c := sponge.NewScalarChallenge[bn254.ScalarElement]([]uint64{42, 99})
	a := sponge.RawField[bn254.ScalarElement](c, bn254.ScalarFactory{})
	b := sponge.RawField[bn254.ScalarElement](c, bn254.ScalarFactory{})
	if a != b {
		t.Fatal("RawField is not deterministic for identical inputs")
	}
}
