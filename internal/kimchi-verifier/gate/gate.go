// Package gate holds the circuit data model (spec.md §3): gate kinds,
// wires, and the column/commitment-selection enum the linearization
// evaluator dispatches on. Grounded on
// original_source/circuits/plonk/src/constraints.rs's `CircuitGate`/
// `GateWires`/`Column` shapes, renamed into Go's idiom the way
// protocols/constraints.go names its own `TransitionConstraintPolynomial`
// gate model.
package gate

// Kind enumerates the gate kinds this arithmetization supports, matching
// spec.md §3 exactly.
type Kind int

const (
	Zero Kind = iota
	Generic
	Poseidon
	CompleteAdd
	VarBaseMul
	EndoMul
	EndoMulScalar
	ChaCha0
	ChaCha1
	ChaCha2
	ChaChaFinal
	RangeCheck0
	RangeCheck1
	ForeignFieldAdd
	Lookup
)

func (k Kind) String() string {
	switch k {
	case Zero:
		return "Zero"
	case Generic:
		return "Generic"
	case Poseidon:
		return "Poseidon"
	case CompleteAdd:
		return "CompleteAdd"
	case VarBaseMul:
		return "VarBaseMul"
	case EndoMul:
		return "EndoMul"
	case EndoMulScalar:
		return "EndoMulScalar"
	case ChaCha0:
		return "ChaCha0"
	case ChaCha1:
		return "ChaCha1"
	case ChaCha2:
		return "ChaCha2"
	case ChaChaFinal:
		return "ChaChaFinal"
	case RangeCheck0:
		return "RangeCheck0"
	case RangeCheck1:
		return "RangeCheck1"
	case ForeignFieldAdd:
		return "ForeignFieldAdd"
	case Lookup:
		return "Lookup"
	default:
		return "Unknown"
	}
}

// Column enumerates how many witness columns and permutation columns this
// arithmetization uses. These match kimchi's own constants.
const (
	Columns = 15 // w[COLUMNS]
	Permuts = 7  // σ[PERMUTS-1] committed sigma polynomials
)

// Col is left/right/output, the three wire columns of one row.
type Col int

const (
	Left Col = iota
	Right
	Output
)

// Port is one wire: its own global position and the global position it is
// copy-constrained to. Global positions span [0, Permuts·n) with column
// stride n (one column per permuted wire, see Gate.Wires and Pad).
type Port struct {
	Local   uint64
	WiredTo uint64
}

// Gate is one row of the circuit trace. Wires holds one Port per
// permuted column (Permuts of them); only the first three (left, right,
// output) are meaningfully wired by most gate kinds, the rest carry
// self-loops for gates that do not use the extra copy-constraint slots.
type Gate struct {
	Kind         Kind
	Wires        [Permuts]Port
	Coefficients []uint64
}

// Row distinguishes the current row from the next row when the
// linearization evaluator needs to index an evaluation record.
type Row int

const (
	Curr Row = iota
	Next
)

// Column is the commitment-selection enum the linearization evaluator's
// tokens reference (spec.md §4.4/§4.5). It mirrors kimchi's `Column`
// exactly, including the lookup-specific and per-gate-kind variants.
type Column struct {
	Tag   ColumnTag
	Index int  // Witness/Coefficient/LookupSorted index
	Kind  Kind // Index(kind)
}

// ColumnTag discriminates the Column union.
type ColumnTag int

const (
	ColWitness ColumnTag = iota
	ColCoefficient
	ColZ
	ColLookupSorted
	ColLookupAggreg
	ColLookupTable
	ColLookupKindIndex
	ColLookupRuntimeSelector
	ColLookupRuntimeTable
	ColIndex
)

func Witness(i int) Column           { return Column{Tag: ColWitness, Index: i} }
func Coefficient(i int) Column       { return Column{Tag: ColCoefficient, Index: i} }
func Z() Column                      { return Column{Tag: ColZ} }
func LookupSorted(i int) Column      { return Column{Tag: ColLookupSorted, Index: i} }
func LookupAggreg() Column           { return Column{Tag: ColLookupAggreg} }
func LookupTable() Column            { return Column{Tag: ColLookupTable} }
func LookupKindIndex(i int) Column   { return Column{Tag: ColLookupKindIndex, Index: i} }
func LookupRuntimeSelector() Column  { return Column{Tag: ColLookupRuntimeSelector} }
func LookupRuntimeTable() Column     { return Column{Tag: ColLookupRuntimeTable} }
func Index(kind Kind) Column         { return Column{Tag: ColIndex, Kind: kind} }

// Pad extends gates with Zero gates whose wires self-loop at
// (c*n+i, c*n+i) for every permuted column c, per spec.md §3's padding
// rule, up to length n. It is a no-op if gates is already length n or
// longer.
func Pad(gates []Gate, n uint64) []Gate {
	if uint64(len(gates)) >= n {
		return gates
	}
	out := make([]Gate, n)
	copy(out, gates)
	for i := uint64(len(gates)); i < n; i++ {
		var wires [Permuts]Port
		for c := 0; c < Permuts; c++ {
			pos := uint64(c)*n + i
			wires[c] = Port{Local: pos, WiredTo: pos}
		}
		out[i] = Gate{Kind: Zero, Wires: wires}
	}
	return out
}
