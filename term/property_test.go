package term_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-dr/lamb/parser"
	"github.com/rm-dr/lamb/term"
)

type noMacros struct{}

func (noMacros) Lookup(string) (term.Node, bool) { return nil, false }

type noHistory struct{}

func (noHistory) Latest() (term.Node, bool) { return nil, false }

// genTerm builds a random reduction-ready term of the given maximum depth.
// Bound references only ever point at enclosing binders, so every generated
// tree satisfies the binder invariants by construction.
func genTerm(rng *rand.Rand, ids *term.IDGen, depth int, scope []*term.Bound) term.Node {
	if depth <= 0 || rng.Intn(4) == 0 {
		return genLeaf(rng, scope)
	}
	switch rng.Intn(3) {
	case 0:
		name := string(rune('a' + rng.Intn(6)))
		b := term.NewBound(name, ids.Next())
		f := term.NewFunc(name, nil)
		f.Param = b
		f.SetChild(term.LeftSide, genTerm(rng, ids, depth-1, append(scope, b)))
		return f
	case 1:
		return term.NewCall(
			genTerm(rng, ids, depth-1, scope),
			genTerm(rng, ids, depth-1, scope),
		)
	default:
		return genLeaf(rng, scope)
	}
}

func genLeaf(rng *rand.Rand, scope []*term.Bound) term.Node {
	if len(scope) > 0 && rng.Intn(2) == 0 {
		b := scope[rng.Intn(len(scope))]
		return term.NewBound(b.Name, b.ID)
	}
	switch rng.Intn(3) {
	case 0:
		return term.NewFree([]string{"Q", "R", "lhs", "rhs"}[rng.Intn(4)])
	case 1:
		return term.NewChurch(rng.Intn(5))
	default:
		return term.NewFree("Z")
	}
}

func boundIDs(n term.Node) map[uint64]bool {
	out := map[uint64]bool{}
	term.Walk(n, func(dir term.Dir, node term.Node) bool {
		if dir != term.FromUp {
			return true
		}
		switch t := node.(type) {
		case *term.Bound:
			out[t.ID] = true
		case *term.Func:
			if t.Param != nil {
				out[t.Param.ID] = true
			}
		}
		return true
	})
	return out
}

func freeNames(n term.Node) []string {
	var out []string
	term.Walk(n, func(dir term.Dir, node term.Node) bool {
		if f, ok := node.(*term.Free); ok && dir == term.FromUp {
			out = append(out, f.Name)
		}
		return true
	})
	sort.Strings(out)
	return out
}

// TestCloneIsAlphaEquivalentAndIDDisjoint covers the cloning law: the copy
// prints identically (printing is α-canonical, display names plus
// deterministic shadow subscripts) while sharing no bound ids with the
// original.
func TestCloneIsAlphaEquivalentAndIDDisjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := &term.IDGen{}

	for trial := 0; trial < 200; trial++ {
		orig := genTerm(rng, ids, 8, nil)
		clone := term.Clone(orig, ids)

		if diff := cmp.Diff(term.Print(orig, true), term.Print(clone, true)); diff != "" {
			t.Fatalf("trial %d: clone is not α-equivalent (-orig +clone):\n%s", trial, diff)
		}

		origIDs := boundIDs(orig)
		for id := range boundIDs(clone) {
			if origIDs[id] {
				t.Fatalf("trial %d: clone shares bound id %d with original", trial, id)
			}
		}
	}
}

// TestExportRoundTrip covers the parse/print law: export output re-parses
// and re-prepares to a term that prints identically.
func TestExportRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ids := &term.IDGen{}

	for trial := 0; trial < 200; trial++ {
		orig := genTerm(rng, ids, 8, nil)
		printed := term.Print(orig, true)

		line, err := parser.ParseLine(printed)
		require.NoError(t, err, "trial %d: %q did not re-parse", trial, printed)
		require.Equal(t, parser.LineExpression, line.Kind)

		root := term.NewRoot(line.Expr)
		_, err = term.Prepare(root, ids, noMacros{}, noHistory{}, "")
		require.NoError(t, err, "trial %d: %q did not re-prepare", trial, printed)

		again := term.Print(root, true)
		if printed != again {
			t.Fatalf("trial %d: round trip drifted:\n%s", trial, pretty.Compare(printed, again))
		}
	}
}

// TestReduceNeverInventsFreeVariables covers the free-variable law: the set
// of Free names can only shrink (or repeat) across reduction steps, never
// grow.
func TestReduceNeverInventsFreeVariables(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ids := &term.IDGen{}

	for trial := 0; trial < 100; trial++ {
		root := term.NewRoot(genTerm(rng, ids, 6, nil))
		before := map[string]bool{}
		for _, name := range freeNames(root) {
			before[name] = true
		}

		for step := 0; step < 50; step++ {
			kind, err := term.Reduce(root, ids, noMacros{}, noHistory{})
			require.NoError(t, err)
			if kind == term.ReduceNone {
				break
			}
			for _, name := range freeNames(root) {
				assert.True(t, before[name],
					"trial %d step %d: free variable %q appeared from nowhere", trial, step, name)
			}
		}
	}
}

// TestReductionIsDeterministic covers the confluence law for the single
// specified strategy: two independent reductions of clones of the same term
// arrive at the same normal form whenever both terminate.
func TestReductionIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	ids := &term.IDGen{}

	reduceToNormal := func(root *term.Root) (string, bool) {
		for step := 0; step < 200; step++ {
			kind, err := term.Reduce(root, ids, noMacros{}, noHistory{})
			require.NoError(t, err)
			if kind == term.ReduceNone {
				return term.Print(root, true), true
			}
		}
		return "", false
	}

	for trial := 0; trial < 100; trial++ {
		seed := genTerm(rng, ids, 6, nil)
		a, aOK := reduceToNormal(term.NewRoot(term.Clone(seed, ids)))
		b, bOK := reduceToNormal(term.NewRoot(term.Clone(seed, ids)))
		if aOK && bOK {
			assert.Equal(t, a, b, "trial %d", trial)
		}
	}
}

// TestSubstitutionTargetsExactlyTheParameter covers the apply law: every
// Bound with the parameter's id is replaced, and Bounds referencing other
// binders survive untouched.
func TestSubstitutionTargetsExactlyTheParameter(t *testing.T) {
	ids := &term.IDGen{}

	// λx.λy. x (y x)  applied to  Q'
	x := term.NewBound("x", ids.Next())
	y := term.NewBound("y", ids.Next())

	inner := term.NewFunc("y", nil)
	inner.Param = y
	inner.SetChild(term.LeftSide, term.NewCall(
		term.NewBound("x", x.ID),
		term.NewCall(term.NewBound("y", y.ID), term.NewBound("x", x.ID)),
	))

	outer := term.NewFunc("x", nil)
	outer.Param = x
	outer.SetChild(term.LeftSide, inner)

	root := term.NewRoot(term.NewCall(outer, term.NewFree("Q")))
	kind, err := term.Reduce(root, ids, noMacros{}, noHistory{})
	require.NoError(t, err)
	require.Equal(t, term.ReduceFunctionApply, kind)

	assert.Equal(t, "λy.(Q' (y Q'))", term.Print(root, true))
}
