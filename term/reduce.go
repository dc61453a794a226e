package term

// ReduceKind classifies what a single call to Reduce did.
type ReduceKind int

const (
	ReduceNone ReduceKind = iota
	ReduceFunctionApply
	ReduceMacroExpand
	ReduceAutoChurch
	ReduceHistExpand
)

func (k ReduceKind) String() string {
	switch k {
	case ReduceNone:
		return "NONE"
	case ReduceFunctionApply:
		return "FUNCTION_APPLY"
	case ReduceMacroExpand:
		return "MACRO_EXPAND"
	case ReduceAutoChurch:
		return "AUTOCHURCH"
	case ReduceHistExpand:
		return "HIST_EXPAND"
	}
	return "UNKNOWN"
}

// Reduce performs one leftmost-outermost reduction step. It walks the tree
// in outline order; the first Call seen from above is the redex candidate,
// and its Left child's kind decides what happens:
//
//   - Func:    splice in the result of apply (capture-avoiding substitution)
//   - Macro:   replace the Call's Left with a fresh clone of the macro body
//   - Church:  replace the Call's Left with the canonical numeral expansion
//   - History: replace the Call's Left with a clone of the latest entry
//   - anything else: not a redex here; keep walking
//
// If the traversal finishes without finding a reducible Call, one last rule
// applies: a reduction that left a bare Macro as the whole term (say NOT T
// collapsing to F) realises that abbreviation before the term can count as
// normal, so the reported result is the abbreviation's body rather than its
// name. Church numerals get no such treatment — the literal is already its
// own normal form. Only when neither rule fires does Reduce return
// ReduceNone.
func Reduce(root *Root, ids *IDGen, macros MacroTable, history HistorySource) (ReduceKind, error) {
	kind := ReduceNone
	var stepErr error

	Walk(root, func(dir Dir, n Node) bool {
		if dir != FromUp {
			return true
		}
		call, ok := n.(*Call)
		if !ok {
			return true
		}

		switch fn := call.left.(type) {
		case *Func:
			result := substitute(fn.left, fn.Param.ID, call.right, ids)
			spliceReplace(call, result)
			kind = ReduceFunctionApply
			return false

		case *Macro:
			body, defined := macros.Lookup(fn.Name)
			if !defined {
				// A Macro surviving Prepare always names a defined
				// abbreviation; treat an inconsistency here as "not
				// reducible" rather than panicking mid-session.
				return true
			}
			call.SetChild(LeftSide, Clone(body, ids))
			kind = ReduceMacroExpand
			return false

		case *Church:
			call.SetChild(LeftSide, churchNumeral(fn.N, ids))
			kind = ReduceAutoChurch
			return false

		case *History:
			body, has := history.Latest()
			if !has {
				stepErr = &EmptyHistoryError{}
				return false
			}
			call.SetChild(LeftSide, Clone(body, ids))
			kind = ReduceHistExpand
			return false

		default:
			return true
		}
	})

	if kind == ReduceNone && stepErr == nil {
		if m, ok := root.left.(*Macro); ok {
			if body, defined := macros.Lookup(m.Name); defined {
				root.SetChild(LeftSide, Clone(body, ids))
				kind = ReduceMacroExpand
			}
		}
	}

	return kind, stepErr
}

// substitute replaces every Bound with id paramID underneath n by a fresh
// clone of arg, mutating Func/Call children in place via SetChild and
// returning the (possibly new) node that should occupy n's old slot. The
// per-occurrence clone freshens every binder id it copies, so substitution
// cannot capture.
func substitute(n Node, paramID uint64, arg Node, ids *IDGen) Node {
	switch t := n.(type) {
	case *Bound:
		if t.ID == paramID {
			return Clone(arg, ids)
		}
		return t
	case *Func:
		t.SetChild(LeftSide, substitute(t.left, paramID, arg, ids))
		return t
	case *Call:
		t.SetChild(LeftSide, substitute(t.left, paramID, arg, ids))
		t.SetChild(RightSide, substitute(t.right, paramID, arg, ids))
		return t
	default: // Macro, Free, Church, History: inert leaves, nothing to replace
		return n
	}
}

// spliceReplace replaces old in its parent's slot with replacement.
func spliceReplace(old, replacement Node) {
	parent := old.Parent()
	side := old.ParentSide()
	if parent == nil {
		return
	}
	parent.SetChild(side, replacement)
}

// churchNumeral builds λf.λa. f(f(...(f a)...)) with n applications of f,
// each internal Bound reference getting its own node sharing the binder's
// id.
func churchNumeral(n int, ids *IDGen) Node {
	fBound := NewBound("f", ids.Next())
	aBound := NewBound("a", ids.Next())

	var body Node = NewBound(aBound.Name, aBound.ID)
	for i := 0; i < n; i++ {
		body = NewCall(NewBound(fBound.Name, fBound.ID), body)
	}

	inner := &Func{ParamRaw: aBound.Name, Param: aBound}
	inner.SetChild(LeftSide, body)

	outer := &Func{ParamRaw: fBound.Name, Param: fBound}
	outer.SetChild(LeftSide, inner)

	return outer
}

// expandLeaf expands a single expandable leaf one level, without recursing
// into the result. Used both by ExpandOnce (naked-leaf "show macro") and by
// ExpandAll's inner loop.
func expandLeaf(n Node, ids *IDGen, macros MacroTable, history HistorySource) (Node, ReduceKind, error) {
	switch t := n.(type) {
	case *Macro:
		body, defined := macros.Lookup(t.Name)
		if !defined {
			return n, ReduceNone, nil
		}
		return Clone(body, ids), ReduceMacroExpand, nil
	case *Church:
		return churchNumeral(t.N, ids), ReduceAutoChurch, nil
	case *History:
		body, has := history.Latest()
		if !has {
			return nil, ReduceNone, &EmptyHistoryError{}
		}
		return Clone(body, ids), ReduceHistExpand, nil
	default:
		return n, ReduceNone, nil
	}
}

// ExpandOnce expands root's child exactly once if it is itself an
// expandable leaf — the "show macro" treatment a naked NAME, numeral, or $
// gets at the prompt. It reports whether an expansion happened and, if so,
// which kind.
func ExpandOnce(root *Root, ids *IDGen, macros MacroTable, history HistorySource) (ReduceKind, error) {
	child := root.left
	if child == nil || !IsExpandable(child) {
		return ReduceNone, nil
	}
	replacement, kind, err := expandLeaf(child, ids, macros, history)
	if err != nil {
		return ReduceNone, err
	}
	if kind == ReduceNone {
		return ReduceNone, nil
	}
	root.SetChild(LeftSide, replacement)
	return kind, nil
}

// ExpandAll performs a full pass expanding every remaining Macro, Church,
// and History leaf in root's tree. Each leaf is expanded repeatedly until
// its replacement is no longer itself expandable, so a macro that expands
// to another macro reference is fully realised before the walk continues
// into it.
func ExpandAll(root *Root, ids *IDGen, macros MacroTable, history HistorySource) error {
	w := NewWalker(root)
	for {
		dir, n, ok := w.Next()
		if !ok {
			return nil
		}
		if dir != FromUp || !IsExpandable(n) {
			continue
		}

		current := n
		for IsExpandable(current) {
			replacement, kind, err := expandLeaf(current, ids, macros, history)
			if err != nil {
				return err
			}
			if kind == ReduceNone {
				break
			}
			current = replacement
		}
		if current != n {
			spliceReplace(n, current)
			w.SetCursor(current)
		}
	}
}
