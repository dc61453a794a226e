package term

// IDGen hands out the unique integers that distinguish one Bound from
// another. The interpreter owns one and threads it explicitly into every
// call that needs a fresh id; there is no package-level counter.
type IDGen struct {
	next uint64
}

// Next returns a fresh id, never returned before by this generator.
func (g *IDGen) Next() uint64 {
	g.next++
	return g.next
}

// Clone deep-copies n, allocating a fresh Bound id for every Func parameter
// it copies and rewriting every Bound reference inside the copied subtree
// that points at one of those parameters to the new id — so the clone's
// binding structure mirrors the original's exactly while sharing no
// identifiers with it. A Bound reference to a binder declared OUTSIDE the
// cloned subtree (i.e. one Clone never saw the declaring Func for) keeps its
// original id, since that binder isn't being duplicated.
//
// Clone does its own recursive traversal rather than reusing Walker so the
// old-id-to-new-id remap can ride alongside the descent.
func Clone(n Node, ids *IDGen) Node {
	if n == nil {
		return nil
	}
	return cloneRec(n, ids, map[uint64]uint64{})
}

func cloneRec(n Node, ids *IDGen, remap map[uint64]uint64) Node {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *Root:
		return NewRoot(cloneRec(t.left, ids, remap))

	case *Call:
		return NewCall(
			cloneRec(t.left, ids, remap),
			cloneRec(t.right, ids, remap),
		)

	case *Func:
		newID := ids.Next()
		if t.Param != nil {
			remap[t.Param.ID] = newID
		}
		clone := &Func{ParamRaw: t.ParamRaw}
		if t.Param != nil {
			clone.Param = NewBound(t.Param.Name, newID)
		}
		clone.SetChild(LeftSide, cloneRec(t.left, ids, remap))
		return clone

	case *Bound:
		if newID, ok := remap[t.ID]; ok {
			return NewBound(t.Name, newID)
		}
		return NewBound(t.Name, t.ID)

	case *Macro:
		return NewMacro(t.Name)

	case *Free:
		return NewFree(t.Name)

	case *Church:
		return NewChurch(t.N)

	case *History:
		return NewHistory()

	default:
		panic("term: Clone: unhandled node kind")
	}
}
