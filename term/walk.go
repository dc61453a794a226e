package term

// Walker performs the outline traversal used by the preparer, reducer, and
// full-expander; the printer does not use it and recurses over the tree
// itself. Each call to Next yields the direction from
// which a node was reached and the node itself; the caller decides what
// "visiting" means.
//
// Walking a Root stops once the pointer returns to that same Root (there
// is nothing "above" a Root); walking any other node stops once the
// pointer steps back to that node's original parent.
type Walker struct {
	start  Node
	stopAt Node // nil when start is a Root: stop condition is "ptr == start" instead
	ptr    Node
	dir    Dir
	first  bool
	done   bool
}

// NewWalker begins an outline traversal rooted at n. n is typically a *Root,
// but a bare subtree can be walked too.
func NewWalker(n Node) *Walker {
	w := &Walker{start: n, ptr: n, dir: FromUp, first: true}
	if n.Kind() != KindRoot {
		w.stopAt = n.Parent()
	}
	return w
}

// Next advances the traversal, returning the direction of arrival, the node
// reached, and whether the traversal produced a value. A false third value
// means the traversal is finished.
func (w *Walker) Next() (Dir, Node, bool) {
	if w.done {
		return 0, nil, false
	}

	if w.first {
		w.first = false
		return w.dir, w.ptr, true
	}

	switch w.ptr.Kind() {
	case KindRoot:
		// A Root only ever reacts to arriving from above; arriving back
		// from its own left child (dir == FromLeft) falls through to the
		// stop check below unchanged, exactly like stepping above the
		// traversal's starting point.
		if w.dir == FromUp {
			w.descendLeft()
		}
	case KindFunc:
		if w.dir == FromUp {
			w.descendLeft()
		} else {
			w.ascend()
		}
	case KindCall:
		switch w.dir {
		case FromUp:
			w.descendLeft()
		case FromLeft:
			w.descendRight()
		case FromRight:
			w.ascend()
		}
	default: // EndNode: Bound, Macro, Free, Church, History
		w.ascend()
	}

	if w.stopped() {
		w.done = true
		return 0, nil, false
	}
	return w.dir, w.ptr, true
}

func (w *Walker) stopped() bool {
	if w.start.Kind() == KindRoot {
		return w.ptr == w.start && w.dir == FromLeft
	}
	return w.ptr == w.stopAt
}

func (w *Walker) descendLeft() {
	if child := w.ptr.Child(LeftSide); child != nil {
		w.ptr = child
		w.dir = FromUp
		return
	}
	// No left child: nothing to descend into, so this acts like an
	// immediate return from the left side.
	w.dir = FromLeft
}

func (w *Walker) descendRight() {
	if child := w.ptr.Child(RightSide); child != nil {
		w.ptr = child
		w.dir = FromUp
		return
	}
	w.dir = FromRight
}

func (w *Walker) ascend() {
	side := w.ptr.ParentSide()
	parent := w.ptr.Parent()
	w.ptr = parent
	switch side {
	case LeftSide:
		w.dir = FromLeft
	case RightSide:
		w.dir = FromRight
	default:
		w.dir = FromUp
	}
}

// SetCursor repositions the traversal onto n, which must occupy the same
// tree slot the current node just vacated. Used by visitors that rewrite
// the node under the cursor, e.g. Prepare after splicing a Bound, Free, or
// clone in for a Macro or History leaf.
func (w *Walker) SetCursor(n Node) {
	w.ptr = n
}

// Walk calls visit for every (direction, node) pair produced by an outline
// traversal rooted at n, stopping early if visit returns false.
func Walk(n Node, visit func(Dir, Node) bool) {
	w := NewWalker(n)
	for {
		dir, node, ok := w.Next()
		if !ok {
			return
		}
		if !visit(dir, node) {
			return
		}
	}
}
