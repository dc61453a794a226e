package term

import "fmt"

// MacroTable is the borrowed view of the interpreter's abbreviation map
// that Prepare and Reduce need. It is implemented by the driver package;
// term stays independent of it so the term/driver dependency runs one way.
type MacroTable interface {
	// Lookup returns the defining body (a defined abbreviation's Root's
	// child) for name, if name is currently defined.
	Lookup(name string) (body Node, ok bool)
}

// HistorySource is the borrowed view of the interpreter's history ring
// that Prepare and Reduce need.
type HistorySource interface {
	// Latest returns the most recent entry's body (stored fully
	// expanded), or ok=false if the history is empty.
	Latest() (body Node, ok bool)
}

// WarningKind classifies a non-fatal Prepare diagnostic.
type WarningKind int

const (
	WarnFreeVariable WarningKind = iota
	WarnHistoryExpansion
)

// Warning is one non-fatal diagnostic surfaced by Prepare.
type Warning struct {
	Kind WarningKind
	Name string // set for WarnFreeVariable; empty for WarnHistoryExpansion
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnFreeVariable:
		return fmt.Sprintf("%q is not bound or defined; treating as free", w.Name)
	case WarnHistoryExpansion:
		return "'$' expanded to the most recent result"
	default:
		return "warning"
	}
}

// Prepare binds a freshly parsed tree for reduction: Macro leaves are
// resolved to Bound, left as lazily-expanding references to a defined
// abbreviation, or demoted to Free; History leaves are expanded
// immediately. banSelf, when non-empty, is the name of the macro currently
// being defined, so a self-referencing Macro leaf can be rejected.
//
// One pass over the outline traversal does all of it: the scope map is
// pushed and popped at Func boundaries as the walk enters and leaves them.
func Prepare(root *Root, ids *IDGen, macros MacroTable, history HistorySource, banSelf string) ([]Warning, error) {
	var warnings []Warning
	scope := map[string]*Bound{}

	w := NewWalker(root)
	for {
		dir, n, ok := w.Next()
		if !ok {
			break
		}

		switch node := n.(type) {
		case *Func:
			if dir == FromUp {
				if _, shadowed := scope[node.ParamRaw]; shadowed {
					return warnings, &NameConflictError{Name: node.ParamRaw}
				}
				b := NewBound(stripSubscript(node.ParamRaw), ids.Next())
				node.Param = b
				scope[node.ParamRaw] = b
			} else if dir == FromLeft {
				delete(scope, node.ParamRaw)
			}

		case *Macro:
			if dir != FromUp {
				continue
			}
			if banSelf != "" && node.Name == banSelf {
				return warnings, &SelfReferenceError{Name: banSelf}
			}
			if b, bound := scope[node.Name]; bound {
				replacement := NewBound(b.Name, b.ID)
				replaceCurrent(node, replacement)
				w.SetCursor(replacement)
				continue
			}
			if _, defined := macros.Lookup(node.Name); defined {
				// Leave as Macro: it expands lazily during reduction.
				continue
			}
			replacement := NewFree(node.Name)
			replaceCurrent(node, replacement)
			w.SetCursor(replacement)
			warnings = append(warnings, Warning{Kind: WarnFreeVariable, Name: node.Name})

		case *History:
			if dir != FromUp {
				continue
			}
			body, has := history.Latest()
			if !has {
				return warnings, &EmptyHistoryError{}
			}
			replacement := Clone(body, ids)
			replaceCurrent(node, replacement)
			w.SetCursor(replacement)
			warnings = append(warnings, Warning{Kind: WarnHistoryExpansion})
		}
	}

	return warnings, nil
}

// replaceCurrent splices replacement into old's parent slot, taking old's
// place in the tree.
func replaceCurrent(old, replacement Node) {
	parent := old.Parent()
	side := old.ParentSide()
	if parent == nil {
		return
	}
	parent.SetChild(side, replacement)
}

// stripSubscript drops any trailing subscript digits from a raw bound
// name, leaving just the letter as the display hint stored on the
// resulting Bound. The subscripts the user typed are not reused by the
// printer, which assigns its own when disambiguating shadowed names.
func stripSubscript(raw string) string {
	runes := []rune(raw)
	if len(runes) == 0 {
		return raw
	}
	return string(runes[0])
}
