package term

import (
	"strconv"
	"strings"
)

// subscriptDigits4 are the four subscript characters used to disambiguate
// shadowed bound-variable names when printing: the rest of the Unicode
// subscript block is avoided because several of its digits render
// indistinguishably in common terminal fonts.
var subscriptDigits4 = [4]rune{'₀', '₁', '₂', '₃'}

// subscriptSuffix renders n (n >= 1) in base 4 using subscriptDigits4.
func subscriptSuffix(n int) string {
	if n <= 0 {
		return ""
	}
	var digits []rune
	for n > 0 {
		digits = append([]rune{subscriptDigits4[n%4]}, digits...)
		n /= 4
	}
	return string(digits)
}

// printer carries the state threaded through one Print call: which base
// display names are currently shadowed how many times over (active), and
// the display string assigned to each Bound id encountered so far (names).
// A missing map key reads as zero, which is exactly "not shadowed".
type printer struct {
	export bool
	active map[string]int
	names  map[uint64]string
}

// Print renders n as a string that re-parses to an α-equivalent term.
// export selects the save-file-safe rendering used by the save command;
// today every rule below already produces save-safe output (free variables
// keep their trailing `'` in both modes), so export is carried for
// callers' documentation value rather than branching internally.
func Print(n Node, export bool) string {
	p := &printer{export: export, active: map[string]int{}, names: map[uint64]string{}}
	return p.print(n, false)
}

func (p *printer) print(n Node, wrapFuncInParens bool) string {
	if n == nil {
		return ""
	}
	switch t := n.(type) {
	case *Root:
		return p.print(t.left, false)

	case *Func:
		return p.printFunc(t, wrapFuncInParens)

	case *Call:
		left := p.print(t.left, true)
		right := p.print(t.right, true)
		return "(" + left + " " + right + ")"

	case *Bound:
		if name, ok := p.names[t.ID]; ok {
			return name
		}
		return t.Name

	case *Macro:
		return t.Name

	case *Free:
		return t.Name + "'"

	case *Church:
		return strconv.Itoa(t.N)

	case *History:
		return "$"

	default:
		return "?"
	}
}

// printFunc renders a Func and every Func directly nested in its body as a
// single collapsed abstraction: λx1x2….body. wrap adds parentheses around
// the whole abstraction,
// required whenever a Func sits directly under a Call, where an
// unparenthesized abstraction would otherwise swallow the rest of the line.
//
// A Func that has not been through Prepare yet has no Param; its as-parsed
// ParamRaw prints instead, so diagnostic printing of half-built trees works.
func (p *printer) printFunc(f *Func, wrap bool) string {
	type param struct {
		name  string
		bound *Bound
	}
	var params []param
	var body Node = f
	for {
		ff, ok := body.(*Func)
		if !ok {
			break
		}
		if ff.Param != nil {
			params = append(params, param{name: ff.Param.Name, bound: ff.Param})
		} else {
			params = append(params, param{name: ff.ParamRaw})
		}
		body = ff.Child(LeftSide)
	}

	var names strings.Builder
	for _, pr := range params {
		disp := pr.name
		count := p.active[pr.name]
		if count > 0 {
			disp = pr.name + subscriptSuffix(count)
		}
		p.active[pr.name] = count + 1
		if pr.bound != nil {
			p.names[pr.bound.ID] = disp
		}
		names.WriteString(disp)
	}

	bodyStr := p.print(body, false)

	for _, pr := range params {
		p.active[pr.name]--
	}

	s := "λ" + names.String() + "." + bodyStr
	if wrap {
		s = "(" + s + ")"
	}
	return s
}
