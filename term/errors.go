package term

import "fmt"

// NameConflictError reports a Func parameter shadowing another bound name
// already in scope.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("name conflict: %q is already bound in this scope", e.Name)
}

// SelfReferenceError reports a macro definition body referring to the name
// being defined.
type SelfReferenceError struct {
	Name string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("self reference: macro %q refers to itself in its own definition", e.Name)
}

// EmptyHistoryError reports a `$` used before any successful reduction.
type EmptyHistoryError struct{}

func (e *EmptyHistoryError) Error() string {
	return "history is empty: no previous result to refer to with '$'"
}
