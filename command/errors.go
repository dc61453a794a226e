package command

import "fmt"

// UndefinedCommandError reports an unknown command name after ':'.
type UndefinedCommandError struct {
	Name string
}

func (e *UndefinedCommandError) Error() string {
	return fmt.Sprintf("undefined command %q", e.Name)
}

// BadCommandArgError reports wrong arity or an invalid argument value.
type BadCommandArgError struct {
	Command string
	Reason  string
}

func (e *BadCommandArgError) Error() string {
	return fmt.Sprintf("%s: bad argument: %s", e.Command, e.Reason)
}
