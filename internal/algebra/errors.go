package algebra

import "fmt"

// CalcError reports an expression that is well formed but cannot be
// differentiated or evaluated, such as an unknown function or one without a
// derivative rule.
type CalcError struct {
	Message string
}

func (e *CalcError) Error() string {
	return e.Message
}

func calcErrorf(format string, args ...any) *CalcError {
	return &CalcError{Message: fmt.Sprintf(format, args...)}
}
