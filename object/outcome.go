package object

// Signal tells how the evaluation of a statement completed.
type Signal int

const (
	SignalNone     Signal = iota // normal completion
	SignalReturn                 // return statement
	SignalBreak                  // break statement
	SignalContinue               // continue statement
	SignalError                  // runtime error
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "normal"
	case SignalReturn:
		return "return"
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	case SignalError:
		return "error"
	}
	return "unknown"
}

// Outcome is the result of evaluating a node. It is not an Object, so a
// pending return, break, continue or error can never be stored in a
// variable, an array or a map.
type Outcome struct {
	Signal Signal
	Value  Object // for SignalNone and SignalReturn
	Err    *Error // for SignalError
}

// Normal is a normal completion producing v.
func Normal(v Object) Outcome { return Outcome{Signal: SignalNone, Value: v} }

// Return carries v out of the enclosing function.
func Return(v Object) Outcome { return Outcome{Signal: SignalReturn, Value: v} }

// Break leaves the innermost loop.
func Break() Outcome { return Outcome{Signal: SignalBreak} }

// Continue starts the next iteration of the innermost loop.
func Continue() Outcome { return Outcome{Signal: SignalContinue} }

// Fail aborts evaluation with err.
func Fail(err *Error) Outcome { return Outcome{Signal: SignalError, Err: err} }

// IsNormal reports whether evaluation should continue with the next statement.
func (o Outcome) IsNormal() bool { return o.Signal == SignalNone }

// IsError reports whether o carries a runtime error.
func (o Outcome) IsError() bool { return o.Signal == SignalError }

func (o Outcome) String() string {
	switch o.Signal {
	case SignalNone, SignalReturn:
		if o.Value == nil {
			return o.Signal.String()
		}
		return o.Signal.String() + "(" + Repr(o.Value) + ")"
	case SignalError:
		return "error(" + o.Err.Error() + ")"
	}
	return o.Signal.String()
}
