package object

import (
	"bytes"
	"fmt"

	"github.com/podhmo/swiftflow/token"
)

// CallFrame represents a single frame in the call stack.
type CallFrame struct {
	Pos      token.Pos // position of the call expression
	Function string    // name of the called function, for stack traces
	IsNative bool
}

// Format formats the call frame into a readable string.
func (cf *CallFrame) Format(filename string) string {
	funcName := cf.Function
	if funcName == "" {
		funcName = "<anonymous>"
	}
	if filename == "" {
		filename = "<script>"
	}
	return fmt.Sprintf("\t%s:%s:\tin %s", filename, cf.Pos, funcName)
}

// --- Error ---

// Error is a runtime error. It carries the position where it happened and
// the call stack at that point. It is a Go error, not a value.
type Error struct {
	Filename  string
	Pos       token.Pos
	Message   string
	CallStack []*CallFrame
}

// Error returns the positioned message.
func (e *Error) Error() string {
	switch {
	case e.Filename != "" && e.Pos.IsValid():
		return fmt.Sprintf("%s:%s: %s", e.Filename, e.Pos, e.Message)
	case e.Pos.IsValid():
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Inspect returns a formatted representation of the error, including the
// call stack, most recent call first.
func (e *Error) Inspect() string {
	var out bytes.Buffer

	out.WriteString("runtime error: ")
	out.WriteString(e.Message)
	if e.Pos.IsValid() {
		filename := e.Filename
		if filename == "" {
			filename = "<script>"
		}
		fmt.Fprintf(&out, "\n\t%s:%s:", filename, e.Pos)
	}
	out.WriteString("\n")

	for i := len(e.CallStack) - 1; i >= 0; i-- {
		out.WriteString(e.CallStack[i].Format(e.Filename))
		out.WriteString("\n")
	}
	return out.String()
}
