package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

// newError creates a runtime error at pos carrying a copy of the current call stack.
func (e *Evaluator) newError(ctx context.Context, pos token.Pos, format string, args ...any) *object.Error {
	frames := make([]*object.CallFrame, len(e.callStack))
	copy(frames, e.callStack)
	err := &object.Error{
		Filename:  e.filename,
		Pos:       pos,
		Message:   fmt.Sprintf(format, args...),
		CallStack: frames,
	}
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logcWithCallerDepth(ctx, slog.LevelDebug, 2, err.Message, "pos", pos.String(), "stack", err.Inspect())
	}
	return err
}

// fromNativeError converts the error returned by a native. Runtime errors
// raised by nested evaluation pass through unchanged.
func (e *Evaluator) fromNativeError(ctx context.Context, pos token.Pos, name string, err error) *object.Error {
	var rerr *object.Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return e.newError(ctx, pos, "%s: %v", name, err)
}
