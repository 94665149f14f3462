// Package stdos provides file and process natives.
package stdos

import (
	"errors"
	"io/fs"
	"os"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
)

// Install registers the OS natives. args() returns an empty array.
func Install(r *object.Registry) {
	InstallArgs(r, nil)
}

// InstallArgs registers the OS natives with argv as the result of args().
func InstallArgs(r *object.Registry, argv []string) {
	r.Register("read_file", builtinReadFile)
	r.Register("write_file", builtinWriteFile)
	r.Register("append_file", builtinAppendFile)
	r.Register("file_exists", builtinFileExists)
	r.Register("getenv", builtinGetenv)

	argv = append([]string(nil), argv...)
	r.Register("args", func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 0, 0); err != nil {
			return nil, err
		}
		// a fresh array each call, scripts may modify it
		return object.FromGo(argv)
	})
}

func builtinReadFile(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	path, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: string(data)}, nil
}

func builtinWriteFile(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	return writeFile(a, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

func builtinAppendFile(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	return writeFile(a, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

// writeFile writes the text of a[1] to the file a[0] and returns the number
// of bytes written.
func writeFile(a []object.Object, flag int) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	path, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	n, err := f.WriteString(a[1].Inspect())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return &object.Integer{Value: int64(n)}, nil
}

func builtinFileExists(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	path, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return object.FALSE, nil
	}
	if err != nil {
		return nil, err
	}
	return object.TRUE, nil
}

// getenv(name[, default]) returns nil, or default, when name is unset.
func builtinGetenv(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	name, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return &object.String{Value: v}, nil
	}
	if len(a) == 2 {
		return a[1], nil
	}
	return object.NIL, nil
}
