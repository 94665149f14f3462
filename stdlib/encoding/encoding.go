// Package stdencoding provides string encoding and digest natives.
package stdencoding

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
)

// Install registers the encoding natives.
func Install(r *object.Registry) {
	for name, fn := range map[string]func(string) (string, error){
		"hex_encode":    encodeWith(hex.EncodeToString),
		"hex_decode":    decodeWith(hex.DecodeString),
		"base64_encode": encodeWith(base64.StdEncoding.EncodeToString),
		"base64_decode": decodeWith(base64.StdEncoding.DecodeString),
		"sha256": func(s string) (string, error) {
			sum := sha256.Sum256([]byte(s))
			return hex.EncodeToString(sum[:]), nil
		},
		"md5": func(s string) (string, error) {
			sum := md5.Sum([]byte(s))
			return hex.EncodeToString(sum[:]), nil
		},
	} {
		r.Register(name, stringNative(fn))
	}
}

func encodeWith(enc func([]byte) string) func(string) (string, error) {
	return func(s string) (string, error) { return enc([]byte(s)), nil }
}

func decodeWith(dec func(string) ([]byte, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		b, err := dec(s)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func stringNative(fn func(string) (string, error)) object.NativeFunction {
	return func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 1, 1); err != nil {
			return nil, err
		}
		s, err := args.String(a, 0)
		if err != nil {
			return nil, err
		}
		out, err := fn(s)
		if err != nil {
			return nil, err
		}
		return &object.String{Value: out}, nil
	}
}
