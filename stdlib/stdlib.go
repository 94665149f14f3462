// Package stdlib installs every native library into a registry.
package stdlib

import (
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/core"
	stdencoding "github.com/podhmo/swiftflow/stdlib/encoding"
	stdhttp "github.com/podhmo/swiftflow/stdlib/http"
	stdjson "github.com/podhmo/swiftflow/stdlib/json"
	stdos "github.com/podhmo/swiftflow/stdlib/os"
	stdyaml "github.com/podhmo/swiftflow/stdlib/yaml"
)

// Install registers all natives. argv is returned by args().
func Install(r *object.Registry, argv []string) {
	core.Install(r)
	stdjson.Install(r)
	stdyaml.Install(r)
	stdencoding.Install(r)
	stdos.InstallArgs(r, argv)
	stdhttp.Install(r)
}

// NewRegistry returns a registry with all natives installed.
func NewRegistry(argv []string) *object.Registry {
	r := object.NewRegistry()
	Install(r, argv)
	return r
}
