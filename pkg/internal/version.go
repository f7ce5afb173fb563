package internal

import (
	"runtime/debug"
	"strings"
)

const (
	_moduleName     = "github.com/luizaranda/go-restclient"
	_unknownVersion = "v0.0.0-unknown"
)

var (
	// Version is the build version of this module as seen by the importing
	// binary. It is used in User-Agent headers and instrumentation scopes.
	Version = func() string {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if strings.EqualFold(bi.Main.Path, _moduleName) && bi.Main.Version != "" {
				return bi.Main.Version
			}
			for _, dep := range bi.Deps {
				if strings.EqualFold(dep.Path, _moduleName) {
					return dep.Version
				}
			}
		}

		return _unknownVersion
	}()
)
