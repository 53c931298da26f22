// Package dynamic configures the aura-studio dynamic warehouse from which
// tunnel packages are loaded as handlers.
package dynamic

import (
	"github.com/aura-studio/dynamic"
	"github.com/charmbracelet/log"
)

type Dynamic struct {
	*Options
	logger *log.Logger
}

func NewDynamic(logger *log.Logger, opts ...Option) *Dynamic {
	d := &Dynamic{
		Options: NewOptions(opts...),
		logger:  logger,
	}

	d.InstallPackages()

	return d
}

// InstallPackages pushes the options into the dynamic library, registers
// the linked packages and preloads the configured ones.
func (d *Dynamic) InstallPackages() {
	if tc := d.Toolchain; tc != (Toolchain{}) {
		if tc.OS != "" {
			dynamic.DynamicOS = tc.OS
		}
		if tc.Arch != "" {
			dynamic.DynamicArch = tc.Arch
		}
		if tc.Compiler != "" {
			dynamic.DynamicCompiler = tc.Compiler
		}
		if tc.Variant != "" {
			dynamic.DynamicVariant = tc.Variant
		}
	}

	if d.Warehouse.Local != "" || d.Warehouse.Remote != "" {
		dynamic.UseWarehouse(d.Warehouse.Local, d.Warehouse.Remote)
	}
	if d.Namespace != "" {
		dynamic.UseNamespace(d.Namespace)
	}
	if d.DefaultVersion != "" {
		dynamic.UseDefaultVersion(d.DefaultVersion)
	}

	for _, p := range d.Static {
		dynamic.RegisterPackage(p.Package, p.Version, p.Tunnel)
	}

	for _, p := range d.Preload {
		if _, err := dynamic.GetPackage(p.Package, p.Version); err != nil && d.logger != nil {
			d.logger.Warn("preload failed", "namespace", d.Namespace, "package", p.Package, "version", p.Version, "err", err)
		}
	}
}

// GetPackage returns the tunnel of pkg at version, loading it from the
// warehouse when it is not linked in.
func (d *Dynamic) GetPackage(pkg string, version string) (dynamic.Tunnel, error) {
	return dynamic.GetPackage(pkg, version)
}
