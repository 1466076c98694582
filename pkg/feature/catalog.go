package feature

import (
	"sort"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/registry"
	"github.com/arthur-debert/genx/pkg/types"
)

// Module is a named table of feature descriptors
type Module struct {
	// Path identifies the module in registry entries and fallback roots
	Path string

	// Default is used when an entry names the module without an export
	Default *types.Feature

	// Exports holds the features a module hosts under their own names
	Exports map[string]*types.Feature
}

// Export returns the named export
func (m *Module) Export(name string) (*types.Feature, bool) {
	if m == nil || m.Exports == nil {
		return nil, false
	}
	f, ok := m.Exports[name]
	return f, ok
}

// ExportNames lists the module's exports in sorted order
func (m *Module) ExportNames() []string {
	names := make([]string, 0, len(m.Exports))
	for name := range m.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is the set of modules known to the process
type Catalog struct {
	modules registry.Registry[*Module]
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{modules: registry.New[*Module]()}
}

// RegisterModule adds m to the catalog. Paths are unique.
func (c *Catalog) RegisterModule(m *Module) error {
	if m == nil {
		return errors.New(errors.ErrInvalidInput, "module is nil")
	}
	return c.modules.Register(m.Path, m)
}

// Module returns the module registered under path
func (c *Catalog) Module(path string) (*Module, error) {
	m, ok := c.modules.Lookup(path)
	if !ok {
		return nil, errors.Newf(errors.ErrFeatureNotFound, "module %q is not in the catalog", path).
			WithDetail("module", path)
	}
	return m, nil
}

// HasModule reports whether path is registered
func (c *Catalog) HasModule(path string) bool {
	return c.modules.Has(path)
}

// Modules lists registered module paths in sorted order
func (c *Catalog) Modules() []string {
	return c.modules.List()
}

var defaultCatalog = NewCatalog()

// DefaultCatalog returns the process-wide catalog that modules register into from init()
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Register adds m to the default catalog and panics on failure.
// It is meant for init() functions.
func Register(m *Module) {
	if m == nil {
		panic("feature: Register called with nil module")
	}
	registry.MustRegister(defaultCatalog.modules, m.Path, m)
}

// BuiltinModule is the module path of the features shipped with genx.
// Containers always search it first, so applications can override any of them.
const BuiltinModule = "genx/builtin"
