package feature

import (
	"sort"
	"sync"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/types"
)

// Record is the resolution result cached for one feature name
type Record struct {
	Name    string
	Feature *types.Feature
	Loaded  bool

	// Source names where the descriptor came from, e.g. "genx/builtin#settings"
	Source string
}

// Registry resolves the feature names of one container
type Registry struct {
	catalog *Catalog

	mu      sync.Mutex
	entries map[string]any
	roots   []string
	cache   map[string]*Record
}

// NewRegistry creates a registry backed by catalog with the given fallback
// roots, oldest first. A nil catalog means the default catalog.
func NewRegistry(catalog *Catalog, roots ...string) *Registry {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Registry{
		catalog: catalog,
		entries: make(map[string]any),
		roots:   append([]string(nil), roots...),
		cache:   make(map[string]*Record),
	}
}

// Catalog returns the module catalog the registry resolves against
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// AddEntries merges explicit entries, later entries winning. The Wildcard key
// appends one or more fallback roots instead. Nothing is applied when any
// value is invalid.
func (r *Registry) AddEntries(entries map[string]any) error {
	parsed := make(map[string]any, len(entries))
	var roots []string

	for name, value := range entries {
		if name == "" {
			return errors.New(errors.ErrInvalidInput, "feature registry key cannot be empty")
		}
		if name == Wildcard {
			rs, err := parseRoots(value)
			if err != nil {
				return err
			}
			roots = rs
			continue
		}
		if f, ok := value.(*types.Feature); ok {
			if f == nil {
				return errors.Wrapf(invalidEntry(value), errors.ErrInvalidInput, "feature %q", name)
			}
			parsed[name] = f
			continue
		}
		e, err := ParseEntry(value)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "feature %q", name)
		}
		parsed[name] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, v := range parsed {
		r.entries[name] = v
	}
	r.roots = append(r.roots, roots...)
	return nil
}

// AddRoots appends fallback roots
func (r *Registry) AddRoots(roots ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roots = append(r.roots, roots...)
}

// Roots returns the fallback roots, oldest first
func (r *Registry) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.roots...)
}

// Resolve returns the descriptor for name. The first successful resolution is
// cached and returned by every later call.
func (r *Registry) Resolve(name string) (*types.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.cache[name]; ok {
		return rec.Feature, nil
	}

	f, source, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFeatureInvalid, "invalid feature %q loaded from %q", name, source).
			WithDetail("feature", name)
	}

	r.cache[name] = &Record{Name: name, Feature: f, Source: source}
	return f, nil
}

func (r *Registry) lookup(name string) (*types.Feature, string, error) {
	if value, ok := r.entries[name]; ok {
		switch v := value.(type) {
		case *types.Feature:
			return v, "inline", nil
		case Entry:
			return r.fromEntry(name, v)
		}
	}

	for i := len(r.roots) - 1; i >= 0; i-- {
		m, err := r.catalog.Module(r.roots[i])
		if err != nil {
			continue
		}
		if f, ok := m.Export(name); ok {
			return f, Entry{Module: m.Path, Export: name}.String(), nil
		}
	}

	return nil, "", errors.Newf(errors.ErrFeatureNotFound, "don't know where to load feature %q", name).
		WithDetail("feature", name)
}

func (r *Registry) fromEntry(name string, e Entry) (*types.Feature, string, error) {
	m, err := r.catalog.Module(e.Module)
	if err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrFeatureNotFound, "cannot load feature %q", name).
			WithDetail("feature", name)
	}

	if e.Export == "" {
		return m.Default, e.String(), nil
	}

	f, ok := m.Export(e.Export)
	if !ok {
		return nil, "", errors.Newf(errors.ErrFeatureInvalid, "module %q has no export %q", e.Module, e.Export).
			WithDetail("feature", name)
	}
	return f, e.String(), nil
}

// Record returns a copy of the cached record for name
func (r *Registry) Record(name string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.cache[name]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Enabled reports whether name has been resolved
func (r *Registry) Enabled(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.cache[name]
	return ok
}

// MarkLoaded flags the record for name as loaded
func (r *Registry) MarkLoaded(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.cache[name]
	if !ok {
		return errors.Newf(errors.ErrFeatureNotFound, "feature %q was never resolved", name)
	}
	rec.Loaded = true
	return nil
}

// Records returns copies of every cached record sorted by name
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.cache))
	for _, rec := range r.cache {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset discards entries, roots and the cache
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]any)
	r.roots = nil
	r.cache = make(map[string]*Record)
}
