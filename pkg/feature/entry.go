package feature

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/types"
)

// Wildcard is the reserved entries key that appends fallback roots
const Wildcard = "*"

// Entry maps a feature name to a module and an optional export
type Entry struct {
	Module string
	Export string
}

func (e Entry) String() string {
	if e.Export == "" {
		return e.Module
	}
	return e.Module + "#" + e.Export
}

// ParseEntry converts an entry value as found in configuration into an Entry.
// Accepted forms are "module", "module#export", []string{module, export},
// []any with string members and Entry itself.
func ParseEntry(value any) (Entry, error) {
	switch v := value.(type) {
	case Entry:
		if v.Module == "" {
			return Entry{}, invalidEntry(value)
		}
		return v, nil
	case *Entry:
		if v == nil {
			return Entry{}, invalidEntry(value)
		}
		return ParseEntry(*v)
	case string:
		module, export, _ := strings.Cut(v, "#")
		if module == "" {
			return Entry{}, invalidEntry(value)
		}
		return Entry{Module: module, Export: export}, nil
	case []string:
		return entryFromParts(value, v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return Entry{}, invalidEntry(value)
			}
			parts = append(parts, s)
		}
		return entryFromParts(value, parts)
	default:
		return Entry{}, invalidEntry(value)
	}
}

func entryFromParts(value any, parts []string) (Entry, error) {
	if len(parts) == 0 || len(parts) > 2 || parts[0] == "" {
		return Entry{}, invalidEntry(value)
	}
	e := Entry{Module: parts[0]}
	if len(parts) == 2 {
		e.Export = parts[1]
	}
	return e, nil
}

// parseRoots accepts a single root or a list of roots
func parseRoots(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, invalidEntry(value)
		}
		return []string{v}, nil
	case []string:
		for _, r := range v {
			if r == "" {
				return nil, invalidEntry(value)
			}
		}
		return append([]string(nil), v...), nil
	case []any:
		roots := make([]string, 0, len(v))
		for _, r := range v {
			s, ok := r.(string)
			if !ok || s == "" {
				return nil, invalidEntry(value)
			}
			roots = append(roots, s)
		}
		return roots, nil
	default:
		return nil, invalidEntry(value)
	}
}

func invalidEntry(value any) error {
	return errors.Newf(errors.ErrInvalidInput, "invalid feature registry value %s", describe(value))
}

func describe(value any) string {
	if f, ok := value.(*types.Feature); ok && f == nil {
		return "<nil feature>"
	}
	return fmt.Sprintf("%#v", value)
}
