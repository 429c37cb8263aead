package validator

import (
	"fmt"
	"sort"
	"strings"

	"importguard/internal/core/errors"
)

const DefaultPrefix = "abra"

// DefaultInternalModules are the project's own top-level namespaces.
var DefaultInternalModules = []string{"analysis", "components", "config", "core", "pages", "ui", "utils"}

// Registry is the immutable set of internal module names plus the prefix
// every import of them must carry.
type Registry struct {
	prefix  string
	modules map[string]struct{}
	ordered []string
}

func NewRegistry(prefix string, modules []string) (*Registry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, errors.New(errors.CodeValidationError, "namespace prefix must not be empty")
	}
	if strings.ContainsAny(prefix, " \t") || strings.HasPrefix(prefix, ".") || strings.HasSuffix(prefix, ".") {
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid namespace prefix %q", prefix))
	}

	r := &Registry{prefix: prefix, modules: make(map[string]struct{}, len(modules))}
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if strings.Contains(m, ".") {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("internal module %q must be a single top-level name", m))
		}
		if _, dup := r.modules[m]; dup {
			continue
		}
		r.modules[m] = struct{}{}
		r.ordered = append(r.ordered, m)
	}
	if len(r.ordered) == 0 {
		return nil, errors.New(errors.CodeValidationError, "at least one internal module is required")
	}
	sort.Strings(r.ordered)
	return r, nil
}

// DefaultRegistry returns the built-in registry. It cannot fail.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultPrefix, DefaultInternalModules)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Prefix() string { return r.prefix }

func (r *Registry) Contains(segment string) bool {
	_, ok := r.modules[segment]
	return ok
}

// Modules returns the registered names in lexical order.
func (r *Registry) Modules() []string {
	return append([]string(nil), r.ordered...)
}
