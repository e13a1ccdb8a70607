// Package registry stores named struct and union definitions and
// resolves type references during encode and decode.
package registry

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tagwire/tagwire/schema"
)

// Registry holds the schema of named types. The codec looks these up
// when a type description references a struct or union by name.
type Registry struct {
	structs map[string]*schema.Struct
	unions  map[string]*schema.Union
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[string]*schema.Struct),
		unions:  make(map[string]*schema.Union),
	}
}

// RegisterStruct adds a struct definition under its name.
func (r *Registry) RegisterStruct(st *schema.Struct) error {
	if st.Name == "" {
		return errors.New("struct has no name")
	}
	if _, exists := r.structs[st.Name]; exists {
		return errors.Newf("struct already registered: %s", st.Name)
	}
	if _, exists := r.unions[st.Name]; exists {
		return errors.Newf("name already registered as union: %s", st.Name)
	}
	r.structs[st.Name] = st
	return nil
}

// RegisterUnion adds a union definition under its name.
func (r *Registry) RegisterUnion(u *schema.Union) error {
	if u.Name == "" {
		return errors.New("union has no name")
	}
	if _, exists := r.unions[u.Name]; exists {
		return errors.Newf("union already registered: %s", u.Name)
	}
	if _, exists := r.structs[u.Name]; exists {
		return errors.Newf("name already registered as struct: %s", u.Name)
	}
	r.unions[u.Name] = u
	return nil
}

// Struct retrieves a struct definition by name. An unqualified name
// also matches a single qualified registration ending in ".name".
func (r *Registry) Struct(name string) (*schema.Struct, error) {
	if st, exists := r.structs[name]; exists {
		return st, nil
	}
	for fullName, st := range r.structs {
		if strings.HasSuffix(fullName, "."+name) {
			return st, nil
		}
	}
	return nil, errors.Newf("struct not found: %s", name)
}

// Union retrieves a union definition by name.
func (r *Registry) Union(name string) (*schema.Union, error) {
	if u, exists := r.unions[name]; exists {
		return u, nil
	}
	for fullName, u := range r.unions {
		if strings.HasSuffix(fullName, "."+name) {
			return u, nil
		}
	}
	return nil, errors.Newf("union not found: %s", name)
}

// ListStructs returns all registered struct names, sorted.
func (r *Registry) ListStructs() []string {
	names := make([]string, 0, len(r.structs))
	for name := range r.structs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListUnions returns all registered union names, sorted.
func (r *Registry) ListUnions() []string {
	names := make([]string, 0, len(r.unions))
	for name := range r.unions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ schema.Resolver = (*Registry)(nil)
