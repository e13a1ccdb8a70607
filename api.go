// Package tagwire implements a compact self-describing binary
// encoding with schema evolution. Every value on the wire carries a
// tag byte naming its wire type, so readers can skip data they do not
// understand; struct fields travel positionally in lexical name order,
// which lets old readers decode new payloads and vice versa.
package tagwire

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tagwire/tagwire/registry"
	"github.com/tagwire/tagwire/schema"
	"github.com/tagwire/tagwire/wire"
)

// Codec marshals and unmarshals values against registered type
// definitions.
type Codec struct {
	registry *registry.Registry
}

// New creates a Codec with an empty registry.
func New() *Codec {
	return &Codec{
		registry: registry.NewRegistry(),
	}
}

// LoadSchema loads type definitions from a .proto file or directory.
func (c *Codec) LoadSchema(schemaPath string) error {
	return c.registry.LoadSchema(schemaPath)
}

// RegisterStruct adds a struct definition built in code.
func (c *Codec) RegisterStruct(st *schema.Struct) error {
	return c.registry.RegisterStruct(st)
}

// RegisterUnion adds a union definition built in code.
func (c *Codec) RegisterUnion(u *schema.Union) error {
	return c.registry.RegisterUnion(u)
}

// ListStructs returns the names of all registered structs.
func (c *Codec) ListStructs() []string {
	return c.registry.ListStructs()
}

// ListUnions returns the names of all registered unions.
func (c *Codec) ListUnions() []string {
	return c.registry.ListUnions()
}

// Marshal encodes a field map as the named struct.
func (c *Codec) Marshal(data map[string]interface{}, typeName string) ([]byte, error) {
	st, err := c.registry.Struct(typeName)
	if err != nil {
		return nil, err
	}
	return wire.EncodeStruct(data, st, c.registry)
}

// MarshalValue encodes a single value of the given type.
func (c *Codec) MarshalValue(v interface{}, t *schema.Type) ([]byte, error) {
	return wire.EncodeValue(t, v, c.registry)
}

// Parse decodes data as the named struct into a field map.
func (c *Codec) Parse(data []byte, typeName string) (map[string]interface{}, error) {
	st, err := c.registry.Struct(typeName)
	if err != nil {
		return nil, err
	}
	return wire.DecodeStructValue(data, st, c.registry)
}

// ParseValue decodes data as a single value of the given type.
func (c *Codec) ParseValue(data []byte, t *schema.Type) (interface{}, error) {
	return wire.DecodeValue(data, t, c.registry)
}

// Unmarshal decodes data as the named struct and fills the Go struct
// pointed to by v. Fields match by name, ignoring case and
// underscores; a `wire` struct tag overrides the name.
func (c *Codec) Unmarshal(data []byte, typeName string, v interface{}) error {
	fields, err := c.Parse(data, typeName)
	if err != nil {
		return err
	}
	return mapToStruct(fields, v)
}

func mapToStruct(fields map[string]interface{}, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("target must be a non-nil pointer to a struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errors.New("target must point to a struct")
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("wire")
		value, ok := lookupField(fields, name, sf.Name)
		if !ok || value == nil {
			continue
		}
		if err := assignField(rv.Field(i), value); err != nil {
			return errors.Wrapf(err, "field %s", sf.Name)
		}
	}
	return nil
}

func lookupField(fields map[string]interface{}, tagName, goName string) (interface{}, bool) {
	if tagName != "" {
		v, ok := fields[tagName]
		return v, ok
	}
	if v, ok := fields[goName]; ok {
		return v, true
	}
	want := foldName(goName)
	for k, v := range fields {
		if foldName(k) == want {
			return v, true
		}
	}
	return nil, false
}

// foldName normalizes a field name for matching: lowercase with
// underscores removed, so CreatedAt matches created_at.
func foldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

func assignField(dst reflect.Value, value interface{}) error {
	src := reflect.ValueOf(value)

	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assignField(dst.Elem(), value)
	}

	switch dst.Kind() {
	case reflect.Struct:
		nested, ok := value.(map[string]interface{})
		if !ok {
			return errors.Newf("cannot assign %T to struct", value)
		}
		return mapToStruct(nested, dst.Addr().Interface())

	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		elems, ok := value.([]interface{})
		if !ok {
			return errors.Newf("cannot assign %T to slice", value)
		}
		out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := assignField(out.Index(i), e); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case reflect.Map:
		if src.Kind() != reflect.Map {
			return errors.Newf("cannot assign %T to map", value)
		}
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() == reflect.Interface {
				key = key.Elem()
			}
			if !key.Type().AssignableTo(dst.Type().Key()) {
				if !key.Type().ConvertibleTo(dst.Type().Key()) {
					return errors.Newf("cannot use %s as map key %s", key.Type(), dst.Type().Key())
				}
				key = key.Convert(dst.Type().Key())
			}
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assignField(ev, iter.Value().Interface()); err != nil {
				return err
			}
			out.SetMapIndex(key, ev)
		}
		dst.Set(out)
		return nil
	}

	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return errors.Newf("cannot assign %T to %s", value, dst.Type())
}
