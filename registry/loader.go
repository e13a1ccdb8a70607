package registry

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	protoparser "github.com/yoheimuta/go-protoparser/v4"
	"github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/tagwire/tagwire/schema"
)

// The registry accepts .proto text as its schema-description surface:
// message maps to struct, enum and oneof map to union, repeated to
// sequence, map to map, optional to option. Field and enum numbers are
// ignored entirely - wire position is determined by lexical name
// order, so the numbers carry no meaning here.

// LoadSchema loads type definitions from a .proto file, or from every
// .proto file under a directory.
func (r *Registry) LoadSchema(schemaPath string) error {
	info, err := os.Stat(schemaPath)
	if err != nil {
		return errors.Wrap(err, "schema path")
	}

	if !info.IsDir() {
		return r.loadProtoFile(schemaPath)
	}

	return filepath.WalkDir(schemaPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".proto") {
			return nil
		}
		if err := r.loadProtoFile(path); err != nil {
			return errors.Wrapf(err, "loading %s", path)
		}
		return nil
	})
}

// loadProtoFile parses a single .proto file and registers every
// message, enum and oneof it defines.
func (r *Registry) loadProtoFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading schema file")
	}

	parsed, err := protoparser.Parse(bytes.NewBuffer(content))
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	pkg := ""
	for _, body := range parsed.ProtoBody {
		if p, ok := body.(*parser.Package); ok {
			pkg = p.Name
		}
	}

	for _, body := range parsed.ProtoBody {
		switch b := body.(type) {
		case *parser.Message:
			if err := r.convertMessage(qualify(pkg, b.MessageName), b); err != nil {
				return err
			}
		case *parser.Enum:
			if err := r.convertEnum(qualify(pkg, b.EnumName), b); err != nil {
				return err
			}
		}
	}
	return nil
}

// convertMessage registers a message as a struct, along with any
// nested messages, enums and oneof unions.
func (r *Registry) convertMessage(fullName string, msg *parser.Message) error {
	var fields []*schema.Field

	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *parser.Field:
			t, err := fieldType(b.Type)
			if err != nil {
				return errors.Wrapf(err, "message %s field %s", fullName, b.FieldName)
			}
			switch {
			case b.IsRepeated:
				t = schema.SequenceOf(t)
			case b.IsOptional:
				t = schema.OptionOf(t)
			}
			fields = append(fields, &schema.Field{Name: b.FieldName, Type: t})

		case *parser.MapField:
			key, err := fieldType(b.KeyType)
			if err != nil {
				return errors.Wrapf(err, "message %s map %s key", fullName, b.MapName)
			}
			value, err := fieldType(b.Type)
			if err != nil {
				return errors.Wrapf(err, "message %s map %s value", fullName, b.MapName)
			}
			fields = append(fields, &schema.Field{Name: b.MapName, Type: schema.MapOf(key, value)})

		case *parser.Oneof:
			unionName := fullName + "." + b.OneofName
			var cases []*schema.Case
			for _, of := range b.OneofFields {
				t, err := fieldType(of.Type)
				if err != nil {
					return errors.Wrapf(err, "oneof %s field %s", unionName, of.FieldName)
				}
				cases = append(cases, &schema.Case{Name: of.FieldName, Type: t})
			}
			if err := r.RegisterUnion(schema.NewUnion(unionName, cases...)); err != nil {
				return err
			}
			fields = append(fields, &schema.Field{Name: b.OneofName, Type: schema.Named(unionName)})

		case *parser.Message:
			if err := r.convertMessage(fullName+"."+b.MessageName, b); err != nil {
				return err
			}
		case *parser.Enum:
			if err := r.convertEnum(fullName+"."+b.EnumName, b); err != nil {
				return err
			}
		}
	}

	return r.RegisterStruct(schema.NewStruct(fullName, fields...))
}

// convertEnum registers an enum as a union of payload-free cases.
func (r *Registry) convertEnum(fullName string, enum *parser.Enum) error {
	var cases []*schema.Case
	for _, body := range enum.EnumBody {
		if ef, ok := body.(*parser.EnumField); ok {
			cases = append(cases, &schema.Case{Name: ef.Ident})
		}
	}
	return r.RegisterUnion(schema.NewUnion(fullName, cases...))
}

// fieldType maps a proto type name onto the generic model. Unknown
// identifiers become named references resolved at codec time.
func fieldType(protoType string) (*schema.Type, error) {
	switch protoType {
	case "double":
		return schema.Float64(), nil
	case "float":
		return schema.Float32(), nil
	case "int32", "sint32", "sfixed32":
		return schema.Int32(), nil
	case "int64", "sint64", "sfixed64":
		return schema.Int64(), nil
	case "uint32", "fixed32":
		return schema.Uint32(), nil
	case "uint64", "fixed64":
		return schema.Uint64(), nil
	case "bool":
		return schema.Bool(), nil
	case "string":
		return schema.String(), nil
	case "bytes":
		return schema.Bytes(), nil
	}

	if inner, ok := wrapperTypes[protoType]; ok {
		return schema.WrapperOf(inner), nil
	}

	if protoType == "" {
		return nil, errors.New("empty type name")
	}
	return schema.Named(protoType), nil
}

// The well-known wrapper messages map onto frameless wrapper types.
var wrapperTypes = map[string]*schema.Type{
	"google.protobuf.DoubleValue": schema.Float64(),
	"google.protobuf.FloatValue":  schema.Float32(),
	"google.protobuf.Int64Value":  schema.Int64(),
	"google.protobuf.UInt64Value": schema.Uint64(),
	"google.protobuf.Int32Value":  schema.Int32(),
	"google.protobuf.UInt32Value": schema.Uint32(),
	"google.protobuf.BoolValue":   schema.Bool(),
	"google.protobuf.StringValue": schema.String(),
	"google.protobuf.BytesValue":  schema.Bytes(),
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
