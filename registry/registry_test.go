package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/schema"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(schema.NewStruct("app.User",
		&schema.Field{Name: "name", Type: schema.String()},
	)))
	require.NoError(t, r.RegisterUnion(schema.NewUnion("app.Status",
		&schema.Case{Name: "up"},
	)))

	st, err := r.Struct("app.User")
	require.NoError(t, err)
	require.Equal(t, "app.User", st.Name)

	// unqualified names match a qualified registration
	st, err = r.Struct("User")
	require.NoError(t, err)
	require.Equal(t, "app.User", st.Name)

	u, err := r.Union("Status")
	require.NoError(t, err)
	require.Equal(t, "app.Status", u.Name)

	_, err = r.Struct("Missing")
	require.Error(t, err)
	_, err = r.Union("Missing")
	require.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(schema.NewStruct("T")))
	require.Error(t, r.RegisterStruct(schema.NewStruct("T")))

	// a name cannot be both a struct and a union
	require.Error(t, r.RegisterUnion(schema.NewUnion("T")))

	require.Error(t, r.RegisterStruct(&schema.Struct{}))
	require.Error(t, r.RegisterUnion(&schema.Union{}))
}

func TestListNamesSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterStruct(schema.NewStruct("b.Z")))
	require.NoError(t, r.RegisterStruct(schema.NewStruct("a.A")))
	require.Equal(t, []string{"a.A", "b.Z"}, r.ListStructs())
}

const testProto = `
syntax = "proto3";
package blog;

message Post {
  string title = 1;
  int64 author_id = 2;
  repeated string tags = 3;
  optional string subtitle = 4;
  map<string, uint32> reactions = 5;
  Visibility visibility = 6;
  Meta meta = 7;

  message Meta {
    fixed64 created_at = 1;
    bool pinned = 2;
  }

  oneof body {
    string text = 8;
    bytes markdown = 9;
  }
}

enum Visibility {
  PUBLIC = 0;
  UNLISTED = 1;
  PRIVATE = 2;
}
`

func writeTestProto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.proto")
	require.NoError(t, os.WriteFile(path, []byte(testProto), 0o644))
	return path
}

func TestLoadSchemaFile(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadSchema(writeTestProto(t)))

	require.Equal(t, []string{"blog.Post", "blog.Post.Meta"}, r.ListStructs())
	require.Equal(t, []string{"blog.Post.body", "blog.Visibility"}, r.ListUnions())
}

func TestLoadSchemaFieldMapping(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadSchema(writeTestProto(t)))

	post, err := r.Struct("Post")
	require.NoError(t, err)

	byName := make(map[string]*schema.Type)
	for _, f := range post.Fields {
		byName[f.Name] = f.Type
	}

	require.Equal(t, schema.KindString, byName["title"].Kind)
	require.Equal(t, schema.KindInt, byName["author_id"].Kind)
	require.Equal(t, 64, byName["author_id"].Bits)
	require.Equal(t, schema.KindSequence, byName["tags"].Kind)
	require.Equal(t, schema.KindString, byName["tags"].Elem.Kind)
	require.Equal(t, schema.KindOption, byName["subtitle"].Kind)
	require.Equal(t, schema.KindMap, byName["reactions"].Kind)
	require.Equal(t, schema.KindUint, byName["reactions"].Value.Kind)
	require.Equal(t, schema.KindNamed, byName["visibility"].Kind)
	require.Equal(t, schema.KindNamed, byName["body"].Kind)
	require.Equal(t, "blog.Post.body", byName["body"].Ref)
}

func TestLoadSchemaFieldsAreLexicallySorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadSchema(writeTestProto(t)))

	post, err := r.Struct("Post")
	require.NoError(t, err)

	var names []string
	for _, f := range post.Fields {
		names = append(names, f.Name)
	}
	// declaration and field-number order are irrelevant
	require.Equal(t, []string{
		"author_id", "body", "meta", "reactions", "subtitle", "tags", "title", "visibility",
	}, names)
}

func TestLoadSchemaEnumCases(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadSchema(writeTestProto(t)))

	vis, err := r.Union("Visibility")
	require.NoError(t, err)
	require.Len(t, vis.Cases, 3)
	require.Equal(t, "PRIVATE", vis.Cases[0].Name)
	require.Nil(t, vis.Cases[0].Type, "enum cases carry no payload")
	require.Equal(t, 2, vis.CaseIndex("UNLISTED"))
}

func TestLoadSchemaDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.proto"),
		[]byte("syntax = \"proto3\";\npackage a;\nmessage A { string x = 1; }\n"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.proto"),
		[]byte("syntax = \"proto3\";\npackage b;\nmessage B { uint64 y = 1; }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadSchema(dir))
	require.Equal(t, []string{"a.A", "b.B"}, r.ListStructs())
}

func TestLoadSchemaMissingPath(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.LoadSchema(filepath.Join(t.TempDir(), "nope.proto")))
}

func TestLoadSchemaWrapperTypes(t *testing.T) {
	dir := t.TempDir()
	proto := `
syntax = "proto3";
package w;
import "google/protobuf/wrappers.proto";
message W {
  google.protobuf.StringValue note = 1;
  google.protobuf.UInt32Value count = 2;
}
`
	path := filepath.Join(dir, "w.proto")
	require.NoError(t, os.WriteFile(path, []byte(proto), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadSchema(path))

	w, err := r.Struct("W")
	require.NoError(t, err)
	require.Equal(t, schema.KindWrapper, w.Fields[0].Type.Kind)
	require.Equal(t, schema.KindUint, w.Fields[0].Type.Elem.Kind)
	require.Equal(t, schema.KindWrapper, w.Fields[1].Type.Kind)
	require.Equal(t, schema.KindString, w.Fields[1].Type.Elem.Kind)
}
