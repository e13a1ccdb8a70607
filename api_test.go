package tagwire_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire"
	"github.com/tagwire/tagwire/schema"
	"github.com/tagwire/tagwire/wire"
)

func newBlogCodec(t *testing.T) *tagwire.Codec {
	t.Helper()
	c := tagwire.New()

	require.NoError(t, c.RegisterUnion(schema.NewUnion("blog.Body",
		&schema.Case{Name: "markdown", Type: schema.Bytes()},
		&schema.Case{Name: "text", Type: schema.String()},
	)))
	require.NoError(t, c.RegisterStruct(schema.NewStruct("blog.Post",
		&schema.Field{Name: "title", Type: schema.String()},
		&schema.Field{Name: "author_id", Type: schema.Int64()},
		&schema.Field{Name: "tags", Type: schema.SequenceOf(schema.String())},
		&schema.Field{Name: "subtitle", Type: schema.OptionOf(schema.String())},
		&schema.Field{Name: "reactions", Type: schema.MapOf(schema.String(), schema.Uint32())},
		&schema.Field{Name: "body", Type: schema.Named("blog.Body")},
	)))
	return c
}

func TestCodecMarshalParse(t *testing.T) {
	c := newBlogCodec(t)

	in := map[string]interface{}{
		"title":     "hello",
		"author_id": int64(-42),
		"tags":      []string{"go", "wire"},
		"subtitle":  nil,
		"reactions": map[string]uint32{"clap": 3},
		"body":      wire.Variant{Case: "text", Value: "first post"},
	}

	data, err := c.Marshal(in, "Post")
	require.NoError(t, err)

	out, err := c.Parse(data, "Post")
	require.NoError(t, err)

	want := map[string]interface{}{
		"title":     "hello",
		"author_id": int64(-42),
		"tags":      []interface{}{"go", "wire"},
		"subtitle":  nil,
		"reactions": map[interface{}]interface{}{"clap": uint32(3)},
		"body":      wire.Variant{Case: "text", Value: "first post"},
	}
	require.Empty(t, cmp.Diff(want, out))
}

func TestCodecMarshalUnknownType(t *testing.T) {
	c := tagwire.New()
	_, err := c.Marshal(map[string]interface{}{}, "Nope")
	require.Error(t, err)
	_, err = c.Parse([]byte{0x00}, "Nope")
	require.Error(t, err)
}

func TestCodecUnmarshal(t *testing.T) {
	c := newBlogCodec(t)

	data, err := c.Marshal(map[string]interface{}{
		"title":     "hello",
		"author_id": int64(7),
		"tags":      []string{"a", "b"},
		"reactions": map[string]uint32{"clap": 3, "heart": 1},
		"body":      wire.Variant{Case: "markdown", Value: []byte("## hi")},
	}, "Post")
	require.NoError(t, err)

	var post struct {
		Title     string
		AuthorID  int64 `wire:"author_id"`
		Tags      []string
		Subtitle  *string
		Reactions map[string]uint32
		Body      wire.Variant
	}
	require.NoError(t, c.Unmarshal(data, "Post", &post))

	require.Equal(t, "hello", post.Title)
	require.Equal(t, int64(7), post.AuthorID)
	require.Equal(t, []string{"a", "b"}, post.Tags)
	require.Nil(t, post.Subtitle)
	require.Equal(t, map[string]uint32{"clap": 3, "heart": 1}, post.Reactions)
	require.Equal(t, wire.Variant{Case: "markdown", Value: []byte("## hi")}, post.Body)
}

func TestCodecUnmarshalRejectsNonPointer(t *testing.T) {
	c := newBlogCodec(t)
	data, err := c.Marshal(map[string]interface{}{
		"body": wire.Variant{Case: "text", Value: "x"},
	}, "Post")
	require.NoError(t, err)

	var post struct{ Title string }
	require.Error(t, c.Unmarshal(data, "Post", post))
	require.Error(t, c.Unmarshal(data, "Post", nil))
}

func TestCodecLoadSchema(t *testing.T) {
	dir := t.TempDir()
	proto := `
syntax = "proto3";
package app;

message User {
  string name = 1;
  uint32 age = 2;
  repeated string roles = 3;
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.proto"), []byte(proto), 0o644))

	c := tagwire.New()
	require.NoError(t, c.LoadSchema(dir))
	require.Equal(t, []string{"app.User"}, c.ListStructs())

	data, err := c.Marshal(map[string]interface{}{
		"name":  "ada",
		"age":   36,
		"roles": []string{"admin"},
	}, "User")
	require.NoError(t, err)

	out, err := c.Parse(data, "User")
	require.NoError(t, err)
	require.Equal(t, "ada", out["name"])
	require.Equal(t, uint32(36), out["age"])
	require.Equal(t, []interface{}{"admin"}, out["roles"])
}

func TestCodecSchemaEvolutionAcrossVersions(t *testing.T) {
	oldCodec := tagwire.New()
	require.NoError(t, oldCodec.RegisterStruct(schema.NewStruct("Event",
		&schema.Field{Name: "id", Type: schema.Uint64()},
	)))

	newCodec := tagwire.New()
	require.NoError(t, newCodec.RegisterStruct(schema.NewStruct("Event",
		&schema.Field{Name: "id", Type: schema.Uint64()},
		&schema.Field{Name: "source", Type: schema.String()},
	)))

	// old writer, new reader
	data, err := oldCodec.Marshal(map[string]interface{}{"id": 1}, "Event")
	require.NoError(t, err)
	out, err := newCodec.Parse(data, "Event")
	require.NoError(t, err)
	require.Equal(t, uint64(1), out["id"])
	_, present := out["source"]
	require.False(t, present)

	// new writer, old reader
	data, err = newCodec.Marshal(map[string]interface{}{"id": 2, "source": "api"}, "Event")
	require.NoError(t, err)
	out, err = oldCodec.Parse(data, "Event")
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"id": uint64(2)}, out)
}

func TestCodecValueHelpers(t *testing.T) {
	c := tagwire.New()
	typ := schema.SequenceOf(schema.Uint64())

	data, err := c.MarshalValue([]uint64{1, 2, 3}, typ)
	require.NoError(t, err)

	out, err := c.ParseValue(data, typ)
	require.NoError(t, err)
	require.Equal(t, []interface{}{uint64(1), uint64(2), uint64(3)}, out)
}
