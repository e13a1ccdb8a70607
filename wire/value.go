package wire

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/tagwire/tagwire/schema"
)

// ValueEncoder drives the visitor contract from a schema type
// description.
type ValueEncoder struct {
	encoder *Encoder
}

// ValueDecoder materializes values of a described type from the wire,
// applying the evolution rules (trailing-field skip, absent-field
// detection, unknown-variant fallback).
type ValueDecoder struct {
	decoder *Decoder

	// CopyBytes detaches decoded strings, byte blobs and unknown
	// variant payloads from the input buffer. The default borrows.
	CopyBytes bool
}

// NewValueEncoder creates a new schema-driven encoder
func NewValueEncoder(e *Encoder) *ValueEncoder {
	return &ValueEncoder{encoder: e}
}

// NewValueDecoder creates a new schema-driven decoder
func NewValueDecoder(d *Decoder) *ValueDecoder {
	return &ValueDecoder{decoder: d}
}

// ENCODER METHODS

// Encode writes one value of the given type.
func (ve *ValueEncoder) Encode(t *schema.Type, v interface{}) error {
	e := ve.encoder
	switch t.Kind {
	case schema.KindBool:
		b, err := coerceBool(v)
		if err != nil {
			return err
		}
		return e.EncodeBool(b)
	case schema.KindInt:
		i, err := coerceInt64(v)
		if err != nil {
			return err
		}
		if !fitsInt(i, t.Bits) {
			return errors.Newf("value %d overflows int%d", i, t.Bits)
		}
		return e.EncodeInt64(i)
	case schema.KindUint:
		u, err := coerceUint64(v)
		if err != nil {
			return err
		}
		if !fitsUint(u, t.Bits) {
			return errors.Newf("value %d overflows uint%d", u, t.Bits)
		}
		return e.EncodeUint64(u)
	case schema.KindFloat:
		f, err := coerceFloat64(v)
		if err != nil {
			return err
		}
		if t.Bits == 32 {
			return e.EncodeFloat32(float32(f))
		}
		return e.EncodeFloat64(f)
	case schema.KindUnit:
		return e.EncodeUnit()
	case schema.KindString:
		s, err := coerceString(v)
		if err != nil {
			return err
		}
		return e.EncodeString(s)
	case schema.KindBytes:
		b, err := coerceBytes(v)
		if err != nil {
			return err
		}
		return e.EncodeBytes(b)
	case schema.KindOption:
		return ve.encodeOption(t.Elem, v)
	case schema.KindSequence:
		return ve.encodeSequence(t.Elem, v)
	case schema.KindMap:
		return ve.encodeMap(t, v)
	case schema.KindWrapper:
		// frameless: the inner value stands alone
		return ve.Encode(t.Elem, v)
	case schema.KindNamed:
		st, un, err := ve.resolve(t.Ref)
		if err != nil {
			return err
		}
		if st != nil {
			data, ok := v.(map[string]interface{})
			if !ok && v != nil {
				return errors.Newf("struct %s requires map[string]interface{}, got %T", st.Name, v)
			}
			return ve.EncodeStruct(st, data)
		}
		return ve.EncodeUnion(un, v)
	default:
		return errors.Newf("unsupported kind %q", t.Kind)
	}
}

// EncodeStruct writes a field map as a positional sequence in the
// definition's lexical field order. Absent entries encode as the
// field type's zero value.
func (ve *ValueEncoder) EncodeStruct(st *schema.Struct, data map[string]interface{}) error {
	if err := ve.encoder.BeginSequence(len(st.Fields)); err != nil {
		return err
	}
	for _, f := range st.Fields {
		v, ok := data[f.Name]
		if !ok {
			zero, err := ve.zeroValue(f.Type)
			if err != nil {
				return wrapWithField(err, f.Name)
			}
			v = zero
		}
		if err := ve.Encode(f.Type, v); err != nil {
			return wrapWithField(err, f.Name)
		}
	}
	return nil
}

// EncodeUnion writes a tagged union value. Accepted forms: a Variant
// (case name plus payload), a bare case-name string for unit cases,
// or an Unknown preserved from a previous decode, which re-emits its
// raw payload byte-identically.
func (ve *ValueEncoder) EncodeUnion(u *schema.Union, v interface{}) error {
	e := ve.encoder
	switch val := v.(type) {
	case Variant:
		idx := u.CaseIndex(val.Case)
		if idx < 0 {
			return errors.Newf("union %s has no case %q", u.Name, val.Case)
		}
		if err := e.BeginVariant(uint32(idx)); err != nil {
			return err
		}
		c := u.Cases[idx]
		if c.Type == nil {
			return e.EncodeUnit()
		}
		return wrapWithField(ve.Encode(c.Type, val.Value), c.Name)
	case *Variant:
		return ve.EncodeUnion(u, *val)
	case Unknown:
		if err := e.BeginVariant(val.Discriminator); err != nil {
			return err
		}
		return e.appendRaw(val.Raw)
	case string:
		return ve.EncodeUnion(u, Variant{Case: val})
	default:
		return errors.Newf("union %s requires a Variant, case name or Unknown, got %T", u.Name, v)
	}
}

// encodeOption writes the None/Some variant protocol: discriminator 0
// with a unit placeholder, or discriminator 1 with the inner value.
func (ve *ValueEncoder) encodeOption(elem *schema.Type, v interface{}) error {
	e := ve.encoder
	if isNil(v) {
		if err := e.BeginVariant(0); err != nil {
			return err
		}
		return e.EncodeUnit()
	}
	if err := e.BeginVariant(1); err != nil {
		return err
	}
	return ve.Encode(elem, v)
}

func (ve *ValueEncoder) encodeSequence(elem *schema.Type, v interface{}) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return errors.Newf("sequence requires a slice or array, got %T", v)
	}
	if err := ve.encoder.BeginSequence(rv.Len()); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := ve.Encode(elem, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// encodeMap flattens a Go map into alternating key/value elements in
// the map's iteration order.
func (ve *ValueEncoder) encodeMap(t *schema.Type, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return errors.Newf("map field requires a map, got %T", v)
	}
	if err := ve.encoder.BeginMap(rv.Len()); err != nil {
		return err
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := ve.Encode(t.Key, iter.Key().Interface()); err != nil {
			return err
		}
		if err := ve.Encode(t.Value, iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

// zeroValue produces the encodable zero for a type, used when a struct
// field map has no entry for a declared field.
func (ve *ValueEncoder) zeroValue(t *schema.Type) (interface{}, error) {
	switch t.Kind {
	case schema.KindBool:
		return false, nil
	case schema.KindInt:
		return int64(0), nil
	case schema.KindUint:
		return uint64(0), nil
	case schema.KindFloat:
		return float64(0), nil
	case schema.KindUnit, schema.KindOption:
		return nil, nil
	case schema.KindString:
		return "", nil
	case schema.KindBytes:
		return []byte{}, nil
	case schema.KindSequence:
		return []interface{}{}, nil
	case schema.KindMap:
		return map[interface{}]interface{}{}, nil
	case schema.KindWrapper:
		return ve.zeroValue(t.Elem)
	case schema.KindNamed:
		st, un, err := ve.resolve(t.Ref)
		if err != nil {
			return nil, err
		}
		if st != nil {
			return map[string]interface{}{}, nil
		}
		return nil, errors.Newf("union %s has no zero value; supply one explicitly", un.Name)
	default:
		return nil, errors.Newf("unsupported kind %q", t.Kind)
	}
}

func (ve *ValueEncoder) resolve(ref string) (*schema.Struct, *schema.Union, error) {
	return resolveNamed(ve.encoder.resolver, ref)
}

// DECODER METHODS

// Decode materializes one value of the given type.
func (vd *ValueDecoder) Decode(t *schema.Type) (interface{}, error) {
	d := vd.decoder
	switch t.Kind {
	case schema.KindBool:
		return d.DecodeBool()
	case schema.KindInt:
		switch t.Bits {
		case 8:
			return d.DecodeInt8()
		case 16:
			return d.DecodeInt16()
		case 32:
			return d.DecodeInt32()
		default:
			return d.DecodeInt64()
		}
	case schema.KindUint:
		switch t.Bits {
		case 8:
			return d.DecodeUint8()
		case 16:
			return d.DecodeUint16()
		case 32:
			return d.DecodeUint32()
		default:
			return d.DecodeUint64()
		}
	case schema.KindFloat:
		if t.Bits == 32 {
			return d.DecodeFloat32()
		}
		return d.DecodeFloat64()
	case schema.KindUnit:
		return nil, d.DecodeUnit()
	case schema.KindString:
		return d.DecodeString()
	case schema.KindBytes:
		if vd.CopyBytes {
			return d.DecodeBytesCopy()
		}
		return d.DecodeBytes()
	case schema.KindOption:
		present, err := d.DecodeOption()
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
		return vd.Decode(t.Elem)
	case schema.KindSequence:
		return vd.decodeSequence(t.Elem)
	case schema.KindMap:
		return vd.decodeMap(t)
	case schema.KindWrapper:
		return vd.Decode(t.Elem)
	case schema.KindNamed:
		st, un, err := vd.resolve(t.Ref)
		if err != nil {
			return nil, err
		}
		if st != nil {
			return vd.DecodeStruct(st)
		}
		return vd.DecodeUnion(un)
	default:
		return nil, errors.Newf("unsupported kind %q", t.Kind)
	}
}

// DecodeStruct decodes a positional sequence against a struct
// definition. Trailing values the definition does not cover are
// skipped; declared fields the stream does not carry stay absent from
// the result map, which is how the host detects them.
func (vd *ValueDecoder) DecodeStruct(st *schema.Struct) (map[string]interface{}, error) {
	n, err := vd.decoder.DecodeSequenceHeader()
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(st.Fields))
	for i := 0; i < n; i++ {
		if i >= len(st.Fields) {
			if err := vd.decoder.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		f := st.Fields[i]
		v, err := vd.Decode(f.Type)
		if err != nil {
			return nil, wrapWithField(err, f.Name)
		}
		result[f.Name] = v
	}
	return result, nil
}

// DecodeUnion decodes a tagged union. A discriminator past the case
// list yields an opaque Unknown unless the union is exhaustive.
func (vd *ValueDecoder) DecodeUnion(u *schema.Union) (interface{}, error) {
	d := vd.decoder
	disc, err := d.DecodeVariantHeader()
	if err != nil {
		return nil, err
	}
	if int(disc) >= len(u.Cases) {
		if u.Exhaustive {
			return nil, errors.Wrapf(ErrUnknownVariant, "union %s discriminator %d", u.Name, disc)
		}
		raw, err := d.SkipRaw()
		if err != nil {
			return nil, err
		}
		if vd.CopyBytes {
			owned := make([]byte, len(raw))
			copy(owned, raw)
			raw = owned
		}
		return Unknown{Discriminator: disc, Raw: raw}, nil
	}

	c := u.Cases[disc]
	if c.Type == nil {
		// payload-free case still carries one inner value
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return Variant{Case: c.Name}, nil
	}
	v, err := vd.Decode(c.Type)
	if err != nil {
		return nil, wrapWithField(err, c.Name)
	}
	return Variant{Case: c.Name, Value: v}, nil
}

func (vd *ValueDecoder) decodeSequence(elem *schema.Type) ([]interface{}, error) {
	d := vd.decoder
	n, err := d.DecodeSequenceHeader()
	if err != nil {
		return nil, err
	}
	// every element costs at least one byte; a count beyond the
	// remaining input can never decode
	if n > d.Remaining() {
		return nil, errors.Wrapf(ErrLengthOverflow, "sequence count %d exceeds %d remaining bytes", n, d.Remaining())
	}
	result := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		v, err := vd.Decode(elem)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (vd *ValueDecoder) decodeMap(t *schema.Type) (map[interface{}]interface{}, error) {
	d := vd.decoder
	pairs, err := d.DecodeMapHeader()
	if err != nil {
		return nil, err
	}
	if pairs*2 > d.Remaining() {
		return nil, errors.Wrapf(ErrLengthOverflow, "map count %d exceeds %d remaining bytes", pairs*2, d.Remaining())
	}
	result := make(map[interface{}]interface{}, pairs)
	for i := 0; i < pairs; i++ {
		k, err := vd.Decode(t.Key)
		if err != nil {
			return nil, err
		}
		if b, ok := k.([]byte); ok {
			k = string(b)
		}
		v, err := vd.Decode(t.Value)
		if err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

func (vd *ValueDecoder) resolve(ref string) (*schema.Struct, *schema.Union, error) {
	return resolveNamed(vd.decoder.resolver, ref)
}

// SHARED HELPERS

func resolveNamed(r schema.Resolver, ref string) (*schema.Struct, *schema.Union, error) {
	if r == nil {
		return nil, nil, errors.Newf("no resolver for named type %q", ref)
	}
	if st, err := r.Struct(ref); err == nil {
		return st, nil, nil
	}
	un, err := r.Union(ref)
	if err != nil {
		return nil, nil, errors.Newf("type not registered: %s", ref)
	}
	return nil, un, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
