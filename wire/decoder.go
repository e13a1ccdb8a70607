package wire

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/tagwire/tagwire/schema"
)

// Decoder handles low-level wire format decoding. Its only mutable
// state is a cursor into an immutable input buffer, so independent
// decoders may run in parallel. Byte and string views returned by the
// borrowing decode paths alias the input buffer; the buffer must
// outlive them, or callers use the owned-copy paths instead.
type Decoder struct {
	buf      []byte
	pos      int
	resolver schema.Resolver
}

// NewDecoder creates a new wire format decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
	}
}

// NewDecoderWithResolver creates a decoder that can resolve named
// struct and union types during schema-driven decoding.
func NewDecoderWithResolver(data []byte, resolver schema.Resolver) *Decoder {
	return &Decoder{
		buf:      data,
		pos:      0,
		resolver: resolver,
	}
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// PeekWireType reports the wire type of the next value without
// consuming anything. It is the probe the host layer uses when its
// expected shape and the stream's actual shape may disagree.
func (d *Decoder) PeekWireType() (WireType, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrUnexpectedEOF
	}
	return TagWireType(d.buf[d.pos]), nil
}

// DecodeSequenceHeader reads a sequence tag and returns the element
// count. The caller decodes (or skips) exactly that many values.
func (d *Decoder) DecodeSequenceHeader() (int, error) {
	vd := NewVarintDecoder(d)
	wt, n, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	if wt != WireSequence {
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where sequence expected", wt)
	}
	if n > math.MaxInt32 {
		return 0, errors.Wrapf(ErrLengthOverflow, "sequence count %d", n)
	}
	return int(n), nil
}

// DecodeMapHeader reads a map header and returns the number of
// key/value pairs. An odd element count cannot be a map and fails
// rather than silently truncating.
func (d *Decoder) DecodeMapHeader() (int, error) {
	n, err := d.DecodeSequenceHeader()
	if err != nil {
		return 0, err
	}
	if n%2 != 0 {
		return 0, errors.Wrapf(ErrInvalidMap, "odd element count %d", n)
	}
	return n / 2, nil
}

// DecodeVariantHeader reads a variant tag and returns the
// discriminator. Exactly one inner value follows, even for cases that
// carry no payload.
func (d *Decoder) DecodeVariantHeader() (uint32, error) {
	vd := NewVarintDecoder(d)
	wt, disc, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	if wt != WireVariant {
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where variant expected", wt)
	}
	if disc > math.MaxUint32 {
		return 0, errors.Wrap(ErrMalformedVarint, "discriminator overflows uint32")
	}
	return uint32(disc), nil
}

// DecodeOption reads an optional value's variant header. It returns
// false after consuming the placeholder payload when the value is
// absent; when it returns true the caller decodes the inner value.
func (d *Decoder) DecodeOption() (bool, error) {
	disc, err := d.DecodeVariantHeader()
	if err != nil {
		return false, err
	}
	if disc == 0 {
		if err := d.Skip(); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// DecodeValue decodes a single value of the given type - main entry
// point for schema-driven decoding. Trailing bytes after the value are
// an error.
func DecodeValue(data []byte, t *schema.Type, resolver schema.Resolver) (interface{}, error) {
	decoder := NewDecoderWithResolver(data, resolver)
	vd := NewValueDecoder(decoder)
	v, err := vd.Decode(t)
	if err != nil {
		return nil, err
	}
	if decoder.Remaining() > 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes", decoder.Remaining())
	}
	return v, nil
}

// DecodeStructValue decodes bytes against a struct definition into a
// field map. Fields the stream does not carry are absent from the map.
func DecodeStructValue(data []byte, st *schema.Struct, resolver schema.Resolver) (map[string]interface{}, error) {
	decoder := NewDecoderWithResolver(data, resolver)
	vd := NewValueDecoder(decoder)
	m, err := vd.DecodeStruct(st)
	if err != nil {
		return nil, err
	}
	if decoder.Remaining() > 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes", decoder.Remaining())
	}
	return m, nil
}
