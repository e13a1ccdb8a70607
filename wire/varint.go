package wire

import (
	"math"

	"github.com/cockroachdb/errors"
)

// VarintDecoder handles tag-folded varint decoding operations
type VarintDecoder struct {
	decoder *Decoder
}

// VarintEncoder handles tag-folded varint encoding operations
type VarintEncoder struct {
	encoder *Encoder
}

// NewVarintDecoder creates a new varint decoder
func NewVarintDecoder(d *Decoder) *VarintDecoder {
	return &VarintDecoder{decoder: d}
}

// NewVarintEncoder creates a new varint encoder
func NewVarintEncoder(e *Encoder) *VarintEncoder {
	return &VarintEncoder{encoder: e}
}

// DECODER METHODS

// DecodeTagged reads a tag byte and, for varint-bearing wire types,
// the varint continuation that follows it. The returned value is 0 for
// Fixed32/Fixed64 tags, whose payload is read separately.
func (vd *VarintDecoder) DecodeTagged() (WireType, uint64, error) {
	d := vd.decoder
	if d.pos >= len(d.buf) {
		return 0, 0, ErrUnexpectedEOF
	}

	tag := d.buf[d.pos]
	d.pos++

	wt := TagWireType(tag)
	if !wt.HasVarint() {
		return wt, 0, nil
	}

	// The first 4 value bits live in the tag byte itself, so any value
	// under 16 costs exactly one byte.
	value := uint64(tag>>3) & tagValueMask
	if tag&tagContBit == 0 {
		return wt, value, nil
	}

	shift := uint(tagValueBits)
	for {
		if d.pos >= len(d.buf) {
			return 0, 0, errors.Wrap(ErrMalformedVarint, "missing terminating byte")
		}
		if shift >= 64 {
			return 0, 0, errors.Wrap(ErrMalformedVarint, "overflows 64 bits")
		}

		b := d.buf[d.pos]
		d.pos++

		value |= uint64(b&0x7F) << shift
		if b&tagContBit == 0 {
			return wt, value, nil
		}
		shift += 7
	}
}

// SkipVarint consumes a varint's continuation bytes without decoding
// the value. The tag byte must already have been read.
func (vd *VarintDecoder) SkipVarint(tag byte) error {
	if tag&tagContBit == 0 {
		return nil
	}
	d := vd.decoder
	for i := 0; ; i++ {
		if d.pos >= len(d.buf) {
			return errors.Wrap(ErrMalformedVarint, "missing terminating byte")
		}
		// 9 continuation bytes after the tag carry 4 + 9*7 = 67 bits,
		// already past any 64-bit value
		if i == 9 {
			return errors.Wrap(ErrMalformedVarint, "too many continuation bytes")
		}

		b := d.buf[d.pos]
		d.pos++
		if b&tagContBit == 0 {
			return nil
		}
	}
}

// ENCODER METHODS

// EncodeTagged writes a tag byte with the given wire type and value,
// followed by varint continuation bytes as needed.
func (ve *VarintEncoder) EncodeTagged(wt WireType, v uint64) error {
	e := ve.encoder
	if err := e.reserve(TaggedVarintSize(v)); err != nil {
		return err
	}

	tag := byte(wt) | byte(v&tagValueMask)<<3
	v >>= tagValueBits
	if v == 0 {
		e.buf = append(e.buf, tag)
		return nil
	}

	e.buf = append(e.buf, tag|tagContBit)
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|tagContBit)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
	return nil
}

// CONVERSION HELPERS

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer
func DecodeZigZag32(encoded uint64) int32 {
	return int32((uint32(encoded) >> 1) ^ uint32(-int32(encoded&1)))
}

// DecodeZigZag64 decodes a zigzag-encoded 64-bit integer
func DecodeZigZag64(encoded uint64) int64 {
	return int64((encoded >> 1) ^ uint64(-int64(encoded&1)))
}

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}

// EncodeZigZag64 encodes a signed 64-bit integer using zigzag encoding
func EncodeZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// TaggedVarintSize returns the number of bytes a tag-folded varint
// occupies on the wire, including the tag byte.
func TaggedVarintSize(v uint64) int {
	switch {
	case v < 1<<4:
		return 1
	case v < 1<<11:
		return 2
	case v < 1<<18:
		return 3
	case v < 1<<25:
		return 4
	case v < 1<<32:
		return 5
	case v < 1<<39:
		return 6
	case v < 1<<46:
		return 7
	case v < 1<<53:
		return 8
	case v < 1<<60:
		return 9
	default:
		return 10
	}
}

// ===== VISITOR CONTRACT: INTEGER WRITES =====

// EncodeUint64 encodes an unsigned integer as a tagged varint.
func (e *Encoder) EncodeUint64(v uint64) error {
	ve := NewVarintEncoder(e)
	return ve.EncodeTagged(WireInteger, v)
}

// EncodeUint32 encodes a uint32 as a tagged varint.
func (e *Encoder) EncodeUint32(v uint32) error {
	return e.EncodeUint64(uint64(v))
}

// EncodeUint16 encodes a uint16 as a tagged varint.
func (e *Encoder) EncodeUint16(v uint16) error {
	return e.EncodeUint64(uint64(v))
}

// EncodeUint8 encodes a uint8 as a tagged varint.
func (e *Encoder) EncodeUint8(v uint8) error {
	return e.EncodeUint64(uint64(v))
}

// EncodeInt64 encodes a signed integer, zigzag-transformed first so
// small magnitudes of either sign stay short.
func (e *Encoder) EncodeInt64(v int64) error {
	return e.EncodeUint64(EncodeZigZag64(v))
}

// EncodeInt32 encodes an int32 with zigzag encoding.
func (e *Encoder) EncodeInt32(v int32) error {
	return e.EncodeInt64(int64(v))
}

// EncodeInt16 encodes an int16 with zigzag encoding.
func (e *Encoder) EncodeInt16(v int16) error {
	return e.EncodeInt64(int64(v))
}

// EncodeInt8 encodes an int8 with zigzag encoding.
func (e *Encoder) EncodeInt8(v int8) error {
	return e.EncodeInt64(int64(v))
}

// EncodeBool encodes a bool as integer 0 or 1.
func (e *Encoder) EncodeBool(v bool) error {
	if v {
		return e.EncodeUint64(1)
	}
	return e.EncodeUint64(0)
}

// EncodeUnit encodes the unit value. On the wire it is integer 0 and
// receivers skip it without inspecting the wire type, which is what
// lets a field be deprecated to unit without breaking old senders.
func (e *Encoder) EncodeUnit() error {
	return e.EncodeUint64(0)
}

// BeginSequence writes a sequence header for n elements; the caller
// then encodes each element in order. The count is elements, not
// bytes, so unknown sequences are skipped element by element.
func (e *Encoder) BeginSequence(n int) error {
	ve := NewVarintEncoder(e)
	return ve.EncodeTagged(WireSequence, uint64(n))
}

// BeginMap writes a map header for the given number of key/value
// pairs; the caller then encodes alternating keys and values. Maps
// share the sequence wire type with an element count of 2*pairs.
func (e *Encoder) BeginMap(pairs int) error {
	ve := NewVarintEncoder(e)
	return ve.EncodeTagged(WireSequence, uint64(pairs)*2)
}

// BeginVariant writes a variant header carrying the discriminator; the
// caller then encodes exactly one inner value (the unit value for
// payload-free cases).
func (e *Encoder) BeginVariant(discriminator uint32) error {
	ve := NewVarintEncoder(e)
	return ve.EncodeTagged(WireVariant, uint64(discriminator))
}

// ===== VISITOR CONTRACT: INTEGER READS =====

// DecodeUint64 decodes an unsigned 64-bit integer. Fixed64 values are
// accepted as raw little-endian bytes for fixed-width senders.
func (d *Decoder) DecodeUint64() (uint64, error) {
	vd := NewVarintDecoder(d)
	wt, v, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	switch wt {
	case WireInteger:
		return v, nil
	case WireFixed64:
		fd := NewFixedDecoder(d)
		return fd.DecodeFixed64()
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where integer expected", wt)
	}
}

// DecodeUint32 decodes an unsigned 32-bit integer, accepting Fixed32.
func (d *Decoder) DecodeUint32() (uint32, error) {
	vd := NewVarintDecoder(d)
	wt, v, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	switch wt {
	case WireInteger:
		if v > math.MaxUint32 {
			return 0, errors.Wrap(ErrMalformedVarint, "overflows uint32")
		}
		return uint32(v), nil
	case WireFixed32:
		fd := NewFixedDecoder(d)
		return fd.DecodeFixed32()
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where integer expected", wt)
	}
}

// DecodeUint16 decodes an unsigned 16-bit integer.
func (d *Decoder) DecodeUint16() (uint16, error) {
	v, err := d.decodeIntegerOnly()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		return 0, errors.Wrap(ErrMalformedVarint, "overflows uint16")
	}
	return uint16(v), nil
}

// DecodeUint8 decodes an unsigned 8-bit integer.
func (d *Decoder) DecodeUint8() (uint8, error) {
	v, err := d.decodeIntegerOnly()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, errors.Wrap(ErrMalformedVarint, "overflows uint8")
	}
	return uint8(v), nil
}

// DecodeInt64 decodes a zigzag-encoded signed 64-bit integer,
// accepting Fixed64.
func (d *Decoder) DecodeInt64() (int64, error) {
	vd := NewVarintDecoder(d)
	wt, v, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	switch wt {
	case WireInteger:
		return DecodeZigZag64(v), nil
	case WireFixed64:
		fd := NewFixedDecoder(d)
		return fd.DecodeSfixed64()
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where integer expected", wt)
	}
}

// DecodeInt32 decodes a zigzag-encoded signed 32-bit integer,
// accepting Fixed32.
func (d *Decoder) DecodeInt32() (int32, error) {
	vd := NewVarintDecoder(d)
	wt, v, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	switch wt {
	case WireInteger:
		s := DecodeZigZag64(v)
		if s < math.MinInt32 || s > math.MaxInt32 {
			return 0, errors.Wrap(ErrMalformedVarint, "overflows int32")
		}
		return int32(s), nil
	case WireFixed32:
		fd := NewFixedDecoder(d)
		return fd.DecodeSfixed32()
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where integer expected", wt)
	}
}

// DecodeInt16 decodes a zigzag-encoded signed 16-bit integer.
func (d *Decoder) DecodeInt16() (int16, error) {
	v, err := d.decodeIntegerOnly()
	if err != nil {
		return 0, err
	}
	s := DecodeZigZag64(v)
	if s < math.MinInt16 || s > math.MaxInt16 {
		return 0, errors.Wrap(ErrMalformedVarint, "overflows int16")
	}
	return int16(s), nil
}

// DecodeInt8 decodes a zigzag-encoded signed 8-bit integer.
func (d *Decoder) DecodeInt8() (int8, error) {
	v, err := d.decodeIntegerOnly()
	if err != nil {
		return 0, err
	}
	s := DecodeZigZag64(v)
	if s < math.MinInt8 || s > math.MaxInt8 {
		return 0, errors.Wrap(ErrMalformedVarint, "overflows int8")
	}
	return int8(s), nil
}

// DecodeBool decodes a bool; any non-zero integer is true, so a bool
// field may evolve from (or into) a wider integer.
func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.DecodeUint64()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeUnit consumes a value of any shape without validating it. A
// field whose declared type changed to unit keeps decoding whatever
// the sender still writes there.
func (d *Decoder) DecodeUnit() error {
	return d.Skip()
}

// decodeIntegerOnly reads a varint that must have the integer wire
// type; the narrow widths have no fixed-width form.
func (d *Decoder) decodeIntegerOnly() (uint64, error) {
	vd := NewVarintDecoder(d)
	wt, v, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	if wt != WireInteger {
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where integer expected", wt)
	}
	return v, nil
}
