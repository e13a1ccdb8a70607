package wire

import (
	"github.com/cockroachdb/errors"
)

// RawValue is a decoded value with no type description: just the wire
// type and whatever the stream self-describes. It is what a relay or
// inspector works with when it understands the format but not the
// schema.
type RawValue struct {
	Type WireType

	Integer       uint64     // Integer: raw varint, pre-zigzag
	Fixed32       uint32     // Fixed32: raw bits
	Fixed64       uint64     // Fixed64: raw bits
	Bytes         []byte     // Bytes: borrowed payload
	Elems         []RawValue // Sequence: decoded elements
	Discriminator uint32     // Variant
	Inner         *RawValue  // Variant: the single inner value
}

// DecodeRaw decodes the next value generically, driven only by wire
// types. Byte payloads are borrowed from the input buffer.
func (d *Decoder) DecodeRaw() (*RawValue, error) {
	vd := NewVarintDecoder(d)
	wt, n, err := vd.DecodeTagged()
	if err != nil {
		return nil, err
	}
	switch wt {
	case WireInteger:
		return &RawValue{Type: wt, Integer: n}, nil
	case WireFixed32:
		fd := NewFixedDecoder(d)
		bits, err := fd.DecodeFixed32()
		if err != nil {
			return nil, err
		}
		return &RawValue{Type: wt, Fixed32: bits}, nil
	case WireFixed64:
		fd := NewFixedDecoder(d)
		bits, err := fd.DecodeFixed64()
		if err != nil {
			return nil, err
		}
		return &RawValue{Type: wt, Fixed64: bits}, nil
	case WireSequence:
		if n > uint64(d.Remaining()) {
			return nil, errors.Wrapf(ErrLengthOverflow, "sequence count %d exceeds %d remaining bytes", n, d.Remaining())
		}
		elems := make([]RawValue, 0, n)
		for i := uint64(0); i < n; i++ {
			el, err := d.DecodeRaw()
			if err != nil {
				return nil, err
			}
			elems = append(elems, *el)
		}
		return &RawValue{Type: wt, Elems: elems}, nil
	case WireBytes:
		if n > uint64(d.Remaining()) {
			return nil, errors.Wrapf(ErrUnexpectedEOF, "need %d bytes, have %d", n, d.Remaining())
		}
		data := d.buf[d.pos : d.pos+int(n)]
		d.pos += int(n)
		return &RawValue{Type: wt, Bytes: data}, nil
	case WireVariant:
		inner, err := d.DecodeRaw()
		if err != nil {
			return nil, err
		}
		return &RawValue{Type: wt, Discriminator: uint32(n), Inner: inner}, nil
	default:
		return nil, errors.Wrapf(ErrReservedWireType, "wire type %d", wt)
	}
}

// EncodeRaw re-emits a generically decoded value. A decode/encode
// round trip through RawValue is byte-identical, which is what lets a
// relay forward values it does not fully understand.
func (e *Encoder) EncodeRaw(v *RawValue) error {
	ve := NewVarintEncoder(e)
	switch v.Type {
	case WireInteger:
		return ve.EncodeTagged(WireInteger, v.Integer)
	case WireFixed32:
		if err := e.reserve(5); err != nil {
			return err
		}
		e.buf = append(e.buf, byte(WireFixed32))
		fe := NewFixedEncoder(e)
		return fe.EncodeFixed32(v.Fixed32)
	case WireFixed64:
		if err := e.reserve(9); err != nil {
			return err
		}
		e.buf = append(e.buf, byte(WireFixed64))
		fe := NewFixedEncoder(e)
		return fe.EncodeFixed64(v.Fixed64)
	case WireSequence:
		if err := ve.EncodeTagged(WireSequence, uint64(len(v.Elems))); err != nil {
			return err
		}
		for i := range v.Elems {
			if err := e.EncodeRaw(&v.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case WireBytes:
		be := NewBytesEncoder(e)
		return be.EncodeBytes(v.Bytes)
	case WireVariant:
		if err := ve.EncodeTagged(WireVariant, uint64(v.Discriminator)); err != nil {
			return err
		}
		return e.EncodeRaw(v.Inner)
	default:
		return errors.Wrapf(ErrReservedWireType, "wire type %d", v.Type)
	}
}
