package wire

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// FixedDecoder handles fixed-width decoding operations
type FixedDecoder struct {
	decoder *Decoder
}

// FixedEncoder handles fixed-width encoding operations
type FixedEncoder struct {
	encoder *Encoder
}

// NewFixedDecoder creates a new fixed decoder
func NewFixedDecoder(d *Decoder) *FixedDecoder {
	return &FixedDecoder{decoder: d}
}

// NewFixedEncoder creates a new fixed encoder
func NewFixedEncoder(e *Encoder) *FixedEncoder {
	return &FixedEncoder{encoder: e}
}

// DECODER METHODS

// DecodeFixed32 reads 4 raw little-endian bytes. The tag byte must
// already have been consumed.
func (fd *FixedDecoder) DecodeFixed32() (uint32, error) {
	d := fd.decoder
	if d.pos+4 > len(d.buf) {
		return 0, errors.Wrap(ErrUnexpectedEOF, "fixed32 payload")
	}
	value := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return value, nil
}

// DecodeFixed64 reads 8 raw little-endian bytes.
func (fd *FixedDecoder) DecodeFixed64() (uint64, error) {
	d := fd.decoder
	if d.pos+8 > len(d.buf) {
		return 0, errors.Wrap(ErrUnexpectedEOF, "fixed64 payload")
	}
	value := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return value, nil
}

// DecodeSfixed32 reads a signed 32-bit fixed-width value.
func (fd *FixedDecoder) DecodeSfixed32() (int32, error) {
	v, err := fd.DecodeFixed32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeSfixed64 reads a signed 64-bit fixed-width value.
func (fd *FixedDecoder) DecodeSfixed64() (int64, error) {
	v, err := fd.DecodeFixed64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ENCODER METHODS

// EncodeFixed32 writes 4 raw little-endian bytes.
func (fe *FixedEncoder) EncodeFixed32(v uint32) error {
	e := fe.encoder
	if err := e.reserve(4); err != nil {
		return err
	}
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return nil
}

// EncodeFixed64 writes 8 raw little-endian bytes.
func (fe *FixedEncoder) EncodeFixed64(v uint64) error {
	e := fe.encoder
	if err := e.reserve(8); err != nil {
		return err
	}
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return nil
}

// ===== VISITOR CONTRACT: FLOAT WRITES =====

// EncodeFloat32 encodes a float32 as a Fixed32 tag plus raw bits; no
// varint stage.
func (e *Encoder) EncodeFloat32(v float32) error {
	if err := e.reserve(5); err != nil {
		return err
	}
	e.buf = append(e.buf, byte(WireFixed32))
	fe := NewFixedEncoder(e)
	return fe.EncodeFixed32(math.Float32bits(v))
}

// EncodeFloat64 encodes a float64 as a Fixed64 tag plus raw bits.
func (e *Encoder) EncodeFloat64(v float64) error {
	if err := e.reserve(9); err != nil {
		return err
	}
	e.buf = append(e.buf, byte(WireFixed64))
	fe := NewFixedEncoder(e)
	return fe.EncodeFixed64(math.Float64bits(v))
}

// ===== VISITOR CONTRACT: FLOAT READS =====

// DecodeFloat32 decodes a float32. A Fixed64 value is accepted and
// truncated, so a field widened to float64 still decodes on old
// receivers.
func (d *Decoder) DecodeFloat32() (float32, error) {
	vd := NewVarintDecoder(d)
	wt, _, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	fd := NewFixedDecoder(d)
	switch wt {
	case WireFixed32:
		bits, err := fd.DecodeFixed32()
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(bits), nil
	case WireFixed64:
		bits, err := fd.DecodeFixed64()
		if err != nil {
			return 0, err
		}
		return float32(math.Float64frombits(bits)), nil
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where float expected", wt)
	}
}

// DecodeFloat64 decodes a float64, accepting and widening Fixed32.
func (d *Decoder) DecodeFloat64() (float64, error) {
	vd := NewVarintDecoder(d)
	wt, _, err := vd.DecodeTagged()
	if err != nil {
		return 0, err
	}
	fd := NewFixedDecoder(d)
	switch wt {
	case WireFixed32:
		bits, err := fd.DecodeFixed32()
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(bits)), nil
	case WireFixed64:
		bits, err := fd.DecodeFixed64()
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	default:
		return 0, errors.Wrapf(ErrWireTypeMismatch, "%s where float expected", wt)
	}
}
