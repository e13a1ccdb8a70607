package wire

import (
	"math"

	"github.com/cockroachdb/errors"
)

// BytesDecoder handles length-delimited bytes decoding operations
type BytesDecoder struct {
	decoder *Decoder
}

// BytesEncoder handles length-delimited bytes encoding operations
type BytesEncoder struct {
	encoder *Encoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(d *Decoder) *BytesDecoder {
	return &BytesDecoder{decoder: d}
}

// NewBytesEncoder creates a new bytes encoder
func NewBytesEncoder(e *Encoder) *BytesEncoder {
	return &BytesEncoder{encoder: e}
}

// DECODER METHODS

// DecodeBytes decodes a length-delimited byte blob as a view into the
// input buffer. No copy is made; the input must outlive the result.
func (bd *BytesDecoder) DecodeBytes() ([]byte, error) {
	d := bd.decoder
	vd := NewVarintDecoder(d)
	wt, length, err := vd.DecodeTagged()
	if err != nil {
		return nil, err
	}
	if wt != WireBytes {
		return nil, errors.Wrapf(ErrWireTypeMismatch, "%s where bytes expected", wt)
	}
	if length > math.MaxInt32 {
		return nil, errors.Wrapf(ErrLengthOverflow, "byte length %d", length)
	}
	if int(length) > d.Remaining() {
		return nil, errors.Wrapf(ErrUnexpectedEOF, "need %d bytes, have %d", length, d.Remaining())
	}

	data := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return data, nil
}

// DecodeBytesCopy decodes a byte blob into a fresh allocation,
// detached from the input buffer's lifetime.
func (bd *BytesDecoder) DecodeBytesCopy() ([]byte, error) {
	view, err := bd.DecodeBytes()
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(view))
	copy(data, view)
	return data, nil
}

// DecodeString decodes a length-delimited string. UTF-8 validity is
// the host layer's concern, not enforced here.
func (bd *BytesDecoder) DecodeString() (string, error) {
	data, err := bd.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SkipBytes skips a byte blob in a single cursor jump driven only by
// its declared length.
func (bd *BytesDecoder) SkipBytes(length uint64) error {
	d := bd.decoder
	if length > math.MaxInt32 {
		return errors.Wrapf(ErrLengthOverflow, "byte length %d", length)
	}
	if int(length) > d.Remaining() {
		return errors.Wrapf(ErrUnexpectedEOF, "cannot skip %d bytes, have %d", length, d.Remaining())
	}
	d.pos += int(length)
	return nil
}

// ENCODER METHODS

// EncodeBytes writes a Bytes tag, the byte length and the raw bytes
// verbatim.
func (be *BytesEncoder) EncodeBytes(data []byte) error {
	e := be.encoder
	if err := e.reserve(TaggedVarintSize(uint64(len(data))) + len(data)); err != nil {
		return err
	}
	ve := NewVarintEncoder(e)
	if err := ve.EncodeTagged(WireBytes, uint64(len(data))); err != nil {
		return err
	}
	e.buf = append(e.buf, data...)
	return nil
}

// EncodeString writes a string as length-delimited bytes.
func (be *BytesEncoder) EncodeString(s string) error {
	e := be.encoder
	if err := e.reserve(TaggedVarintSize(uint64(len(s))) + len(s)); err != nil {
		return err
	}
	ve := NewVarintEncoder(e)
	if err := ve.EncodeTagged(WireBytes, uint64(len(s))); err != nil {
		return err
	}
	e.buf = append(e.buf, s...)
	return nil
}

// UTILITY FUNCTIONS

// BytesSize returns the wire size of a byte blob including its tag and
// length varint.
func BytesSize(data []byte) int {
	return TaggedVarintSize(uint64(len(data))) + len(data)
}

// ===== VISITOR CONTRACT: BYTES =====

// EncodeBytes - convenience method for main encoder
func (e *Encoder) EncodeBytes(data []byte) error {
	be := NewBytesEncoder(e)
	return be.EncodeBytes(data)
}

// EncodeString - convenience method for main encoder
func (e *Encoder) EncodeString(s string) error {
	be := NewBytesEncoder(e)
	return be.EncodeString(s)
}

// DecodeBytes decodes a byte blob as a borrowed view - convenience
// method for main decoder.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	bd := NewBytesDecoder(d)
	return bd.DecodeBytes()
}

// DecodeBytesCopy decodes a byte blob as an owned copy.
func (d *Decoder) DecodeBytesCopy() ([]byte, error) {
	bd := NewBytesDecoder(d)
	return bd.DecodeBytesCopy()
}

// DecodeString - convenience method for main decoder
func (d *Decoder) DecodeString() (string, error) {
	bd := NewBytesDecoder(d)
	return bd.DecodeString()
}
