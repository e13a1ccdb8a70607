package wire

import (
	"github.com/tagwire/tagwire/schema"
)

// Encoder handles low-level wire format encoding. All state is local
// to the encoder, so independent encoders may run in parallel.
type Encoder struct {
	buf      []byte
	limit    int // 0 means unbounded
	resolver schema.Resolver
}

// NewEncoder creates a new wire format encoder with an unbounded
// output buffer.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// NewEncoderWithLimit creates an encoder whose output may not exceed
// limit bytes; writes beyond it fail with ErrOutputExhausted.
func NewEncoderWithLimit(limit int) *Encoder {
	return &Encoder{
		buf:   make([]byte, 0, limit),
		limit: limit,
	}
}

// NewEncoderWithResolver creates an encoder that can resolve named
// struct and union types during schema-driven encoding.
func NewEncoderWithResolver(resolver schema.Resolver) *Encoder {
	return &Encoder{
		buf:      make([]byte, 0),
		resolver: resolver,
	}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// reserve checks that n more bytes fit under the configured limit.
func (e *Encoder) reserve(n int) error {
	if e.limit > 0 && len(e.buf)+n > e.limit {
		return ErrOutputExhausted
	}
	return nil
}

// appendRaw writes already-encoded bytes verbatim, used when
// re-emitting preserved unknown payloads.
func (e *Encoder) appendRaw(data []byte) error {
	if err := e.reserve(len(data)); err != nil {
		return err
	}
	e.buf = append(e.buf, data...)
	return nil
}

// EncodeValue encodes a single value of the given type and returns the
// bytes - main entry point for schema-driven encoding.
func EncodeValue(t *schema.Type, v interface{}, resolver schema.Resolver) ([]byte, error) {
	encoder := NewEncoderWithResolver(resolver)
	ve := NewValueEncoder(encoder)
	if err := ve.Encode(t, v); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}

// EncodeStruct encodes a field map against a struct definition and
// returns the bytes.
func EncodeStruct(data map[string]interface{}, st *schema.Struct, resolver schema.Resolver) ([]byte, error) {
	encoder := NewEncoderWithResolver(resolver)
	ve := NewValueEncoder(encoder)
	if err := ve.EncodeStruct(st, data); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}
