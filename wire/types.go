package wire

// ===== WIRE FORMAT TYPES =====

// WireType identifies how to parse the bytes following a value's tag
// byte. It occupies the low 3 bits of the tag.
type WireType byte

const (
	WireInteger   WireType = 0 // varint: bool, int, uint, unit, enum-like counters
	WireFixed32   WireType = 1 // 4 raw little-endian bytes: float32, fixed-width u32/i32
	WireFixed64   WireType = 2 // 8 raw little-endian bytes: float64, fixed-width u64/i64
	WireSequence  WireType = 3 // varint element count, then that many encoded values
	WireBytes     WireType = 4 // varint byte length, then raw bytes
	WireVariant   WireType = 5 // varint discriminator, then exactly one encoded value
	WireReserved6 WireType = 6 // never encoded; decode error
	WireReserved7 WireType = 7 // never encoded; decode error
)

// HasVarint reports whether the payload for this wire type begins with
// a varint whose low 4 bits are folded into the tag byte.
func (wt WireType) HasVarint() bool {
	switch wt {
	case WireInteger, WireSequence, WireBytes, WireVariant:
		return true
	}
	return false
}

// Reserved reports whether the wire type is one of the two reserved
// values that must never appear on the wire.
func (wt WireType) Reserved() bool {
	return wt == WireReserved6 || wt == WireReserved7
}

func (wt WireType) String() string {
	switch wt {
	case WireInteger:
		return "integer"
	case WireFixed32:
		return "fixed32"
	case WireFixed64:
		return "fixed64"
	case WireSequence:
		return "sequence"
	case WireBytes:
		return "bytes"
	case WireVariant:
		return "variant"
	case WireReserved6:
		return "reserved6"
	case WireReserved7:
		return "reserved7"
	}
	return "invalid"
}

// Tag byte layout: bits 0-2 wire type, bits 3-6 low varint bits,
// bit 7 continuation flag.
const (
	tagTypeMask  = 0x07
	tagValueMask = 0x0F
	tagValueBits = 4
	tagContBit   = 0x80
)

// TagWireType extracts the wire type from a tag byte.
func TagWireType(tag byte) WireType {
	return WireType(tag & tagTypeMask)
}

// MakeTag builds a tag byte from a wire type, the low 4 varint bits
// and the continuation flag. Exposed for tests and tooling; encoders
// normally go through the varint encoder.
func MakeTag(wt WireType, low4 byte, cont bool) byte {
	tag := byte(wt) | (low4&tagValueMask)<<3
	if cont {
		tag |= tagContBit
	}
	return tag
}

// ===== DECODED VALUE TYPES =====

// Variant is a decoded union value: the name of the active case plus
// its payload. Unit cases carry a nil Value.
type Variant struct {
	Case  string
	Value interface{}
}

// Unknown is the opaque fallback for a union discriminator the
// receiver's case list does not cover. Raw holds the encoded inner
// value verbatim (borrowed from the input buffer) so the value can be
// re-encoded byte-identically or inspected later.
type Unknown struct {
	Discriminator uint32
	Raw           []byte
}
