package wire

import (
	"github.com/cockroachdb/errors"
)

// Skip consumes exactly one encoded value without producing a typed
// result, using only the wire type embedded in the stream. It is what
// makes schema evolution work: struct decoding skips trailing fields
// the receiver does not know, and union decoding skips the payload of
// an unrecognized case.
func (d *Decoder) Skip() error {
	vd := NewVarintDecoder(d)
	wt, n, err := vd.DecodeTagged()
	if err != nil {
		return err
	}
	switch wt {
	case WireInteger:
		// the tagged read consumed the whole varint
		return nil
	case WireFixed32:
		if d.Remaining() < 4 {
			return errors.Wrap(ErrUnexpectedEOF, "skipping fixed32")
		}
		d.pos += 4
		return nil
	case WireFixed64:
		if d.Remaining() < 8 {
			return errors.Wrap(ErrUnexpectedEOF, "skipping fixed64")
		}
		d.pos += 8
		return nil
	case WireSequence:
		// counts elements, not bytes: every element is skipped in turn
		for i := uint64(0); i < n; i++ {
			if err := d.Skip(); err != nil {
				return err
			}
		}
		return nil
	case WireBytes:
		// counts raw bytes: a single cursor jump
		bd := NewBytesDecoder(d)
		return bd.SkipBytes(n)
	case WireVariant:
		// discriminator already consumed; one inner value follows
		return d.Skip()
	default:
		return errors.Wrapf(ErrReservedWireType, "wire type %d", wt)
	}
}

// SkipRaw skips one value and returns the bytes it occupied as a view
// into the input buffer. Union decoding uses this to preserve an
// unknown case's payload for re-emission.
func (d *Decoder) SkipRaw() ([]byte, error) {
	start := d.pos
	if err := d.Skip(); err != nil {
		return nil, err
	}
	return d.buf[start:d.pos], nil
}
