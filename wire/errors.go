package wire

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Decode/encode error taxonomy. All failures abort the current call;
// the codec never retries, since every error stems from malformed
// input or an exhausted sink rather than a transient condition.
var (
	// ErrMalformedVarint means a varint overflowed its target integer
	// width or the stream ended before a terminating byte.
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrUnexpectedEOF means the buffer is shorter than a declared
	// length or a fixed-width payload requires.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrReservedWireType means wire type 6 or 7 was encountered.
	ErrReservedWireType = errors.New("reserved wire type")

	// ErrLengthOverflow means a declared count or length exceeds what
	// the platform can address.
	ErrLengthOverflow = errors.New("declared length overflows")

	// ErrUnknownVariant is raised only for unions that demand
	// all-known-cases semantics; by default an unrecognized
	// discriminator decodes to an opaque Unknown value instead.
	ErrUnknownVariant = errors.New("unknown variant discriminator")

	// ErrWireTypeMismatch means the value on the wire has a shape the
	// requested decode cannot accept.
	ErrWireTypeMismatch = errors.New("unexpected wire type")

	// ErrInvalidMap means a map carried an odd element count.
	ErrInvalidMap = errors.New("invalid map encoding")

	// ErrTrailingData means a top-level decode left unconsumed bytes.
	ErrTrailingData = errors.New("data beyond end of value")

	// ErrOutputExhausted means a bounded encoder buffer ran out of
	// space. It is the only encoding-side failure.
	ErrOutputExhausted = errors.New("output buffer exhausted")
)

// FieldError carries the path of struct fields and union cases leading
// to a failure in a schema-driven encode or decode.
type FieldError struct {
	FieldPath []string // e.g. ["user", "address", "zip"]
	Err       error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("error at path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// wrapWithField prepends a field name to the error's path.
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}
	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
