// Package container implements the wire header, option bundle, codec
// selection policy, and encoding-method registry: the layer meshcodec's
// public API sits on top of to turn a geom.Mesh/PointCloud plus Options into
// a self-describing byte stream and back.
package container

import "fmt"

// Kind classifies a container-level failure so callers can branch on it
// with errors.Is without string-matching Error.Error().
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBadMagic
	KindUnsupportedVersion
	KindTruncated
	KindBadAttribute
	KindBadGeometryType
	KindBadEncodingMethod
)

func (k Kind) String() string {
	switch k {
	case KindBadMagic:
		return "bad magic"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindTruncated:
		return "truncated stream"
	case KindBadAttribute:
		return "bad attribute"
	case KindBadGeometryType:
		return "bad geometry type"
	case KindBadEncodingMethod:
		return "bad encoding method"
	default:
		return "invalid"
	}
}

// Error is the container package's error type: a Kind for programmatic
// matching, a human message, and the byte offset in the stream where the
// problem was detected (0 for encode-side/pre-stream errors).
type Error struct {
	Kind    Kind
	Message string
	Offset  int
}

func (e *Error) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("container: %s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("container: %s: %s", e.Kind, e.Message)
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, &container.Error{Kind: container.KindBadMagic}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind Kind, offset int, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Message: msg}
}
