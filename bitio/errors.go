package bitio

import "errors"

var (
	// ErrTruncated is returned whenever a decode read would run past the end
	// of the borrowed byte slice.
	ErrTruncated = errors.New("bitio: truncated buffer")

	// ErrBitDecodingActive is returned by StartBitDecoding when a bit
	// decoding session is already open.
	ErrBitDecodingActive = errors.New("bitio: bit decoding already active")

	// ErrBitDecodingInactive is returned by DecodeLeastSignificantBits32 or
	// EndBitDecoding when no bit decoding session is open.
	ErrBitDecodingInactive = errors.New("bitio: bit decoding not active")

	// ErrInvalidBitCount is returned for a bit width outside [0, 32].
	ErrInvalidBitCount = errors.New("bitio: invalid bit count")

	// ErrVarintOverflow is returned when a varint would not fit the target
	// width (more than 10 continuation groups for a 64-bit value).
	ErrVarintOverflow = errors.New("bitio: varint overflow")
)
