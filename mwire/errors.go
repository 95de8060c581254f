package mwire

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned by the fixed-buffer encoding path when the
	// destination buffer is too small for the header, the version field,
	// or the route record about to be written. The check always happens
	// before the offending write, so bytes written for prior records are
	// left intact.
	ErrCapacity = errors.New("insufficient buffer capacity")

	// ErrTruncatedRecord is returned by the decoder when the source has
	// fewer bytes than required for the field currently being read. The
	// whole parse is aborted; no partial route set is ever surfaced.
	ErrTruncatedRecord = errors.New("route record truncated")

	// ErrUnknownRouteType is returned when a route descriptor byte falls
	// outside the four recognized values. Decoding cannot recover a
	// record boundary from an unknown descriptor, since the record width
	// depends on the address family it encodes.
	ErrUnknownRouteType = errors.New("unknown route type")
)

// ErrorCapacity wraps ErrCapacity with the sizes involved.
func ErrorCapacity(need, have int) error {
	return fmt.Errorf("%w: need %d bytes, %d available", ErrCapacity,
		need, have)
}

// ErrorTruncatedRecord wraps ErrTruncatedRecord, naming the field whose read
// ran past the end of the payload.
func ErrorTruncatedRecord(field string, need, have int) error {
	return fmt.Errorf("%w: not enough bytes for %s, need %d, have %d",
		ErrTruncatedRecord, field, need, have)
}

// ErrorUnknownRouteType wraps ErrUnknownRouteType with the offending byte.
func ErrorUnknownRouteType(t routeType) error {
	return fmt.Errorf("%w: 0x%02x", ErrUnknownRouteType, uint8(t))
}
