package mwire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/meshfabric/meshvpn/iproute"
)

// versionLen is the size of the version field that leads the payload of a
// Routes message.
const versionLen = 4

// Routes is the control message a peer sends to advertise the set of network
// prefixes it can reach, each optionally paired with the gateway the traffic
// should be forwarded through.
type Routes struct {
	// Version identifies this snapshot of the sender's route table. A
	// receiver applies an advertisement only if its version is newer than
	// the last one it accepted from that peer.
	Version uint32

	// routes is the advertised route set. It is populated exactly once,
	// either by NewRoutes or while the message is decoded off the wire,
	// and never mutated afterwards, so a decoded message can be shared
	// across goroutines without synchronization.
	routes iproute.Set
}

// NewRoutes creates a new Routes message advertising the given set.
func NewRoutes(version uint32, routes iproute.Set) *Routes {
	return &Routes{
		Version: version,
		routes:  routes,
	}
}

// A compile time check to ensure Routes implements the mwire.Message
// interface.
var _ Message = (*Routes)(nil)

// RouteSet returns the advertised route set. The set is parsed eagerly when
// the message is decoded, so calls here never touch the wire payload again.
// Callers must treat the returned set as read-only.
func (m *Routes) RouteSet() iproute.Set {
	return m.routes
}

// SerializedSize returns the exact number of payload bytes Encode will emit
// for this message.
func (m *Routes) SerializedSize() int {
	size := versionLen
	for route := range m.routes {
		size += serializedRouteSize(route)
	}

	return size
}

// Decode deserializes a serialized Routes message stored in the passed
// io.Reader observing the specified protocol version. The reader is consumed
// to EOF: the route list has no explicit count, its end is the end of the
// payload. Any malformed record aborts the parse and the message is left
// untouched, so a caller never observes a partially populated set.
//
// This is part of the mwire.Message interface.
func (m *Routes) Decode(r io.Reader, pver uint32) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(body) < versionLen {
		return ErrorTruncatedRecord("version", versionLen, len(body))
	}
	version := binary.BigEndian.Uint32(body)

	routes := iproute.NewSet()
	rest := body[versionLen:]
	for {
		route, n, ok, err := readNextRoute(rest)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		routes.Add(route)
		rest = rest[n:]
	}

	m.Version = version
	m.routes = routes

	return nil
}

// Encode serializes the target Routes into the passed buffer observing the
// protocol version specified.
//
// This is part of the mwire.Message interface.
func (m *Routes) Encode(w *bytes.Buffer, pver uint32) error {
	body := make([]byte, m.SerializedSize())
	if _, err := encodeRoutesBody(body, m.Version, m.routes); err != nil {
		return err
	}

	_, err := w.Write(body)
	return err
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the mwire.Message interface.
func (m *Routes) MsgType() MessageType {
	return MsgRoutes
}

// encodeRoutesBody writes the version field followed by each route record
// into b and returns the payload length. Routes are emitted in sorted order
// so the same set always produces the same bytes.
func encodeRoutesBody(b []byte, version uint32, routes iproute.Set) (int,
	error) {

	if len(b) < versionLen {
		return 0, ErrorCapacity(versionLen, len(b))
	}

	binary.BigEndian.PutUint32(b, version)
	n := versionLen

	for _, route := range routes.Sorted() {
		written, err := putRoute(b[n:], route)
		if err != nil {
			return 0, err
		}

		n += written
	}

	return n, nil
}

// WriteRoutes serializes a routes advertisement, envelope header included,
// into the fixed-size buffer b and returns the total number of bytes written.
// This is the allocation-free path for callers that own a preallocated send
// buffer; WriteMessage is the growable equivalent. Capacity is validated
// before every segment, so a failure part way through leaves the records
// already written intact but fails the operation as a whole.
func WriteRoutes(b []byte, version uint32, routes iproute.Set) (int, error) {
	if len(b) < HeaderLength {
		return 0, ErrorCapacity(HeaderLength, len(b))
	}

	payloadLen, err := encodeRoutesBody(b[HeaderLength:], version, routes)
	if err != nil {
		return 0, err
	}

	return WriteHeader(b, MsgRoutes, payloadLen)
}
