package mwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType is the unique 1 byte integer that indicates the type of message
// on the wire. All messages share a fixed-size header consisting of the
// message type followed by the 2-byte big-endian length of the payload. The
// header carries no checksum as the protocol is intended to be encapsulated
// within an authenticated session transport.
type MessageType uint8

// The currently defined message types within this version of the control
// protocol.
const (
	MsgSessionHello MessageType = 0x00
	MsgRoutes       MessageType = 0x01
	MsgKeepalive    MessageType = 0x02
)

const (
	// HeaderLength is the size of the envelope header that precedes every
	// message payload: 1 byte type plus 2 bytes payload length.
	HeaderLength = 3

	// MaxMsgBody is the largest payload any message is allowed to carry,
	// bounded by the 2-byte length field of the envelope header.
	MaxMsgBody = 65535
)

// ErrorEncodeMessage is used when failed to encode the message payload.
func ErrorEncodeMessage(err error) error {
	return fmt.Errorf("failed to encode message to buffer, got %w", err)
}

// ErrorWriteHeader is used when failed to write the message header.
func ErrorWriteHeader(err error) error {
	return fmt.Errorf("failed to write message header, got %w", err)
}

// ErrorPayloadTooLarge is used when the payload size exceeds the MaxMsgBody.
func ErrorPayloadTooLarge(size int) error {
	return fmt.Errorf(
		"message payload is too large - encoded %d bytes, "+
			"but maximum message payload is %d bytes",
		size, MaxMsgBody,
	)
}

// String returns the string representation of message type.
func (t MessageType) String() string {
	switch t {
	case MsgSessionHello:
		return "SessionHello"
	case MsgRoutes:
		return "Routes"
	case MsgKeepalive:
		return "Keepalive"
	default:
		return "<unknown>"
	}
}

// UnknownMessage is an implementation of the error interface that allows the
// creation of an error in response to an unknown message.
type UnknownMessage struct {
	messageType MessageType
}

// Error returns a human readable string describing the error.
//
// This is part of the error interface.
func (u *UnknownMessage) Error() string {
	return fmt.Sprintf("unable to parse message of unknown type: %v",
		u.messageType)
}

// Serializable is an interface which defines a wire serializable object.
type Serializable interface {
	// Decode reads the bytes stream and converts it to the object.
	Decode(io.Reader, uint32) error

	// Encode converts object to the bytes stream and write it into the
	// write buffer.
	Encode(*bytes.Buffer, uint32) error
}

// Message is an interface that defines a control protocol message. The
// interface is general in order to allow implementing types full control over
// the representation of its data.
type Message interface {
	Serializable
	MsgType() MessageType
}

// makeEmptyMessage creates a new empty message of the proper concrete type
// based on the passed message type.
func makeEmptyMessage(msgType MessageType) (Message, error) {
	var msg Message

	switch msgType {
	case MsgSessionHello:
		msg = &SessionHello{}
	case MsgRoutes:
		msg = &Routes{}
	case MsgKeepalive:
		msg = &Keepalive{}
	default:
		return nil, &UnknownMessage{msgType}
	}

	return msg, nil
}

// WriteHeader frames an already-written payload of payloadLen bytes starting
// at b[HeaderLength:], filling in the message type and payload length ahead
// of it. The buffer capacity is validated against the payload length before
// anything is written. The total number of bytes occupied by the framed
// message is returned.
func WriteHeader(b []byte, msgType MessageType, payloadLen int) (int, error) {
	if payloadLen > MaxMsgBody {
		return 0, ErrorPayloadTooLarge(payloadLen)
	}

	if len(b) < HeaderLength+payloadLen {
		return 0, ErrorCapacity(HeaderLength+payloadLen, len(b))
	}

	b[0] = byte(msgType)
	binary.BigEndian.PutUint16(b[1:HeaderLength], uint16(payloadLen))

	return HeaderLength + payloadLen, nil
}

// WriteMessage writes a Message to a buffer including the necessary header
// information and returns the number of bytes written. If any error is
// encountered, the buffer passed will be reset to its original state since we
// don't want any broken bytes left. In other words, either all or none of the
// message bytes will be written to the buffer.
//
// NOTE: this method is not concurrent safe.
func WriteMessage(buf *bytes.Buffer, msg Message, pver uint32) (int, error) {
	// Record the size of the bytes already written in buffer.
	oldByteSize := buf.Len()

	// cleanBrokenBytes is a helper closure that helps reset the buffer to
	// its original state. It truncates all the bytes written in current
	// scope.
	var cleanBrokenBytes = func(b *bytes.Buffer) int {
		b.Truncate(oldByteSize)
		return 0
	}

	// The header carries the payload length, so the payload is encoded
	// into an intermediate buffer first.
	var payload bytes.Buffer
	if err := msg.Encode(&payload, pver); err != nil {
		return cleanBrokenBytes(buf), ErrorEncodeMessage(err)
	}

	// Enforce the maximum message payload imposed by the 2-byte length
	// field of the header.
	lenp := payload.Len()
	if lenp > MaxMsgBody {
		return cleanBrokenBytes(buf), ErrorPayloadTooLarge(lenp)
	}

	var header [HeaderLength]byte
	header[0] = byte(msg.MsgType())
	binary.BigEndian.PutUint16(header[1:], uint16(lenp))
	if _, err := buf.Write(header[:]); err != nil {
		return cleanBrokenBytes(buf), ErrorWriteHeader(err)
	}

	if _, err := buf.Write(payload.Bytes()); err != nil {
		return cleanBrokenBytes(buf), ErrorEncodeMessage(err)
	}

	log.Tracef("Wrote message %v (%d byte payload)", msg.MsgType(), lenp)

	return buf.Len() - oldByteSize, nil
}

// ReadMessage reads, validates, and parses the next message from r for the
// provided protocol version. The payload read is bounded by the length
// declared in the header, so a decoder can never consume bytes belonging to a
// subsequent message on the same stream.
func ReadMessage(r io.Reader, pver uint32) (Message, error) {
	var header [HeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	msgType := MessageType(header[0])
	payloadLen := binary.BigEndian.Uint16(header[1:HeaderLength])

	// Now that we know the target message type, we can create the proper
	// empty message type and decode the message into it.
	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	if err := msg.Decode(bytes.NewReader(payload), pver); err != nil {
		return nil, err
	}

	log.Tracef("Read message %v (%d byte payload)", msgType, payloadLen)

	return msg, nil
}
