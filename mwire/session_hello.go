package mwire

import (
	"bytes"
	"io"
)

// SessionHello is the liveness handshake exchanged when two peers first see
// each other. The soliciting side sends a request carrying a random unique
// number; the answering side echoes that number back in a response, proving
// it actually received the request.
type SessionHello struct {
	// UniqueNumber is a random value chosen by the requesting peer. A
	// response must echo the value from the request it answers.
	UniqueNumber uint32

	// Request is true on the soliciting side of the exchange.
	Request bool
}

// NewSessionHelloRequest creates a hello request carrying the given unique
// number.
func NewSessionHelloRequest(unique uint32) *SessionHello {
	return &SessionHello{
		UniqueNumber: unique,
		Request:      true,
	}
}

// NewSessionHelloResponse creates the response echoing a previously received
// request's unique number.
func NewSessionHelloResponse(unique uint32) *SessionHello {
	return &SessionHello{
		UniqueNumber: unique,
	}
}

// A compile time check to ensure SessionHello implements the mwire.Message
// interface.
var _ Message = (*SessionHello)(nil)

// Decode deserializes a serialized SessionHello message stored in the passed
// io.Reader observing the specified protocol version.
//
// This is part of the mwire.Message interface.
func (c *SessionHello) Decode(r io.Reader, pver uint32) error {
	return ReadElements(r,
		&c.UniqueNumber,
		&c.Request,
	)
}

// Encode serializes the target SessionHello into the passed buffer observing
// the protocol version specified.
//
// This is part of the mwire.Message interface.
func (c *SessionHello) Encode(w *bytes.Buffer, pver uint32) error {
	return WriteElements(w,
		c.UniqueNumber,
		c.Request,
	)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the mwire.Message interface.
func (c *SessionHello) MsgType() MessageType {
	return MsgSessionHello
}
