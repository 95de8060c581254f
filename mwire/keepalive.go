package mwire

import (
	"bytes"
	"io"
)

// KeepalivePayload is the opaque padding carried by a Keepalive message. The
// padding lets a sender mask the timing signature of its real traffic; the
// receiver discards it.
type KeepalivePayload []byte

// MaxKeepalivePayload is the largest padding a Keepalive may carry, leaving
// room for the 2-byte length prefix within the maximum message body.
const MaxKeepalivePayload = MaxMsgBody - 2

// Keepalive is sent periodically over an otherwise idle session to keep NAT
// mappings warm and to let the remote peer distinguish a quiet link from a
// dead one.
type Keepalive struct {
	// Padding is opaque filler of the sender's choosing.
	Padding KeepalivePayload
}

// NewKeepalive creates a new Keepalive message carrying the given padding.
func NewKeepalive(padding KeepalivePayload) *Keepalive {
	return &Keepalive{
		Padding: padding,
	}
}

// A compile time check to ensure Keepalive implements the mwire.Message
// interface.
var _ Message = (*Keepalive)(nil)

// Decode deserializes a serialized Keepalive message stored in the passed
// io.Reader observing the specified protocol version.
//
// This is part of the mwire.Message interface.
func (c *Keepalive) Decode(r io.Reader, pver uint32) error {
	return ReadElements(r,
		&c.Padding,
	)
}

// Encode serializes the target Keepalive into the passed buffer observing
// the protocol version specified.
//
// This is part of the mwire.Message interface.
func (c *Keepalive) Encode(w *bytes.Buffer, pver uint32) error {
	return WriteElements(w,
		c.Padding,
	)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the mwire.Message interface.
func (c *Keepalive) MsgType() MessageType {
	return MsgKeepalive
}
