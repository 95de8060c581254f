package mwire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// frameWithMsgType wraps raw fuzz data in an envelope header so it parses as
// a payload of the given message type.
func frameWithMsgType(data []byte, msgType MessageType) []byte {
	frame := make([]byte, 0, HeaderLength+len(data))
	frame = append(frame, byte(msgType))

	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(data)))
	frame = append(frame, l[:]...)

	return append(frame, data...)
}

// harness performs the actual fuzz testing of the appropriate wire message.
// Any payload the decoder accepts must re-encode and decode again to an equal
// message; payloads the decoder rejects are simply skipped.
func harness(t *testing.T, data []byte, msgType MessageType) {
	t.Helper()

	if len(data) > MaxMsgBody {
		return
	}

	r := bytes.NewReader(frameWithMsgType(data, msgType))

	msg, err := ReadMessage(r, 0)
	if err != nil {
		return
	}

	// We will serialize the message into a new bytes buffer.
	var b bytes.Buffer
	if _, err := WriteMessage(&b, msg, 0); err != nil {
		t.Fatal(err)
	}

	// Deserialize the message from the serialized bytes buffer, and then
	// assert that the original message is equal to the newly deserialized
	// message.
	newMsg, err := ReadMessage(&b, 0)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, msg, newMsg)
}

func FuzzRoutes(f *testing.F) {
	f.Add([]byte{0x00, 0x00, 0x00, 0x01, 0x02, 0x08, 0x0a, 0x00, 0x00,
		0x00, 0x0a, 0x00, 0x00, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		harness(t, data, MsgRoutes)
	})
}

func FuzzSessionHello(f *testing.F) {
	f.Add([]byte{0x01, 0x02, 0x03, 0x04, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		harness(t, data, MsgSessionHello)
	})
}

func FuzzKeepalive(f *testing.F) {
	f.Add([]byte{0x00, 0x02, 0xaa, 0xbb})

	f.Fuzz(func(t *testing.T, data []byte) {
		harness(t, data, MsgKeepalive)
	})
}
