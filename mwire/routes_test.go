package mwire

import (
	"bytes"
	"encoding/hex"
	"net/netip"
	"testing"

	"github.com/meshfabric/meshvpn/iproute"
	"github.com/stretchr/testify/require"
)

// mustRoute builds a gateway-less route from a prefix in CIDR notation.
func mustRoute(t *testing.T, prefix string) iproute.Route {
	t.Helper()

	route, err := iproute.NewRoute(netip.MustParsePrefix(prefix))
	require.NoError(t, err)

	return route
}

// mustGatewayRoute builds a route with a gateway from textual forms.
func mustGatewayRoute(t *testing.T, prefix, gateway string) iproute.Route {
	t.Helper()

	route, err := iproute.NewRouteWithGateway(
		netip.MustParsePrefix(prefix), netip.MustParseAddr(gateway),
	)
	require.NoError(t, err)

	return route
}

// TestRoutesWireVectors tests that known routes payloads encode to their
// exact expected bytes and decode back to the same version and set.
func TestRoutesWireVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version uint32
		routes  func(t *testing.T) iproute.Set
		payload string
	}{
		{
			name:    "ipv4 with gateway",
			version: 1,
			routes: func(t *testing.T) iproute.Set {
				return iproute.NewSet(mustGatewayRoute(
					t, "10.0.0.0/8", "10.0.0.1",
				))
			},
			payload: "0000000102080a0000000a000001",
		},
		{
			name:    "ipv6 default route without gateway",
			version: 2,
			routes: func(t *testing.T) iproute.Set {
				return iproute.NewSet(mustRoute(t, "::/0"))
			},
			payload: "000000020300" +
				"00000000000000000000000000000000",
		},
		{
			name:    "empty set",
			version: 0,
			routes: func(t *testing.T) iproute.Set {
				return iproute.NewSet()
			},
			payload: "00000000",
		},
		{
			name:    "ipv6 with gateway",
			version: 7,
			routes: func(t *testing.T) iproute.Set {
				return iproute.NewSet(mustGatewayRoute(
					t, "fd00::/64", "fd00::1",
				))
			},
			payload: "000000070440" +
				"fd000000000000000000000000000000" +
				"fd000000000000000000000000000001",
		},
		{
			name:    "multiple routes in sorted order",
			version: 3,
			routes: func(t *testing.T) iproute.Set {
				return iproute.NewSet(
					mustRoute(t, "192.168.0.0/16"),
					mustGatewayRoute(
						t, "10.0.0.0/8", "10.0.0.1",
					),
				)
			},
			payload: "00000003" +
				"02080a0000000a000001" +
				"0110c0a80000",
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			expected, err := hex.DecodeString(test.payload)
			require.NoError(t, err)

			routes := test.routes(t)

			// The encoded payload must match byte for byte.
			msg := NewRoutes(test.version, routes)
			var buf bytes.Buffer
			require.NoError(t, msg.Encode(&buf, 0))
			require.Equal(t, expected, buf.Bytes())
			require.Equal(t, len(expected), msg.SerializedSize())

			// Decoding those bytes must reproduce the version and
			// the set.
			var decoded Routes
			err = decoded.Decode(bytes.NewReader(expected), 0)
			require.NoError(t, err)
			require.Equal(t, test.version, decoded.Version)
			require.True(t, routes.Equal(decoded.RouteSet()))
		})
	}
}

// TestRoutesEnvelopeRoundTrip asserts a Routes message survives a trip
// through the full message framing.
func TestRoutesEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	routes := iproute.NewSet(
		mustGatewayRoute(t, "10.0.0.0/8", "10.0.0.1"),
		mustRoute(t, "172.16.0.0/12"),
		mustGatewayRoute(t, "fd00::/64", "fd00::1"),
	)
	msg := NewRoutes(42, routes)

	var buf bytes.Buffer
	_, err := WriteMessage(&buf, msg, 0)
	require.NoError(t, err)

	got, err := ReadMessage(&buf, 0)
	require.NoError(t, err)

	decoded, ok := got.(*Routes)
	require.True(t, ok)
	require.Equal(t, uint32(42), decoded.Version)
	require.True(t, routes.Equal(decoded.RouteSet()))
}

// TestRoutesDuplicateRecordsCollapse asserts that a payload repeating the
// same record yields a set with a single element.
func TestRoutesDuplicateRecordsCollapse(t *testing.T) {
	t.Parallel()

	record := "02080a0000000a000001"
	payload, err := hex.DecodeString("00000001" + record + record)
	require.NoError(t, err)

	var msg Routes
	require.NoError(t, msg.Decode(bytes.NewReader(payload), 0))
	require.Equal(t, 1, msg.RouteSet().Size())
	require.True(t, msg.RouteSet().Contains(
		mustGatewayRoute(t, "10.0.0.0/8", "10.0.0.1"),
	))
}

// TestRoutesUnknownRouteType asserts that a record descriptor outside the
// four recognized values aborts the parse.
func TestRoutesUnknownRouteType(t *testing.T) {
	t.Parallel()

	for _, descriptor := range []byte{0x00, 0x05, 0xff} {
		payload := append([]byte{0, 0, 0, 1}, descriptor)

		var msg Routes
		err := msg.Decode(bytes.NewReader(payload), 0)
		require.ErrorIs(t, err, ErrUnknownRouteType)
	}
}

// TestRoutesTruncation asserts that a payload cut one byte short of any field
// fails with a truncation error, while the exact length succeeds.
func TestRoutesTruncation(t *testing.T) {
	t.Parallel()

	full, err := hex.DecodeString("0000000102080a0000000a000001")
	require.NoError(t, err)

	tests := []struct {
		name string
		size int
	}{
		{name: "version cut short", size: 3},
		{name: "prefix length missing", size: 5},
		{name: "address cut short", size: 9},
		{name: "gateway cut short", size: 13},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var msg Routes
			err := msg.Decode(
				bytes.NewReader(full[:test.size]), 0,
			)
			require.ErrorIs(t, err, ErrTruncatedRecord)

			// A failed parse must not leave a partial set behind.
			require.Nil(t, msg.RouteSet())
		})
	}

	// The exact length parses cleanly.
	var msg Routes
	require.NoError(t, msg.Decode(bytes.NewReader(full), 0))
	require.Equal(t, 1, msg.RouteSet().Size())
}

// TestWriteRoutesCapacity walks the encoder along every capacity boundary: a
// buffer one byte short of the header, the version field, a record's
// mandatory segment or its gateway segment must fail, while the exact size
// succeeds.
func TestWriteRoutesCapacity(t *testing.T) {
	t.Parallel()

	routes := iproute.NewSet(mustGatewayRoute(t, "10.0.0.0/8", "10.0.0.1"))

	// Header (3) + version (4) + record (2 + 4 + 4).
	const totalSize = 17

	for _, short := range []int{2, 6, 12, 16} {
		_, err := WriteRoutes(make([]byte, short), 1, routes)
		require.ErrorIs(t, err, ErrCapacity, "size %d", short)
	}

	buf := make([]byte, totalSize)
	n, err := WriteRoutes(buf, 1, routes)
	require.NoError(t, err)
	require.Equal(t, totalSize, n)

	expected, err := hex.DecodeString(
		"01000e" + "0000000102080a0000000a000001",
	)
	require.NoError(t, err)
	require.Equal(t, expected, buf)
}

// TestWriteRoutesEmptySet asserts the fixed-buffer path frames an empty
// advertisement as just the version field.
func TestWriteRoutesEmptySet(t *testing.T) {
	t.Parallel()

	buf := make([]byte, HeaderLength+versionLen)
	n, err := WriteRoutes(buf, 0, iproute.NewSet())
	require.NoError(t, err)
	require.Equal(t, HeaderLength+versionLen, n)

	expected, err := hex.DecodeString("010004" + "00000000")
	require.NoError(t, err)
	require.Equal(t, expected, buf)
}

// TestRoutesRepeatedReads asserts repeated RouteSet calls serve the same
// decoded content without another parse.
func TestRoutesRepeatedReads(t *testing.T) {
	t.Parallel()

	payload, err := hex.DecodeString("0000000102080a0000000a000001")
	require.NoError(t, err)

	var msg Routes
	require.NoError(t, msg.Decode(bytes.NewReader(payload), 0))

	first := msg.RouteSet()
	second := msg.RouteSet()
	require.True(t, first.Equal(second))
	require.Equal(t, uint32(1), msg.Version)
}
