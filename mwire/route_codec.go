package mwire

import (
	"net/netip"

	"github.com/meshfabric/meshvpn/iproute"
)

// routeType is the single byte descriptor that identifies the address family
// of a route record and whether a gateway address follows the network
// address. It is never stored on a Route; it is recomputed from the record's
// shape on encode and used to select the decode path.
type routeType uint8

const (
	// routeTypeIPv4 denotes an IPv4 prefix with no gateway.
	routeTypeIPv4 routeType = 0x01

	// routeTypeIPv4Gateway denotes an IPv4 prefix followed by an IPv4
	// gateway address.
	routeTypeIPv4Gateway routeType = 0x02

	// routeTypeIPv6 denotes an IPv6 prefix with no gateway.
	routeTypeIPv6 routeType = 0x03

	// routeTypeIPv6Gateway denotes an IPv6 prefix followed by an IPv6
	// gateway address.
	routeTypeIPv6Gateway routeType = 0x04
)

const (
	// ipv4AddrLen is the number of bytes an IPv4 address occupies in a
	// route record.
	ipv4AddrLen = 4

	// ipv6AddrLen is the number of bytes an IPv6 address occupies in a
	// route record.
	ipv6AddrLen = 16
)

// routeTypeOf derives the wire descriptor from the shape of the record. This
// is the single source of truth for the descriptor table; the decode switch
// in readNextRoute is its inverse.
func routeTypeOf(route iproute.Route) routeType {
	hasGateway := route.Gateway.IsSome()

	if route.Prefix.Addr().Is4() {
		if hasGateway {
			return routeTypeIPv4Gateway
		}
		return routeTypeIPv4
	}

	if hasGateway {
		return routeTypeIPv6Gateway
	}
	return routeTypeIPv6
}

// serializedRouteSize returns the exact number of bytes putRoute will emit
// for the given route: descriptor, prefix length, address, and the gateway
// when one is present.
func serializedRouteSize(route iproute.Route) int {
	addrSize := ipv4AddrLen
	if route.IsIPv6() {
		addrSize = ipv6AddrLen
	}

	size := 2 + addrSize
	if route.Gateway.IsSome() {
		size += addrSize
	}

	return size
}

// addrBytes returns the fixed-width byte representation of an address for
// its family.
func addrBytes(addr netip.Addr) []byte {
	if addr.Is4() {
		b := addr.As4()
		return b[:]
	}

	b := addr.As16()
	return b[:]
}

// putRoute serializes a single route record into b and returns the number of
// bytes written. The remaining capacity is checked before the mandatory
// segment and checked again before the gateway segment, since the latter is
// conditional and only accounted for once the mandatory bytes are down.
func putRoute(b []byte, route iproute.Route) (int, error) {
	addr := addrBytes(route.Prefix.Addr())

	need := 2 + len(addr)
	if len(b) < need {
		return 0, ErrorCapacity(need, len(b))
	}

	b[0] = byte(routeTypeOf(route))
	b[1] = byte(route.Prefix.Bits())
	copy(b[2:], addr)

	written := need

	if route.Gateway.IsSome() {
		gateway := addrBytes(route.Gateway.UnwrapOr(netip.Addr{}))

		if len(b)-written < len(gateway) {
			return 0, ErrorCapacity(written+len(gateway), len(b))
		}

		copy(b[written:], gateway)
		written += len(gateway)
	}

	return written, nil
}

// readRoute parses the body of a single route record from b, the descriptor
// byte having already been consumed and resolved into the family and gateway
// flags. Each of the three reads (prefix length, address, gateway) is checked
// independently against the remaining length. The reconstructed route and the
// number of bytes consumed are returned.
func readRoute(b []byte, is6, hasGateway bool) (iproute.Route, int, error) {
	if len(b) == 0 {
		return iproute.Route{}, 0, ErrorTruncatedRecord(
			"prefix length", 1, 0,
		)
	}

	prefixLen := int(b[0])
	consumed := 1

	addrSize := ipv4AddrLen
	if is6 {
		addrSize = ipv6AddrLen
	}

	if len(b)-consumed < addrSize {
		return iproute.Route{}, 0, ErrorTruncatedRecord(
			"network address", addrSize, len(b)-consumed,
		)
	}

	addr := addrFromBytes(b[consumed:consumed+addrSize], is6)
	consumed += addrSize

	prefix := netip.PrefixFrom(addr, prefixLen)

	if !hasGateway {
		route, err := iproute.NewRoute(prefix)
		if err != nil {
			return iproute.Route{}, 0, err
		}

		return route, consumed, nil
	}

	if len(b)-consumed < addrSize {
		return iproute.Route{}, 0, ErrorTruncatedRecord(
			"gateway address", addrSize, len(b)-consumed,
		)
	}

	gateway := addrFromBytes(b[consumed:consumed+addrSize], is6)
	consumed += addrSize

	route, err := iproute.NewRouteWithGateway(prefix, gateway)
	if err != nil {
		return iproute.Route{}, 0, err
	}

	return route, consumed, nil
}

// readNextRoute reads the descriptor byte of the next route record in b and
// delegates to readRoute with the resolved family and gateway flags. An empty
// b is the normal end of the route list and is signalled by ok being false.
// An unrecognized descriptor is fatal for the whole parse.
func readNextRoute(b []byte) (iproute.Route, int, bool, error) {
	if len(b) == 0 {
		return iproute.Route{}, 0, false, nil
	}

	var (
		route iproute.Route
		n     int
		err   error
	)

	switch t := routeType(b[0]); t {
	case routeTypeIPv4, routeTypeIPv4Gateway:
		route, n, err = readRoute(
			b[1:], false, t == routeTypeIPv4Gateway,
		)

	case routeTypeIPv6, routeTypeIPv6Gateway:
		route, n, err = readRoute(
			b[1:], true, t == routeTypeIPv6Gateway,
		)

	default:
		return iproute.Route{}, 0, false, ErrorUnknownRouteType(t)
	}

	if err != nil {
		return iproute.Route{}, 0, false, err
	}

	return route, 1 + n, true, nil
}

// addrFromBytes rebuilds an address of the given family from its fixed-width
// wire form.
func addrFromBytes(b []byte, is6 bool) netip.Addr {
	if is6 {
		var a [16]byte
		copy(a[:], b)
		return netip.AddrFrom16(a)
	}

	var a [4]byte
	copy(a[:], b)
	return netip.AddrFrom4(a)
}
