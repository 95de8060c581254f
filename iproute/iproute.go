package iproute

import (
	"fmt"
	"net/netip"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Route associates a reachable network prefix with the gateway through which
// it should be reached. A route without a gateway advertises a prefix that is
// directly reachable at the advertising peer.
type Route struct {
	// Prefix is the advertised network.
	Prefix netip.Prefix

	// Gateway is the next hop for the prefix, if one is advertised. When
	// present, it is always the same address family as the prefix.
	Gateway fn.Option[netip.Addr]
}

// NewRoute returns a gateway-less route for the given prefix. IPv4-mapped
// IPv6 addresses are unmapped so that a route compares equal to its canonical
// IPv4 form.
func NewRoute(prefix netip.Prefix) (Route, error) {
	unmapped := netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits())
	if !unmapped.IsValid() {
		return Route{}, fmt.Errorf("invalid prefix: %v", prefix)
	}

	return Route{
		Prefix:  unmapped,
		Gateway: fn.None[netip.Addr](),
	}, nil
}

// NewRouteWithGateway returns a route for the given prefix reachable through
// the given gateway. The gateway must belong to the same address family as
// the prefix; this is the only place the family invariant is checked, so a
// Route built through the constructors never carries a mismatched pair.
func NewRouteWithGateway(prefix netip.Prefix, gateway netip.Addr) (Route,
	error) {

	route, err := NewRoute(prefix)
	if err != nil {
		return Route{}, err
	}

	gateway = gateway.Unmap()
	if !gateway.IsValid() {
		return Route{}, fmt.Errorf("invalid gateway: %v", gateway)
	}

	if gateway.Is4() != route.Prefix.Addr().Is4() {
		return Route{}, fmt.Errorf("gateway %v does not match the "+
			"address family of prefix %v", gateway, prefix)
	}

	route.Gateway = fn.Some(gateway)

	return route, nil
}

// IsIPv6 reports whether the route carries an IPv6 prefix.
func (r Route) IsIPv6() bool {
	return r.Prefix.Addr().Is6()
}

// String returns a human readable rendering of the route.
func (r Route) String() string {
	if r.Gateway.IsSome() {
		return fmt.Sprintf("%v via %v", r.Prefix,
			r.Gateway.UnwrapOr(netip.Addr{}))
	}

	return r.Prefix.String()
}
