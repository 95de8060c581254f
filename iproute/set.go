package iproute

import (
	"net/netip"
	"sort"
)

// Set is a de-duplicating collection of routes. Membership is decided by full
// value equality: prefix address, prefix length and gateway all participate,
// so inserting the same route twice leaves a single element.
type Set map[Route]struct{}

// NewSet constructs a set from the passed routes, collapsing duplicates.
func NewSet(routes ...Route) Set {
	s := make(Set, len(routes))
	for _, route := range routes {
		s.Add(route)
	}

	return s
}

// Add inserts a route into the set.
func (s Set) Add(route Route) {
	s[route] = struct{}{}
}

// Contains reports whether the set holds a route equal to the one passed.
func (s Set) Contains(route Route) bool {
	_, ok := s[route]
	return ok
}

// Size returns the number of distinct routes in the set.
func (s Set) Size() int {
	return len(s)
}

// Copy returns a shallow copy of the set.
func (s Set) Copy() Set {
	c := make(Set, len(s))
	for route := range s {
		c.Add(route)
	}

	return c
}

// Equal reports whether both sets hold exactly the same routes, regardless of
// iteration order.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}

	for route := range s {
		if !other.Contains(route) {
			return false
		}
	}

	return true
}

// Sorted returns the routes ordered by prefix address, prefix length and
// gateway. Map iteration has no stable order; the sorted form is what goes on
// the wire so that equal sets always serialize to identical bytes.
func (s Set) Sorted() []Route {
	routes := make([]Route, 0, len(s))
	for route := range s {
		routes = append(routes, route)
	}

	sort.Slice(routes, func(i, j int) bool {
		return compareRoutes(routes[i], routes[j]) < 0
	})

	return routes
}

// compareRoutes imposes a total order over routes. A gateway-less route sorts
// before one with a gateway on the same prefix since the zero Addr compares
// below every valid address.
func compareRoutes(a, b Route) int {
	if c := a.Prefix.Addr().Compare(b.Prefix.Addr()); c != 0 {
		return c
	}

	if a.Prefix.Bits() != b.Prefix.Bits() {
		return a.Prefix.Bits() - b.Prefix.Bits()
	}

	gwA := a.Gateway.UnwrapOr(netip.Addr{})
	gwB := b.Gateway.UnwrapOr(netip.Addr{})

	return gwA.Compare(gwB)
}
