package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Resolve turns a host and port into a peer address. IPv4 addresses are preferred when
// the name resolves to both families. Resolution blocks, so it must be done before a
// connection is ever ticked.
func Resolve(ctx context.Context, host string, port uint16) (netip.AddrPort, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(addr, port), nil
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, err
	}

	if len(addrs) == 0 {
		return netip.AddrPort{}, fmt.Errorf("%s: no addresses found", host)
	}

	chosen := addrs[0]
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			chosen = addr
			break
		}
	}

	return netip.AddrPortFrom(chosen.Unmap(), port), nil
}

func zoneID(zone string) uint32 {
	if len(zone) == 0 {
		return 0
	}

	if id, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(id)
	}

	ifc, err := net.InterfaceByName(zone)
	if err != nil {
		return 0
	}

	return uint32(ifc.Index)
}
