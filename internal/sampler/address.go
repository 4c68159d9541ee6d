package sampler

import (
	"context"
	"net"
	"net/netip"
	"slices"

	"github.com/shirou/gopsutil/v4/host"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// UnknownInstance is used as the instance label when no address resolves.
const UnknownInstance = "unknown"

// ResolveInstanceAddress returns a best-effort IPv4 address identifying this
// host. The hostname is resolved first; failing that, the first address of an
// up, non-loopback interface is used.
func ResolveInstanceAddress(ctx context.Context) (string, bool) {
	if addr, ok := resolveHostname(ctx, net.DefaultResolver); ok {
		return addr, true
	}
	return interfaceAddress(ctx)
}

// InstanceLabel returns ResolveInstanceAddress or UnknownInstance.
func InstanceLabel(ctx context.Context) string {
	if addr, ok := ResolveInstanceAddress(ctx); ok {
		return addr
	}
	return UnknownInstance
}

type ipResolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

func resolveHostname(ctx context.Context, resolver ipResolver) (string, bool) {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info.Hostname == "" {
		return "", false
	}

	addrs, err := resolver.LookupNetIP(ctx, "ip4", info.Hostname)
	if err != nil {
		return "", false
	}
	return firstIPv4(addrs)
}

func interfaceAddress(ctx context.Context) (string, bool) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return "", false
	}
	return pickInterfaceAddress(ifaces)
}

func pickInterfaceAddress(ifaces psnet.InterfaceStatList) (string, bool) {
	for _, iface := range ifaces {
		if !slices.Contains(iface.Flags, "up") || slices.Contains(iface.Flags, "loopback") {
			continue
		}

		var addrs []netip.Addr
		for _, a := range iface.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			addrs = append(addrs, prefix.Addr())
		}
		if addr, ok := firstIPv4(addrs); ok {
			return addr, true
		}
	}
	return "", false
}

func firstIPv4(addrs []netip.Addr) (string, bool) {
	for _, addr := range addrs {
		addr = addr.Unmap()
		if addr.Is4() {
			return addr.String(), true
		}
	}
	return "", false
}
