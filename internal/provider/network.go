// Network provider: connection type and reachability.
// Uses gopsutil for cross-platform interface listing.
package provider

import (
	"context"
	"net/netip"
	"strings"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/devicescope/internal/models"
)

var networkKeys = []string{
	"Connection Type", "Is Connected", "Is Internet Reachable",
	"Network Error",
}

// interfaceLister is satisfied by gopsutil's net.InterfacesWithContext.
type interfaceLister func(ctx context.Context) (net.InterfaceStatList, error)

// NetworkProvider derives connection attributes from the interface table.
type NetworkProvider struct {
	list interfaceLister
}

// NewNetworkProvider creates a new network provider.
func NewNetworkProvider() *NetworkProvider {
	return &NetworkProvider{list: net.InterfacesWithContext}
}

// Name returns the provider identifier.
func (n *NetworkProvider) Name() string { return "network" }

// Keys returns the attribute keys owned by this provider.
func (n *NetworkProvider) Keys() []string { return append([]string(nil), networkKeys...) }

// Query inspects the interface table. It never touches the network.
func (n *NetworkProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	ifaces, err := n.list(ctx)
	if err != nil {
		return nil, err
	}
	state := classifyInterfaces(ifaces)

	var r models.ProviderResult
	r.AddText("Connection Type", state.connectionType)
	r.AddText("Is Connected", yesNo(state.connected))
	r.AddText("Is Internet Reachable", yesNo(state.globalAddress))
	return r, nil
}

// Fallback reports the error message under "Network Error".
func (n *NetworkProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("Network Error", err.Error())
}

// IsAvailable returns true; interface listing works on all platforms.
func (n *NetworkProvider) IsAvailable() bool { return true }

type networkState struct {
	connectionType string
	connected      bool
	globalAddress  bool
}

// classifyInterfaces picks the first active, non-loopback interface that holds
// an address and names its connection type after the interface name.
func classifyInterfaces(ifaces net.InterfaceStatList) networkState {
	state := networkState{connectionType: "none"}
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		var addressed, global bool
		for _, addr := range iface.Addrs {
			prefix, err := netip.ParsePrefix(addr.Addr)
			if err != nil {
				continue
			}
			ip := prefix.Addr()
			if ip.IsLoopback() {
				continue
			}
			addressed = true
			// Private ranges count too: they usually reach out through NAT.
			if ip.IsGlobalUnicast() {
				global = true
			}
		}
		if !addressed {
			continue
		}
		if !state.connected {
			state.connectionType = interfaceKind(iface.Name)
			state.connected = true
		}
		state.globalAddress = state.globalAddress || global
	}
	return state
}

func interfaceKind(name string) string {
	switch {
	case strings.HasPrefix(name, "wl"), strings.HasPrefix(name, "wifi"), strings.Contains(strings.ToLower(name), "wi-fi"):
		return "wifi"
	case strings.HasPrefix(name, "wwan"), strings.HasPrefix(name, "rmnet"), strings.HasPrefix(name, "pdp_ip"):
		return "cellular"
	case strings.HasPrefix(name, "en"), strings.HasPrefix(name, "eth"), strings.HasPrefix(strings.ToLower(name), "ethernet"):
		return "ethernet"
	case strings.HasPrefix(name, "tun"), strings.HasPrefix(name, "wg"), strings.HasPrefix(name, "utun"):
		return "vpn"
	default:
		return "other"
	}
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
