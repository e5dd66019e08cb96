package system

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Network answers the host-level questions the doctor command asks.
type Network struct {
	resolver *net.Resolver
}

// NewNetwork creates a new Network instance
func NewNetwork() *Network {
	return &Network{resolver: net.DefaultResolver}
}

// InterfaceExists reports whether a network interface called name exists.
func (n *Network) InterfaceExists(name string) (bool, error) {
	if _, err := net.InterfaceByName(name); err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up interface %s: %w", name, err)
	}
	return true, nil
}

// InterfaceAddresses returns the CIDR addresses assigned to an interface.
func (n *Network) InterfaceAddresses(name string) ([]string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get interface %s: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses for %s: %w", name, err)
	}

	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, addr.String())
	}
	return out, nil
}

// ResolveHost resolves a hostname to IP addresses. IP literals are returned
// unchanged without a lookup.
func (n *Network) ResolveHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}

	addrs, err := n.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	return addrs, nil
}
