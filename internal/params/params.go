// Package params synthesizes the per-client network parameters of a
// WireGuard config. Randomness here is for diversity, not secrecy, so a
// plain math/rand source is used.
package params

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Defaults of the active build path.
const (
	DefaultDNS          = "1.1.1.1, 1.0.0.1"
	DefaultAllowedIPs   = "0.0.0.0/0, ::/0"
	DefaultKeepalive    = 25
	DefaultPrefixLength = 24

	minRandomKeepalive = 60
	maxRandomKeepalive = 660
)

// NetworkParameters are the non-key values of a client config.
type NetworkParameters struct {
	Address             string
	DNS                 string
	Endpoint            string
	AllowedIPs          string
	PersistentKeepalive int
}

// Policy decides which parameters are fixed and which are randomized.
type Policy struct {
	DNS        string
	AllowedIPs string
	Keepalive  int
	// Endpoint, when set, replaces the random host:port.
	Endpoint     string
	PrefixLength int

	RandomDNS        bool
	RandomAllowedIPs bool
	RandomKeepalive  bool
}

// DefaultPolicy returns fixed DNS, AllowedIPs and keepalive with a random
// address and endpoint.
func DefaultPolicy() Policy {
	return Policy{
		DNS:          DefaultDNS,
		AllowedIPs:   DefaultAllowedIPs,
		Keepalive:    DefaultKeepalive,
		PrefixLength: DefaultPrefixLength,
	}
}

// Generator draws random network parameters. It is safe for concurrent use.
type Generator struct {
	mu           sync.Mutex
	rng          *rand.Rand
	prefixLength int
}

// NewGenerator creates a generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewGeneratorWithSource creates a generator over src (deterministic tests).
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{
		rng:          rand.New(src),
		prefixLength: DefaultPrefixLength,
	}
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *Generator) octets() string {
	parts := make([]string, 4)
	for i := range parts {
		parts[i] = strconv.Itoa(g.intN(256))
	}
	return strings.Join(parts, ".")
}

// RandomAddress returns four random octets with the /24 prefix.
// No check is made against addresses already handed out.
func (g *Generator) RandomAddress() string {
	return g.randomAddressWithPrefix(g.prefixLength)
}

func (g *Generator) randomAddressWithPrefix(prefix int) string {
	return fmt.Sprintf("%s/%d", g.octets(), prefix)
}

// RandomEndpointHost returns four random octets in dotted form. Reserved and
// non-routable ranges are not excluded.
func (g *Generator) RandomEndpointHost() string {
	return g.octets()
}

// RandomPort returns a port in [0, 65536). 0 is possible here but not in a
// configured endpoint (see common.ValidateEndpoint).
func (g *Generator) RandomPort() int {
	return g.intN(65536)
}

// RandomKeepalive returns a keepalive interval in [60, 660) seconds.
func (g *Generator) RandomKeepalive() int {
	return minRandomKeepalive + g.intN(maxRandomKeepalive-minRandomKeepalive)
}

// RandomDNSPair returns two random addresses joined by ", ".
func (g *Generator) RandomDNSPair() string {
	return g.RandomAddress() + ", " + g.RandomAddress()
}

// RandomIPRangePair returns two random CIDRs joined by ", ".
func (g *Generator) RandomIPRangePair() string {
	return g.RandomAddress() + ", " + g.RandomAddress()
}

// Generate builds the parameters for one client according to policy.
func (g *Generator) Generate(policy Policy) NetworkParameters {
	prefix := policy.PrefixLength
	if prefix <= 0 || prefix > 32 {
		prefix = g.prefixLength
	}

	p := NetworkParameters{
		Address:             g.randomAddressWithPrefix(prefix),
		DNS:                 policy.DNS,
		AllowedIPs:          policy.AllowedIPs,
		PersistentKeepalive: policy.Keepalive,
	}

	if policy.Endpoint != "" {
		p.Endpoint = policy.Endpoint
	} else {
		p.Endpoint = fmt.Sprintf("%s:%d", g.RandomEndpointHost(), g.RandomPort())
	}

	if policy.RandomDNS {
		p.DNS = g.RandomDNSPair()
	}
	if policy.RandomAllowedIPs {
		p.AllowedIPs = g.RandomIPRangePair()
	}
	if policy.RandomKeepalive {
		p.PersistentKeepalive = g.RandomKeepalive()
	}

	return p
}
