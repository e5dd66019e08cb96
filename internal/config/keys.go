package config

// Configuration keys
const (
	// Tools and backends
	KeyWGTool         = "WG_TOOL"
	KeyKeyBackend     = "WG_KEY_BACKEND"   // tool or native
	KeyApplyBackend   = "WG_APPLY_BACKEND" // tool, netlink or none
	KeyCommandTimeout = "WG_COMMAND_TIMEOUT"

	// Interface and storage
	KeyWGInterface = "WG_INTERFACE"
	KeyConfigDir   = "WG_CONFIG_DIR"

	// Network parameters
	KeyDNS           = "WG_DNS"
	KeyAllowedIPs    = "WG_ALLOWED_IPS"
	KeyKeepalive     = "WG_KEEPALIVE"
	KeyEndpoint      = "WG_ENDPOINT" // empty means random host:port
	KeyAddressPrefix = "WG_ADDRESS_PREFIX"

	// Randomizers, off by default
	KeyRandomDNS        = "WG_RANDOM_DNS"
	KeyRandomAllowedIPs = "WG_RANDOM_ALLOWED_IPS"
	KeyRandomKeepalive  = "WG_RANDOM_KEEPALIVE"
)

// Default values for configuration keys
var Defaults = map[string]string{
	KeyWGTool:           "wg",
	KeyKeyBackend:       "tool",
	KeyApplyBackend:     "tool",
	KeyCommandTimeout:   "10s",
	KeyWGInterface:      "wg0",
	KeyConfigDir:        "./wireguard-configs",
	KeyDNS:              "1.1.1.1, 1.0.0.1",
	KeyAllowedIPs:       "0.0.0.0/0, ::/0",
	KeyKeepalive:        "25",
	KeyEndpoint:         "",
	KeyAddressPrefix:    "24",
	KeyRandomDNS:        "false",
	KeyRandomAllowedIPs: "false",
	KeyRandomKeepalive:  "false",
}

// KnownKeys returns the configuration keys in display order.
func KnownKeys() []string {
	return []string{
		KeyWGTool,
		KeyWGInterface,
		KeyConfigDir,
		KeyKeyBackend,
		KeyApplyBackend,
		KeyCommandTimeout,
		KeyDNS,
		KeyAllowedIPs,
		KeyKeepalive,
		KeyEndpoint,
		KeyAddressPrefix,
		KeyRandomDNS,
		KeyRandomAllowedIPs,
		KeyRandomKeepalive,
	}
}

// IsKnownKey reports whether key is one of the configuration keys.
func IsKnownKey(key string) bool {
	_, ok := Defaults[key]
	return ok
}
