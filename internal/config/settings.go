package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zoro11031/wg-provision/internal/apply"
	"github.com/zoro11031/wg-provision/internal/common"
	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/params"
)

// Settings is the validated, typed view of a Config.
type Settings struct {
	Tool           string
	Interface      string
	ConfigDir      string
	KeyBackend     string
	ApplyBackend   string
	CommandTimeout time.Duration
	Policy         params.Policy
}

// LoadSettings reads every key from cfg (falling back to Defaults) and
// validates the result. All problems are reported together.
func LoadSettings(cfg *Config) (Settings, error) {
	get := func(key string) string {
		return strings.TrimSpace(cfg.GetOrDefault(key, ""))
	}

	var errs []error
	bad := func(key string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", key, err))
	}

	s := Settings{
		Tool:         get(KeyWGTool),
		Interface:    get(KeyWGInterface),
		ConfigDir:    get(KeyConfigDir),
		KeyBackend:   get(KeyKeyBackend),
		ApplyBackend: get(KeyApplyBackend),
		Policy: params.Policy{
			DNS:        get(KeyDNS),
			AllowedIPs: get(KeyAllowedIPs),
			Endpoint:   get(KeyEndpoint),
		},
	}

	if s.Tool == "" {
		bad(KeyWGTool, errors.New("value cannot be empty"))
	}
	if err := common.ValidateInterfaceName(s.Interface); err != nil {
		bad(KeyWGInterface, err)
	}
	if err := common.ValidateNotEmpty(s.ConfigDir); err != nil {
		bad(KeyConfigDir, err)
	}

	switch s.KeyBackend {
	case keys.BackendTool, keys.BackendNative:
	default:
		bad(KeyKeyBackend, fmt.Errorf("unknown backend %q", s.KeyBackend))
	}
	switch s.ApplyBackend {
	case apply.BackendTool, apply.BackendNetlink, apply.BackendNone:
	default:
		bad(KeyApplyBackend, fmt.Errorf("unknown backend %q", s.ApplyBackend))
	}

	if d, err := time.ParseDuration(get(KeyCommandTimeout)); err != nil {
		bad(KeyCommandTimeout, err)
	} else if d <= 0 {
		bad(KeyCommandTimeout, errors.New("must be positive"))
	} else {
		s.CommandTimeout = d
	}

	var err error
	if s.Policy.RandomDNS, err = parseBool(get(KeyRandomDNS)); err != nil {
		bad(KeyRandomDNS, err)
	}
	if s.Policy.RandomAllowedIPs, err = parseBool(get(KeyRandomAllowedIPs)); err != nil {
		bad(KeyRandomAllowedIPs, err)
	}
	if s.Policy.RandomKeepalive, err = parseBool(get(KeyRandomKeepalive)); err != nil {
		bad(KeyRandomKeepalive, err)
	}

	if !s.Policy.RandomDNS {
		if err := common.ValidateDNSList(s.Policy.DNS); err != nil {
			bad(KeyDNS, err)
		}
	}
	if !s.Policy.RandomAllowedIPs {
		if err := common.ValidateCIDRList(s.Policy.AllowedIPs); err != nil {
			bad(KeyAllowedIPs, err)
		}
	}
	if s.Policy.Endpoint != "" {
		if err := common.ValidateEndpoint(s.Policy.Endpoint); err != nil {
			bad(KeyEndpoint, err)
		}
	}

	if n, err := strconv.Atoi(get(KeyKeepalive)); err != nil {
		bad(KeyKeepalive, err)
	} else if n < 0 || n > 65535 {
		bad(KeyKeepalive, fmt.Errorf("must be between 0 and 65535, got %d", n))
	} else {
		s.Policy.Keepalive = n
	}

	if n, err := strconv.Atoi(get(KeyAddressPrefix)); err != nil {
		bad(KeyAddressPrefix, err)
	} else if n < 1 || n > 32 {
		bad(KeyAddressPrefix, fmt.Errorf("must be between 1 and 32, got %d", n))
	} else {
		s.Policy.PrefixLength = n
	}

	if len(errs) > 0 {
		return Settings{}, fmt.Errorf("invalid configuration in %s: %w", cfg.FilePath(), errors.Join(errs...))
	}
	return s, nil
}

// ValidateValue checks a single key/value pair the way LoadSettings would.
// It is used by `config set` to refuse bad values before they are saved.
func ValidateValue(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	probe := &Config{filePath: "(value)", data: map[string]string{key: value}, loaded: true}
	// Randomizers make the fixed values optional, so check those keys in
	// isolation.
	switch key {
	case KeyDNS:
		probe.data[KeyRandomDNS] = "false"
	case KeyAllowedIPs:
		probe.data[KeyRandomAllowedIPs] = "false"
	}
	_, err := LoadSettings(probe)
	return err
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
