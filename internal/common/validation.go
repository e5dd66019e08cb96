// Package common holds validation helpers shared by the provisioning
// packages and the CLI.
package common

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrInvalidClientName is wrapped by every ValidateClientName failure.
var ErrInvalidClientName = errors.New("invalid client name")

const maxClientNameLength = 64

// ValidatePort validates a port number (1-65535)
func ValidatePort(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", port)
	}

	if p < 1 || p > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", p)
	}

	return nil
}

// ValidateCIDR validates an address in CIDR notation (IPv4 or IPv6)
func ValidateCIDR(cidr string) error {
	if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
		return fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	return nil
}

// ValidateCIDRList validates a comma-separated list of CIDRs
func ValidateCIDRList(list string) error {
	if strings.TrimSpace(list) == "" {
		return fmt.Errorf("CIDR list cannot be empty")
	}
	for _, entry := range strings.Split(list, ",") {
		if err := ValidateCIDR(entry); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEndpoint validates a user-supplied host:port endpoint. The host may
// be an IP address or a domain name. Port 0 is rejected here even though the
// random endpoint generator may pick it: a configured endpoint has to be
// reachable, a generated one is only a placeholder.
func ValidateEndpoint(endpoint string) error {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if net.ParseIP(host) == nil {
		if err := ValidateDomain(host); err != nil {
			return fmt.Errorf("invalid endpoint host: %w", err)
		}
	}
	return ValidatePort(port)
}

// ValidateClientName checks that name is usable as a config file stem:
// letters, digits, '.', '_' and '-', starting with a letter or digit.
func ValidateClientName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidClientName)
	}
	if len(name) > maxClientNameLength {
		return fmt.Errorf("%w: too long (max %d characters): %s", ErrInvalidClientName, maxClientNameLength, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: cannot be '.' or '..'", ErrInvalidClientName)
	}

	first := name[0]
	if !isAlnum(rune(first)) {
		return fmt.Errorf("%w: must start with a letter or digit: %s", ErrInvalidClientName, name)
	}

	for _, c := range name {
		if !isAlnum(c) && c != '_' && c != '-' && c != '.' {
			return fmt.Errorf("%w: contains invalid character %q: %s", ErrInvalidClientName, c, name)
		}
	}

	return nil
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ValidateNotEmpty validates that a string is not empty
func ValidateNotEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// ValidateDomain validates a domain name (basic validation)
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}

	// Basic domain validation - allow alphanumeric, dots, and hyphens
	if len(domain) > 253 {
		return fmt.Errorf("domain name too long: %s", domain)
	}

	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid domain (empty label): %s", domain)
		}
		if len(part) > 63 {
			return fmt.Errorf("domain label too long: %s", part)
		}

		for i, c := range part {
			if !isAlnum(c) && c != '-' {
				return fmt.Errorf("invalid character in domain: %s", domain)
			}
			// Hyphen cannot be at start or end
			if c == '-' && (i == 0 || i == len(part)-1) {
				return fmt.Errorf("domain label cannot start or end with hyphen: %s", part)
			}
		}
	}

	return nil
}

// ValidateDNSList validates a comma-separated list of resolver addresses
// (IPv4 or IPv6).
func ValidateDNSList(list string) error {
	if strings.TrimSpace(list) == "" {
		return fmt.Errorf("DNS list cannot be empty")
	}
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("invalid DNS server address: %q", entry)
		}
	}
	return nil
}

// ValidateInterfaceName checks a network interface name against the kernel
// limits (at most 15 bytes, no '/', no whitespace).
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if len(name) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/ \t\n:") {
		return fmt.Errorf("invalid interface name: %q", name)
	}
	return nil
}
