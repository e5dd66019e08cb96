package wgconfig

import (
	"strings"
)

// Section holds the key/value pairs of one [Interface] or [Peer] block.
type Section map[string]string

// Get looks a key up case-insensitively.
func (s Section) Get(key string) (string, bool) {
	for k, v := range s {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Parsed is the structured form of a config document.
type Parsed struct {
	Interface Section
	Peers     []Section
}

// Parse reads a wg-quick style document. Comments, blank lines and unknown
// sections are skipped; malformed lines are ignored.
func Parse(content string) *Parsed {
	cfg := &Parsed{Interface: make(Section)}
	var current Section
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			switch strings.ToLower(strings.Trim(trimmed, "[]")) {
			case "interface":
				current = cfg.Interface
			case "peer":
				peer := make(Section)
				cfg.Peers = append(cfg.Peers, peer)
				current = peer
			default:
				current = nil
			}
			continue
		}
		if current == nil {
			continue
		}
		parts := strings.SplitN(trimmed, "=", 2)
		if len(parts) != 2 {
			continue
		}
		current[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return cfg
}

// SplitList splits a comma-separated value such as AllowedIPs or DNS.
func SplitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
