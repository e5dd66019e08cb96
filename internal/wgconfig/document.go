// Package wgconfig renders and parses the client configuration document.
package wgconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/params"
)

// MTU is written into every client config.
const MTU = 1280

const header = "# VPN CONFIG"

// ErrMissingField is returned when a value required by the template is empty.
var ErrMissingField = errors.New("missing config field")

// Document is a rendered client configuration.
type Document struct {
	Client  string
	content string
}

// NewDocument wraps existing content, e.g. read back from disk.
func NewDocument(client, content string) Document {
	return Document{Client: client, content: content}
}

// String returns the document text.
func (d Document) String() string {
	return d.content
}

// Bytes returns the document text as bytes.
func (d Document) Bytes() []byte {
	return []byte(d.content)
}

// Build renders the two-section client config. It fails instead of rendering
// a document with an empty key or address.
func Build(client string, km keys.KeyMaterial, p params.NetworkParameters) (Document, error) {
	required := []struct {
		name  string
		value string
	}{
		{"Address", p.Address},
		{"DNS", p.DNS},
		{"PrivateKey", km.PrivateKey},
		{"PublicKey", km.PublicKey},
		{"PresharedKey", km.PresharedKey},
		{"AllowedIPs", p.AllowedIPs},
		{"Endpoint", p.Endpoint},
	}
	for _, field := range required {
		if sanitizeConfigValue(field.value) == "" {
			return Document{}, fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	builder := strings.Builder{}
	builder.WriteString(header + "\n")
	builder.WriteString("[Interface]\n")
	builder.WriteString(fmt.Sprintf("Address = %s\n", sanitizeConfigValue(p.Address)))
	builder.WriteString(fmt.Sprintf("DNS = %s\n", sanitizeConfigValue(p.DNS)))
	builder.WriteString(fmt.Sprintf("PrivateKey = %s\n", sanitizeConfigValue(km.PrivateKey)))
	builder.WriteString(fmt.Sprintf("MTU = %d\n", MTU))
	builder.WriteString("\n[Peer]\n")
	builder.WriteString(fmt.Sprintf("PublicKey = %s\n", sanitizeConfigValue(km.PublicKey)))
	builder.WriteString(fmt.Sprintf("PresharedKey = %s\n", sanitizeConfigValue(km.PresharedKey)))
	builder.WriteString(fmt.Sprintf("AllowedIPs = %s\n", sanitizeConfigValue(p.AllowedIPs)))
	builder.WriteString(fmt.Sprintf("Endpoint = %s\n", sanitizeConfigValue(p.Endpoint)))
	// no trailing newline
	builder.WriteString(fmt.Sprintf("PersistentKeepalive = %d", p.PersistentKeepalive))

	return Document{Client: client, content: builder.String()}, nil
}

var configValueReplacer = strings.NewReplacer(
	"\r", "",
	"\n", "",
	"[", "",
	"]", "",
	"#", "",
)

// sanitizeConfigValue strips characters that could open a new section or
// comment inside a single-line value.
func sanitizeConfigValue(value string) string {
	return strings.TrimSpace(configValueReplacer.Replace(value))
}
