package apply

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/zoro11031/wg-provision/internal/wgconfig"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// deviceConfigurer is the subset of *wgctrl.Client used here.
type deviceConfigurer interface {
	ConfigureDevice(name string, cfg wgtypes.Config) error
	Close() error
}

// NetlinkApplier configures the interface directly through the kernel (or
// userspace) WireGuard control API instead of spawning the wg binary.
// Existing peers are kept; peers from the file are added or updated.
type NetlinkApplier struct {
	iface     string
	timeout   time.Duration
	readFile  func(string) ([]byte, error)
	newClient func() (deviceConfigurer, error)
}

// NewNetlinkApplier creates a NetlinkApplier for iface.
func NewNetlinkApplier(iface string, timeout time.Duration) *NetlinkApplier {
	if iface == "" {
		iface = "wg0"
	}
	return &NetlinkApplier{
		iface:    iface,
		timeout:  timeout,
		readFile: os.ReadFile,
		newClient: func() (deviceConfigurer, error) {
			return wgctrl.New()
		},
	}
}

// Apply reads path, converts it and calls ConfigureDevice.
func (a *NetlinkApplier) Apply(ctx context.Context, path string) error {
	data, err := a.readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := DeviceConfig(string(data))
	if err != nil {
		return err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	client, err := a.newClient()
	if err != nil {
		return fmt.Errorf("failed to open WireGuard control client: %w", err)
	}

	// The client is closed by the goroutine once ConfigureDevice returns,
	// even when Apply has already given up on it.
	done := make(chan error, 1)
	go func() {
		err := client.ConfigureDevice(a.iface, cfg)
		client.Close()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to configure %s: %w", a.iface, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("configure %s: %w (the change may still land; reapply to confirm)", a.iface, ctx.Err())
	}
}

// DeviceConfig converts a config document into a wgtypes.Config. Keys that
// only wg-quick understands (Address, DNS, MTU) are ignored.
func DeviceConfig(content string) (wgtypes.Config, error) {
	parsed := wgconfig.Parse(content)
	cfg := wgtypes.Config{ReplacePeers: false}

	if raw, ok := parsed.Interface.Get("PrivateKey"); ok {
		key, err := wgtypes.ParseKey(raw)
		if err != nil {
			return wgtypes.Config{}, fmt.Errorf("invalid interface PrivateKey: %w", err)
		}
		cfg.PrivateKey = &key
	}
	if raw, ok := parsed.Interface.Get("ListenPort"); ok {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return wgtypes.Config{}, fmt.Errorf("invalid ListenPort %q: %w", raw, err)
		}
		cfg.ListenPort = &port
	}

	for i, section := range parsed.Peers {
		peer, err := peerConfig(section)
		if err != nil {
			return wgtypes.Config{}, fmt.Errorf("peer %d: %w", i, err)
		}
		cfg.Peers = append(cfg.Peers, peer)
	}

	return cfg, nil
}

func peerConfig(section wgconfig.Section) (wgtypes.PeerConfig, error) {
	raw, ok := section.Get("PublicKey")
	if !ok {
		return wgtypes.PeerConfig{}, fmt.Errorf("missing PublicKey")
	}
	pub, err := wgtypes.ParseKey(raw)
	if err != nil {
		return wgtypes.PeerConfig{}, fmt.Errorf("invalid PublicKey: %w", err)
	}
	peer := wgtypes.PeerConfig{
		PublicKey:         pub,
		ReplaceAllowedIPs: true,
	}

	if raw, ok := section.Get("PresharedKey"); ok {
		psk, err := wgtypes.ParseKey(raw)
		if err != nil {
			return wgtypes.PeerConfig{}, fmt.Errorf("invalid PresharedKey: %w", err)
		}
		peer.PresharedKey = &psk
	}

	if raw, ok := section.Get("Endpoint"); ok {
		addr, err := net.ResolveUDPAddr("udp", raw)
		if err != nil {
			return wgtypes.PeerConfig{}, fmt.Errorf("invalid Endpoint %q: %w", raw, err)
		}
		peer.Endpoint = addr
	}

	if raw, ok := section.Get("AllowedIPs"); ok {
		for _, entry := range wgconfig.SplitList(raw) {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				return wgtypes.PeerConfig{}, fmt.Errorf("invalid AllowedIPs entry %q: %w", entry, err)
			}
			peer.AllowedIPs = append(peer.AllowedIPs, *network)
		}
	}

	if raw, ok := section.Get("PersistentKeepalive"); ok {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			return wgtypes.PeerConfig{}, fmt.Errorf("invalid PersistentKeepalive %q", raw)
		}
		interval := time.Duration(seconds) * time.Second
		peer.PersistentKeepaliveInterval = &interval
	}

	return peer, nil
}
