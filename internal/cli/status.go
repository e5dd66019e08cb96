package cli

import (
	"fmt"

	"github.com/zoro11031/wg-provision/internal/wgconfig"
)

// ShowStatus prints the effective settings and one line per stored client.
func ShowStatus(sc *SetupContext) error {
	s := sc.Settings
	st := sc.Provisioner.Store()

	sc.UI.Header("Provisioning Status")
	sc.UI.Field("Settings file", sc.Config.FilePath())
	sc.UI.Field("Interface", s.Interface)
	sc.UI.Field("Config directory", st.Dir())
	sc.UI.Field("Backends", fmt.Sprintf("keys=%s apply=%s", s.KeyBackend, s.ApplyBackend))
	endpoint := s.Policy.Endpoint
	if endpoint == "" {
		endpoint = "(random)"
	}
	sc.UI.Field("Endpoint", endpoint)
	sc.UI.Print("")
	sc.UI.Separator()

	clients, err := st.List()
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		sc.UI.Info("No clients provisioned")
		return nil
	}

	fmt.Fprintf(sc.Out, "%-24s %-20s %s\n", "CLIENT", "ADDRESS", "ENDPOINT")
	for _, c := range clients {
		doc, err := st.Read(c)
		if err != nil {
			sc.UI.Warningf("Cannot read %s: %v", c, err)
			continue
		}
		parsed := wgconfig.Parse(doc.String())
		addr, _ := parsed.Interface.Get("Address")
		ep := ""
		if len(parsed.Peers) > 0 {
			ep, _ = parsed.Peers[0].Get("Endpoint")
		}
		fmt.Fprintf(sc.Out, "%-24s %-20s %s\n", c, addr, ep)
	}
	sc.UI.Print("")
	sc.UI.Infof("%d client(s)", len(clients))
	return nil
}
