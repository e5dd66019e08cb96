package provision

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by WriteReport.
const (
	ReportText = "text"
	ReportYAML = "yaml"
)

type reportDoc struct {
	RunID      string `yaml:"run_id"`
	Client     string `yaml:"client"`
	Path       string `yaml:"path"`
	State      State  `yaml:"state"`
	PublicKey  string `yaml:"public_key,omitempty"`
	Address    string `yaml:"address,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	ApplyError string `yaml:"apply_error,omitempty"`
}

// WriteReport prints res to w in the given format.
func WriteReport(w io.Writer, res *Result, format string) error {
	if res == nil {
		return fmt.Errorf("no result to report")
	}

	doc := reportDoc{
		RunID:     res.RunID,
		Client:    res.Client,
		Path:      res.Path,
		State:     res.State,
		PublicKey: res.PublicKey,
		Address:   res.Address,
		Endpoint:  res.Endpoint,
	}
	if res.ApplyError != nil {
		doc.ApplyError = res.ApplyError.Error()
	}

	switch format {
	case "", ReportText:
		fmt.Fprintf(w, "client:   %s\n", doc.Client)
		fmt.Fprintf(w, "state:    %s\n", doc.State)
		fmt.Fprintf(w, "path:     %s\n", doc.Path)
		if doc.Address != "" {
			fmt.Fprintf(w, "address:  %s\n", doc.Address)
		}
		if doc.Endpoint != "" {
			fmt.Fprintf(w, "endpoint: %s\n", doc.Endpoint)
		}
		if doc.ApplyError != "" {
			fmt.Fprintf(w, "error:    %s\n", doc.ApplyError)
		}
		return nil
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q (want %s or %s)", format, ReportText, ReportYAML)
	}
}
