// Package provision runs the client provisioning workflow: generate keys,
// pick network parameters, render the document, persist it and push it into
// the live interface.
package provision

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/zoro11031/wg-provision/internal/apply"
	"github.com/zoro11031/wg-provision/internal/common"
	"github.com/zoro11031/wg-provision/internal/keys"
	"github.com/zoro11031/wg-provision/internal/params"
	"github.com/zoro11031/wg-provision/internal/store"
	"github.com/zoro11031/wg-provision/internal/ui"
	"github.com/zoro11031/wg-provision/internal/wgconfig"
)

// State is the outcome of a provisioning run that got as far as the store.
type State string

const (
	// StateWritten means the file was persisted and apply was skipped.
	StateWritten State = "written"
	// StateApplied means the file was persisted and loaded into the interface.
	StateApplied State = "applied"
	// StateApplyFailed means the file was persisted but the interface was not
	// updated. Running Reapply later retries just that phase.
	StateApplyFailed State = "apply-failed"
)

// Result describes a provisioning or reapply run.
type Result struct {
	RunID      string
	Client     string
	Path       string
	PublicKey  string
	Address    string
	Endpoint   string
	State      State
	ApplyError error
}

// Options holds the collaborators of a Provisioner. Keys and Store are
// required; the rest fall back to defaults.
type Options struct {
	Keys    keys.Provider
	Params  *params.Generator
	Policy  params.Policy
	Store   *store.Store
	Applier apply.Applier
	UI      *ui.UI
}

// Provisioner wires the components together.
type Provisioner struct {
	keys     keys.Provider
	params   *params.Generator
	policy   params.Policy
	store    *store.Store
	applier  apply.Applier
	ui       *ui.UI
	newRunID func() string
}

// New creates a Provisioner from opts.
func New(opts Options) (*Provisioner, error) {
	if opts.Keys == nil {
		return nil, fmt.Errorf("provisioner requires a key provider")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("provisioner requires a config store")
	}

	p := &Provisioner{
		keys:     opts.Keys,
		params:   opts.Params,
		policy:   opts.Policy,
		store:    opts.Store,
		applier:  opts.Applier,
		ui:       opts.UI,
		newRunID: uuid.NewString,
	}
	if p.params == nil {
		p.params = params.NewGenerator()
	}
	if p.policy == (params.Policy{}) {
		p.policy = params.DefaultPolicy()
	}
	if p.applier == nil {
		p.applier = apply.NoopApplier{}
	}
	if p.ui == nil {
		p.ui = ui.NewWithWriter(io.Discard)
	}
	return p, nil
}

// Store returns the underlying config store.
func (p *Provisioner) Store() *store.Store {
	return p.store
}

// Provision creates a new configuration for client and applies it.
//
// Key generation, rendering and the write are hard failures: an error is
// returned and nothing is persisted. A failed apply is reported through
// Result.State and Result.ApplyError instead, since the file is already on
// disk and can be reapplied.
func (p *Provisioner) Provision(ctx context.Context, client string) (*Result, error) {
	if err := common.ValidateClientName(client); err != nil {
		return nil, err
	}

	p.ui.Step(fmt.Sprintf("Provisioning client %s", client))

	p.ui.Info("Generating key material...")
	km, err := keys.Generate(ctx, p.keys)
	if err != nil {
		return nil, fmt.Errorf("key generation failed for %s: %w", client, err)
	}
	p.ui.Infof("Client public key: %s", keys.Truncate(km.PublicKey))

	np := p.params.Generate(p.policy)
	p.ui.Infof("Address %s, endpoint %s", np.Address, np.Endpoint)

	doc, err := wgconfig.Build(client, km, np)
	if err != nil {
		return nil, fmt.Errorf("failed to render config for %s: %w", client, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("provisioning %s cancelled: %w", client, err)
	}

	path, err := p.store.Write(client, doc)
	if err != nil {
		return nil, err
	}
	p.ui.Successf("Configuration written to %s", path)

	res := &Result{
		RunID:     p.newRunID(),
		Client:    client,
		Path:      path,
		PublicKey: km.PublicKey,
		Address:   np.Address,
		Endpoint:  np.Endpoint,
		State:     StateWritten,
	}
	p.applyResult(ctx, res)
	return res, nil
}

// Reapply loads an existing configuration into the interface again.
func (p *Provisioner) Reapply(ctx context.Context, client string) (*Result, error) {
	doc, err := p.store.Read(client)
	if err != nil {
		return nil, err
	}
	path, err := p.store.Path(client)
	if err != nil {
		return nil, err
	}

	p.ui.Step(fmt.Sprintf("Re-applying client %s", client))

	res := &Result{
		RunID:  p.newRunID(),
		Client: client,
		Path:   path,
		State:  StateWritten,
	}
	parsed := wgconfig.Parse(doc.String())
	res.Address, _ = parsed.Interface.Get("Address")
	if len(parsed.Peers) > 0 {
		res.PublicKey, _ = parsed.Peers[0].Get("PublicKey")
		res.Endpoint, _ = parsed.Peers[0].Get("Endpoint")
	}

	p.applyResult(ctx, res)
	return res, nil
}

// Delete removes the stored configuration for client. A missing file is
// returned as store.ErrNotFound; the caller decides how loud that is.
func (p *Provisioner) Delete(ctx context.Context, client string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.Delete(client); err != nil {
		return err
	}
	p.ui.Successf("Removed configuration for %s", client)
	return nil
}

func (p *Provisioner) applyResult(ctx context.Context, res *Result) {
	if apply.Skipped(p.applier) {
		p.ui.Info("Interface apply skipped")
		return
	}

	p.ui.Info("Applying configuration to interface...")
	if err := p.applier.Apply(ctx, res.Path); err != nil {
		res.State = StateApplyFailed
		res.ApplyError = err
		p.ui.Warningf("Configuration saved but not applied: %v", err)
		p.ui.Infof("Retry with: wg-provision apply %s", res.Client)
		return
	}
	res.State = StateApplied
	p.ui.Success("Interface updated")
}
