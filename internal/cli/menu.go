package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoro11031/wg-provision/pkg/version"
)

// ErrExit is returned when the user chooses to exit the menu
var ErrExit = errors.New("exit")

type menuItem struct {
	label  string
	action func(ctx context.Context) error
}

// Menu provides an interactive menu interface
type Menu struct {
	ctx   *SetupContext
	items []menuItem
}

// NewMenu creates a new Menu instance
func NewMenu(sc *SetupContext) *Menu {
	m := &Menu{ctx: sc}
	m.items = []menuItem{
		{"Provision a client", m.provision},
		{"Re-apply a client", m.reapply},
		{"Show a client", m.show},
		{"Delete a client", m.remove},
		{"List clients", m.list},
		{"Run diagnostics", m.doctor},
		{"Exit", func(context.Context) error { return ErrExit }},
	}
	return m
}

// clearScreen clears the terminal using ANSI escape codes.
func clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// Show displays the main menu until the user exits or ctx is cancelled.
func (m *Menu) Show(ctx context.Context) error {
	labels := make([]string, len(m.items))
	for i, item := range m.items {
		labels[i] = item.label
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		clearScreen()
		m.ctx.UI.Header(fmt.Sprintf("wg-provision %s", version.Version))
		m.ctx.UI.Infof("Interface %s, configs in %s", m.ctx.Settings.Interface, m.ctx.Provisioner.Store().Dir())
		m.ctx.UI.Print("")

		choice, err := m.ctx.UI.PromptSelect("What do you want to do?", labels)
		if err != nil {
			return err
		}

		if err := m.items[choice].action(ctx); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			m.ctx.UI.Error(err.Error())
		}
		m.pause()
	}
}

func (m *Menu) pause() {
	m.ctx.UI.Print("")
	m.ctx.UI.Info("Press Enter to return to menu...")
	fmt.Scanln()
}

// pickClient lets the user choose one of the stored clients.
func (m *Menu) pickClient(prompt string) (string, error) {
	clients, err := m.ctx.Provisioner.Store().List()
	if err != nil {
		return "", err
	}
	if len(clients) == 0 {
		return "", fmt.Errorf("no clients provisioned yet")
	}
	i, err := m.ctx.UI.PromptSelect(prompt, clients)
	if err != nil {
		return "", err
	}
	return clients[i], nil
}

func (m *Menu) provision(ctx context.Context) error {
	sc, err := PromptEndpoint(m.ctx)
	if err != nil {
		return err
	}
	_, err = ProvisionClient(ctx, sc, "", "text")
	return err
}

func (m *Menu) reapply(ctx context.Context) error {
	client, err := m.pickClient("Client to re-apply")
	if err != nil {
		return err
	}
	_, err = ReapplyClient(ctx, m.ctx, client, "text")
	return err
}

func (m *Menu) show(ctx context.Context) error {
	client, err := m.pickClient("Client to show")
	if err != nil {
		return err
	}
	qr, err := m.ctx.UI.PromptYesNo("Render as QR code?", false)
	if err != nil {
		return err
	}
	return ShowClient(ctx, m.ctx, client, false, qr)
}

func (m *Menu) remove(ctx context.Context) error {
	client, err := m.pickClient("Client to delete")
	if err != nil {
		return err
	}
	return DeleteClient(ctx, m.ctx, client, false, false)
}

func (m *Menu) list(context.Context) error {
	_, err := ListClients(m.ctx)
	return err
}

func (m *Menu) doctor(ctx context.Context) error {
	return RunDoctor(ctx, m.ctx)
}
