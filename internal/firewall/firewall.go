// Package firewall bans and unbans peer IPs at the OS packet-filter
// level in response to repeated UDP frame authentication failures. Both
// backends shell out to an external CLI tool via os/exec (see DESIGN.md
// for why no Go binding exists for firewalld's D-Bus interface or
// nftables' netlink protocol).
package firewall

import (
	"fmt"
	"time"

	"github.com/erikh/hoover/internal/config"
)

// Backend bans and unbans a single IP address.
type Backend interface {
	Ban(ip string, duration time.Duration) error
	Unban(ip string) error
	IsBanned(ip string) (bool, error)
}

// New constructs the Backend named by cfg.Backend ("firewalld", "nftables",
// or "none" for a no-op used in tests and non-Linux development).
func New(cfg *config.FirewallConfig) (Backend, error) {
	switch cfg.Backend {
	case "nftables":
		return newNftablesBackend(cfg.SetName), nil
	case "firewalld":
		return newFirewalldBackend(cfg.Zone), nil
	case "none", "":
		return noopBackend{}, nil
	default:
		return nil, fmt.Errorf("firewall: unknown backend %q", cfg.Backend)
	}
}

type noopBackend struct{}

func (noopBackend) Ban(string, time.Duration) error { return nil }
func (noopBackend) Unban(string) error              { return nil }
func (noopBackend) IsBanned(string) (bool, error)   { return false, nil }
