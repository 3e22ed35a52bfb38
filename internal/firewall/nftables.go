package firewall

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// nftablesBackend bans peers by adding an element with a timeout to a
// named nftables set, expecting the set and its drop rule to already
// exist, created by the operator's own nftables config (out of scope here).
type nftablesBackend struct {
	setName string
}

func newNftablesBackend(setName string) *nftablesBackend {
	if setName == "" {
		setName = "hoover-bans"
	}
	return &nftablesBackend{setName: setName}
}

func (b *nftablesBackend) Ban(ip string, duration time.Duration) error {
	elem := fmt.Sprintf("{ %s timeout %ds }", ip, int(duration.Seconds()))
	cmd := exec.Command("nft", "add", "element", "inet", "filter", b.setName, elem)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("firewall: nft add element failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *nftablesBackend) Unban(ip string) error {
	elem := fmt.Sprintf("{ %s }", ip)
	cmd := exec.Command("nft", "delete", "element", "inet", "filter", b.setName, elem)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "does not exist") {
			return nil
		}
		return fmt.Errorf("firewall: nft delete element failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *nftablesBackend) IsBanned(ip string) (bool, error) {
	cmd := exec.Command("nft", "list", "set", "inet", "filter", b.setName)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("firewall: nft list set failed: %w", err)
	}
	return strings.Contains(string(out), ip), nil
}
