package firewall

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// firewalldBackend bans peers via firewall-cmd's "rich rule" mechanism,
// which supports a self-expiring "timeout" clause so a ban lifts itself
// without a separate scheduler.
type firewalldBackend struct {
	zone string
}

func newFirewalldBackend(zone string) *firewalldBackend {
	if zone == "" {
		zone = "public"
	}
	return &firewalldBackend{zone: zone}
}

func (b *firewalldBackend) Ban(ip string, duration time.Duration) error {
	rule := fmt.Sprintf(`rule family="ipv4" source address="%s" reject`, ip)
	cmd := exec.Command("firewall-cmd",
		"--zone", b.zone,
		"--add-rich-rule", rule,
		"--timeout", fmt.Sprintf("%ds", int(duration.Seconds())))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("firewall: firewall-cmd ban failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *firewalldBackend) Unban(ip string) error {
	rule := fmt.Sprintf(`rule family="ipv4" source address="%s" reject`, ip)
	cmd := exec.Command("firewall-cmd", "--zone", b.zone, "--remove-rich-rule", rule)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// Unban is idempotent: firewall-cmd errors when the rule is already
		// gone (e.g. it expired on its own), which is not a real failure.
		if strings.Contains(string(out), "NOT_ENABLED") {
			return nil
		}
		return fmt.Errorf("firewall: firewall-cmd unban failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *firewalldBackend) IsBanned(ip string) (bool, error) {
	cmd := exec.Command("firewall-cmd", "--zone", b.zone, "--list-rich-rules")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("firewall: firewall-cmd list failed: %w", err)
	}
	return strings.Contains(string(out), ip), nil
}
