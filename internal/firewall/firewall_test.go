package firewall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erikh/hoover/internal/config"
)

func TestNewDispatchesOnBackendName(t *testing.T) {
	for _, backend := range []string{"nftables", "firewalld", "none", ""} {
		b, err := New(&config.FirewallConfig{Backend: backend})
		require.NoErrorf(t, err, "New(%q)", backend)
		assert.NotNilf(t, b, "New(%q)", backend)
	}

	nft, err := New(&config.FirewallConfig{Backend: "nftables"})
	require.NoError(t, err)
	assert.IsType(t, &nftablesBackend{}, nft)

	fwd, err := New(&config.FirewallConfig{Backend: "firewalld"})
	require.NoError(t, err)
	assert.IsType(t, &firewalldBackend{}, fwd)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(&config.FirewallConfig{Backend: "made-up"})
	assert.Error(t, err)
}

func TestNoopBackendIsAlwaysUnbanned(t *testing.T) {
	var b noopBackend
	require.NoError(t, b.Ban("1.2.3.4", time.Minute))
	banned, err := b.IsBanned("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, banned)
}
