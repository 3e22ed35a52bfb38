package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPopulatesCoreFields(t *testing.T) {
	cfg := Default()

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.ChunkSeconds != 30 {
		t.Errorf("ChunkSeconds = %v, want 30", cfg.Audio.ChunkSeconds)
	}
	if cfg.Stt.Backend != "whisper" {
		t.Errorf("Stt.Backend = %q, want whisper", cfg.Stt.Backend)
	}
	if cfg.Firewall.MaxFailures != 3 || cfg.Firewall.FailWindowS != 10 {
		t.Errorf("firewall thresholds = %d/%ds, want 3/10s", cfg.Firewall.MaxFailures, cfg.Firewall.FailWindowS)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != Default().Audio.SampleRate {
		t.Errorf("expected defaults when config file is missing")
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := "audio:\n  device: usb-mic\n  sample_rate: 48000\nspeaker:\n  enabled: true\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.Device != "usb-mic" || cfg.Audio.SampleRate != 48000 {
		t.Errorf("overlay did not apply: %+v", cfg.Audio)
	}
	if !cfg.Speaker.Enabled {
		t.Error("expected speaker.enabled = true from overlay")
	}
	if cfg.Output.JournalDir == "" {
		t.Error("expected unset fields to keep their default value")
	}
}

func TestResolveTokensFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("GITEA_TOKEN", "gitea-token")

	cfg := Default()
	resolveTokens(cfg)

	if cfg.Vcs.Github.Token != "gh-token" {
		t.Errorf("Github.Token = %q, want gh-token", cfg.Vcs.Github.Token)
	}
	if cfg.Vcs.Gitea.Token != "gitea-token" {
		t.Errorf("Gitea.Token = %q, want gitea-token", cfg.Vcs.Gitea.Token)
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	got := ExpandPath("~/hoover/journal")
	want := filepath.Join(home, "hoover", "journal")
	if got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}
	if ExpandPath("/already/absolute") != "/already/absolute" {
		t.Error("ExpandPath should not modify paths without a leading ~")
	}
}
