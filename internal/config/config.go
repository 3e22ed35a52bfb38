// Package config defines the resolved configuration record the pipeline
// consumes. Locating the on-disk file, overlaying CLI flags and running
// the interactive setup wizard are external glue and live in cmd/hoover;
// this package only owns the shape of a fully-resolved Config and its
// defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// AudioConfig controls capture and the ring buffer / chunker stage.
type AudioConfig struct {
	Device        string  `yaml:"device"`
	SampleRate    int     `yaml:"sample_rate"`
	ChunkSeconds  float64 `yaml:"chunk_seconds"`
	OverlapSecs   float64 `yaml:"overlap_seconds"`
	MinFlushSecs  float64 `yaml:"min_flush_seconds"`
	RingCapacity  int     `yaml:"ring_capacity_samples"`
}

// SttConfig selects and configures the transcription backend.
type SttConfig struct {
	Backend         string `yaml:"backend"` // "whisper", "vosk", "openai"
	Language        string `yaml:"language"`
	ModelPath       string `yaml:"model_path"`
	WhisperModelSize string `yaml:"whisper_model_size"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
}

// SpeakerConfig controls the speaker embedding engine.
type SpeakerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	ModelPath        string  `yaml:"model_path"`
	ProfilesDir      string  `yaml:"profiles_dir"`
	MatchThreshold   float32 `yaml:"match_threshold"`
	EmaAlpha         float32 `yaml:"ema_alpha"`
}

// OutputConfig controls the markdown journal writer.
type OutputConfig struct {
	JournalDir     string `yaml:"journal_dir"`
	IncludeSpeaker bool   `yaml:"include_speaker"`
}

// GithubConfig / GiteaConfig hold forge credentials for internal/vcs's
// push-triggering, resolved from env vars if unset (GITHUB_TOKEN/GH_TOKEN,
// GITEA_TOKEN).
type GithubConfig struct {
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"`
}

type GiteaConfig struct {
	BaseURL string `yaml:"base_url"`
	Repo    string `yaml:"repo"`
	Token   string `yaml:"token"`
}

// VcsConfig controls the commit/push hook.
type VcsConfig struct {
	Enabled bool         `yaml:"enabled"`
	Remote  string       `yaml:"remote"`
	Branch  string       `yaml:"branch"`
	Github  GithubConfig `yaml:"github"`
	Gitea   GiteaConfig  `yaml:"gitea"`
}

// UdpConfig controls the encrypted audio transport.
type UdpConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddr    string `yaml:"listen_addr"`
	KeyFile       string `yaml:"key_file"`
	ReorderBacklog int   `yaml:"reorder_backlog"`
	RotationEnabled bool `yaml:"rotation_enabled"`
}

// FirewallConfig controls automatic peer banning on repeated auth failure.
type FirewallConfig struct {
	Backend     string `yaml:"backend"` // "firewalld", "nftables", "none"
	SetName     string `yaml:"set_name"` // nftables named set
	Zone        string `yaml:"zone"`     // firewalld zone
	BanSeconds  int    `yaml:"ban_seconds"`
	MaxFailures int    `yaml:"max_failures"`
	FailWindowS int    `yaml:"fail_window_seconds"`
}

// MonitorConfig controls the optional live HTTP/WebSocket feed.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// VadConfig controls the optional pre-STT voice-activity gate.
type VadConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ModelPath string `yaml:"model_path"`
}

// Config is the fully-resolved record every component depends on.
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Stt      SttConfig      `yaml:"stt"`
	Speaker  SpeakerConfig  `yaml:"speaker"`
	Vad      VadConfig      `yaml:"vad"`
	Output   OutputConfig   `yaml:"output"`
	Vcs      VcsConfig      `yaml:"vcs"`
	Udp      UdpConfig      `yaml:"udp"`
	Firewall FirewallConfig `yaml:"firewall"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// Default returns a Config populated with the same defaults the original
// tool shipped: 16kHz mono capture, 30s/5s chunk/overlap, whisper backend,
// journal under ~/hoover/journal.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Audio: AudioConfig{
			SampleRate:   16000,
			ChunkSeconds: 30,
			OverlapSecs:  5,
			MinFlushSecs: 3,
			RingCapacity: 16000 * 60,
		},
		Stt: SttConfig{
			Backend:          "whisper",
			Language:         "en",
			WhisperModelSize: "base",
			OpenAIModel:      "whisper-1",
		},
		Speaker: SpeakerConfig{
			Enabled:        false,
			ProfilesDir:    filepath.Join(home, ".config", "hoover", "speakers"),
			MatchThreshold: 0.75,
			EmaAlpha:       0.05,
		},
		Output: OutputConfig{
			JournalDir:     filepath.Join(home, "hoover", "journal"),
			IncludeSpeaker: true,
		},
		Vcs: VcsConfig{
			Branch: "main",
		},
		Udp: UdpConfig{
			ListenAddr:     ":9800",
			ReorderBacklog: 32,
		},
		Firewall: FirewallConfig{
			Backend:     "firewalld",
			SetName:     "hoover-bans",
			Zone:        "public",
			BanSeconds:  3600,
			MaxFailures: 3,
			FailWindowS: 10,
		},
		Monitor: MonitorConfig{
			Addr: ":8765",
		},
	}
}

// Load reads a YAML config file, overlaying it onto Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		resolveTokens(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	resolveTokens(cfg)
	return cfg, nil
}

func resolveTokens(cfg *Config) {
	if cfg.Vcs.Github.Token == "" {
		if t := os.Getenv("GITHUB_TOKEN"); t != "" {
			cfg.Vcs.Github.Token = t
		} else if t := os.Getenv("GH_TOKEN"); t != "" {
			cfg.Vcs.Github.Token = t
		}
	}
	if cfg.Vcs.Gitea.Token == "" {
		cfg.Vcs.Gitea.Token = os.Getenv("GITEA_TOKEN")
	}
}

// ExpandPath resolves a leading "~" to the user's home directory before
// touching model/profile paths.
func ExpandPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
