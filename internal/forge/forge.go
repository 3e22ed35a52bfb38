// Package forge triggers a CI workflow on the configured GitHub or Gitea
// remote after a manual or scheduled push. No dedicated GitHub/Gitea SDK
// is available, so this hits the documented workflow-dispatch REST
// endpoints directly over net/http (see DESIGN.md for the full
// justification).
package forge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erikh/hoover/internal/config"
)

// Trigger dispatches a workflow run on whichever forge is configured,
// preferring Github when both are set.
func Trigger(ctx context.Context, cfg *config.VcsConfig, workflow, ref string) error {
	switch {
	case cfg.Github.Repo != "":
		return triggerGithub(ctx, cfg.Github, workflow, ref)
	case cfg.Gitea.Repo != "":
		return triggerGitea(ctx, cfg.Gitea, workflow, ref)
	default:
		return fmt.Errorf("forge: neither vcs.github.repo nor vcs.gitea.repo is set")
	}
}

func triggerGithub(ctx context.Context, cfg config.GithubConfig, workflow, ref string) error {
	if cfg.Token == "" {
		return fmt.Errorf("forge: github token is not set")
	}
	url := fmt.Sprintf("https://api.github.com/repos/%s/actions/workflows/%s/dispatches", cfg.Repo, workflow)
	body := fmt.Sprintf(`{"ref":%q}`, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("forge: failed to build github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	return doTrigger(req)
}

func triggerGitea(ctx context.Context, cfg config.GiteaConfig, workflow, ref string) error {
	if cfg.Token == "" {
		return fmt.Errorf("forge: gitea token is not set")
	}
	url := fmt.Sprintf("%s/api/v1/repos/%s/actions/workflows/%s/dispatches", strings.TrimSuffix(cfg.BaseURL, "/"), cfg.Repo, workflow)
	body := fmt.Sprintf(`{"ref":%q}`, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("forge: failed to build gitea request: %w", err)
	}
	req.Header.Set("Authorization", "token "+cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	return doTrigger(req)
}

func doTrigger(req *http.Request) error {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("forge: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("forge: workflow dispatch returned status %s", resp.Status)
	}
	return nil
}
