// Package vcs provides the thin commit/push hook the pipeline calls after
// writing to the journal. Git commit/push and forge-trigger workflows are
// external collaborators; this package owns only the interface and a
// default git-CLI implementation, shelling out via os/exec the same way
// the firewall backends invoke their CLI tools.
package vcs

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/erikh/hoover/internal/config"
)

// Hook commits and pushes journal changes.
type Hook interface {
	Commit(message string) error
	Push() error
}

// New returns a git-CLI-backed Hook rooted at repoDir, or nil if
// cfg.Enabled is false.
func New(cfg *config.VcsConfig, repoDir string) Hook {
	if !cfg.Enabled {
		return nil
	}
	return &gitHook{repoDir: repoDir, remote: cfg.Remote, branch: cfg.Branch}
}

type gitHook struct {
	repoDir string
	remote  string
	branch  string
}

func (g *gitHook) Commit(message string) error {
	add := exec.Command("git", "-C", g.repoDir, "add", "-A")
	if out, err := add.CombinedOutput(); err != nil {
		return fmt.Errorf("vcs: git add failed: %w: %s", err, out)
	}

	commit := exec.Command("git", "-C", g.repoDir, "commit", "-m", message)
	if out, err := commit.CombinedOutput(); err != nil {
		return fmt.Errorf("vcs: git commit failed: %w: %s", err, out)
	}
	return nil
}

func (g *gitHook) Push() error {
	remote := g.remote
	if remote == "" {
		remote = "origin"
	}
	branch := g.branch
	if branch == "" {
		branch = "main"
	}
	push := exec.Command("git", "-C", g.repoDir, "push", remote, branch)
	if out, err := push.CombinedOutput(); err != nil {
		return fmt.Errorf("vcs: git push failed: %w: %s", err, out)
	}
	return nil
}

// Flush commits then pushes, sequentially and fail-loud: if either step
// errors it is logged and the flush cycle stops without retrying.
func Flush(hook Hook, message string) {
	if hook == nil {
		return
	}
	if err := hook.Commit(message); err != nil {
		slog.Error("journal commit failed", "error", err)
		return
	}
	if err := hook.Push(); err != nil {
		slog.Error("journal push failed", "error", err)
	}
}
