package classpolicy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitSourceConfig points at a git-hosted class policy document, an
// alternative to a local file for teams that want the block-list reviewed
// and versioned like any other policy-as-code change.
type GitSourceConfig struct {
	Repository string // clone URL
	Branch     string
	FilePath   string // path within the repo to the YAML document
	LocalPath  string // working clone directory
	Token      string // optional bearer token credential
	Timeout    time.Duration
}

// GitSource clones (or opens) a policy repository and can be polled for the
// latest class policy document.
type GitSource struct {
	cfg  GitSourceConfig
	repo *gogit.Repository
}

// NewGitSource clones cfg.Repository into cfg.LocalPath if needed.
func NewGitSource(ctx context.Context, cfg GitSourceConfig) (*GitSource, error) {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = filepath.Join(os.TempDir(), "vitacheck-class-policy")
	}

	gs := &GitSource{cfg: cfg}

	if _, err := os.Stat(filepath.Join(cfg.LocalPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(cfg.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("open existing class policy clone: %w", err)
		}
		gs.repo = repo
		return gs, nil
	}

	cloneCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, cfg.LocalPath, false, &gogit.CloneOptions{
		URL:           cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(cfg.Branch),
		SingleBranch:  true,
		Depth:         1,
		Auth:          gs.auth(),
	})
	if err != nil {
		return nil, fmt.Errorf("clone class policy repository: %w", err)
	}
	gs.repo = repo
	return gs, nil
}

func (gs *GitSource) auth() *http.BasicAuth {
	if gs.cfg.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: gs.cfg.Token}
}

// Pull fetches the latest commit on the configured branch. It returns
// (false, nil) when already up to date.
func (gs *GitSource) Pull(ctx context.Context) (updated bool, err error) {
	wt, err := gs.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("get worktree: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, gs.cfg.Timeout)
	defer cancel()

	err = wt.PullContext(pullCtx, &gogit.PullOptions{RemoteName: "origin", Auth: gs.auth()})
	if err == gogit.NoErrAlreadyUpToDate {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pull class policy repository: %w", err)
	}
	return true, nil
}

// Load reads the current on-disk document at cfg.FilePath within the clone.
func (gs *GitSource) Load() (Doc, error) {
	return LoadFile(filepath.Join(gs.cfg.LocalPath, gs.cfg.FilePath))
}
