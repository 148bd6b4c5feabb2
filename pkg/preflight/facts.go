// Package preflight collects repository facts and classifies them into a
// single recommended next action. One pass, no mutation, no persistence:
// every run observes live state and terminates after printing.
package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/saint0x/preflight/pkg/config"
	"github.com/saint0x/preflight/pkg/gh"
	"github.com/saint0x/preflight/pkg/git"
	"github.com/saint0x/preflight/pkg/github"
	"github.com/saint0x/preflight/pkg/log"
)

// ErrNotARepository is the one fatal collection failure: the working
// directory is not inside a git work tree. Everything else degrades to
// a neutral default.
var ErrNotARepository = errors.New("not inside a git repository")

// Facts holds everything observed about the repository in one run.
type Facts struct {
	Root          string
	Current       git.Branch
	DefaultBranch string // "" when undeterminable
	Upstream      string // "" when no upstream is configured
	Ahead         int
	Behind        int
	Staged        int
	Unstaged      int
	Untracked     int
	StagedClean   bool
	UnstagedClean bool
}

// Dirty reports whether the working tree has staged, unstaged, or
// untracked changes.
func (f Facts) Dirty() bool {
	return !(f.StagedClean && f.UnstagedClean && f.Untracked == 0)
}

// OnDefault reports whether the checkout is the determined default
// branch. An undetermined default branch is never "on default".
func (f Facts) OnDefault() bool {
	return f.DefaultBranch != "" && !f.Current.Detached && f.Current.Name == f.DefaultBranch
}

// IntegrationFlags are independent presence checks, unrelated to each
// other and to the git facts.
type IntegrationFlags struct {
	LinearKeyPresent bool
	TodosDirExists   bool
}

// Result is the complete observation set handed to report assembly.
type Result struct {
	Facts  Facts
	Review gh.Context
	Flags  IntegrationFlags
}

// DefaultBranchAPI is the remote fallback for default-branch resolution.
type DefaultBranchAPI interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
}

// Collector gathers facts from git, gh, the environment, and the
// filesystem. Queries run strictly in sequence; each is attempted once.
type Collector struct {
	logger *log.Logger
	git    *git.Client
	gh     *gh.Client
	api    DefaultBranchAPI // nil when no token is configured
	env    *config.Environment
}

// NewCollector creates a collector. api may be nil.
func NewCollector(logger *log.Logger, gitClient *git.Client, ghClient *gh.Client, api DefaultBranchAPI, env *config.Environment) *Collector {
	return &Collector{
		logger: logger,
		git:    gitClient,
		gh:     ghClient,
		api:    api,
		env:    env,
	}
}

// Collect observes the repository. It fails only when the working
// directory is not inside a work tree; any individual query failure
// degrades to its documented default and collection continues.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	if !c.git.InsideWorkTree(ctx) {
		return nil, ErrNotARepository
	}

	root := c.git.TopLevel(ctx)
	current := c.git.CurrentBranch(ctx)
	c.logger.Branch("Current branch: %s", current.DisplayName())

	defaultBranch := c.resolveDefaultBranch(ctx)
	upstream := c.git.Upstream(ctx)
	ahead, behind := c.git.AheadBehind(ctx, upstream)

	stagedClean := c.git.StagedClean(ctx)
	unstagedClean := c.git.UnstagedClean(ctx)
	counts := c.git.ChangedCounts(ctx)
	c.logger.Git("Changes: %d staged, %d unstaged, %d untracked", counts.Staged, counts.Unstaged, counts.Untracked)

	facts := Facts{
		Root:          root,
		Current:       current,
		DefaultBranch: defaultBranch,
		Upstream:      upstream,
		Ahead:         ahead,
		Behind:        behind,
		Staged:        counts.Staged,
		Unstaged:      counts.Unstaged,
		Untracked:     counts.Untracked,
		StagedClean:   stagedClean,
		UnstagedClean: unstagedClean,
	}

	review := c.gh.Collect(ctx)
	if review.PR != nil {
		c.logger.PR("Open PR #%d: %s", review.PR.Number, review.PR.Title)
	}

	flags := IntegrationFlags{
		LinearKeyPresent: c.env.LinearKeyPresent,
		TodosDirExists:   dirExists(filepath.Join(root, "todos")),
	}

	return &Result{Facts: facts, Review: review, Flags: flags}, nil
}

// resolveDefaultBranch tries local refs first, then falls back to the
// GitHub API when a client is configured and origin is a GitHub remote.
// The final fallback is "", meaning undetermined.
func (c *Collector) resolveDefaultBranch(ctx context.Context) string {
	if branch := c.git.DefaultBranch(ctx); branch != "" {
		return branch
	}
	if c.api == nil {
		return ""
	}

	remote := c.git.RemoteURL(ctx, "origin")
	if remote == "" {
		return ""
	}

	owner, repo, err := github.ParseRepoURL(remote)
	if err != nil {
		c.logger.Debug("origin is not a usable GitHub remote: %v", err)
		return ""
	}

	branch, err := c.api.DefaultBranch(ctx, owner, repo)
	if err != nil {
		c.logger.Debug("API default-branch lookup failed: %v", err)
		return ""
	}
	return branch
}

// dirExists checks for a directory without reading its contents.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
