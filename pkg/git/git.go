// Package git queries repository state through the git CLI.
//
// Every query is attempted exactly once and degrades to a neutral value
// (empty string, zero, false) on failure. The only query whose failure
// callers treat as fatal is InsideWorkTree.
package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/saint0x/preflight/pkg/log"
)

// Runner executes an external command and returns its trimmed stdout.
// A non-nil error means the command exited non-zero or could not run.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Branch identifies the current checkout. A detached HEAD is an explicit
// state here, not a magic branch name; the "HEAD" sentinel only exists on
// the wire via DisplayName.
type Branch struct {
	Name     string
	Detached bool
}

// DisplayName returns the branch name, or the conventional "HEAD"
// sentinel for a detached checkout.
func (b Branch) DisplayName() string {
	if b.Detached {
		return "HEAD"
	}
	return b.Name
}

// Counts holds the three independent dirty-state file counts.
type Counts struct {
	Staged    int
	Unstaged  int
	Untracked int
}

// Client runs git queries through a Runner.
type Client struct {
	logger *log.Logger
	runner Runner
}

// New creates a git client
func New(logger *log.Logger, runner Runner) *Client {
	return &Client{logger: logger, runner: runner}
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, "git", args...)
}

// gitOK runs a git command and returns its stdout, or "" on any failure.
func (c *Client) gitOK(ctx context.Context, args ...string) string {
	out, err := c.git(ctx, args...)
	if err != nil {
		return ""
	}
	return out
}

// exitZero reports whether a git command succeeded, ignoring its output.
func (c *Client) exitZero(ctx context.Context, args ...string) bool {
	_, err := c.git(ctx, args...)
	return err == nil
}

// InsideWorkTree reports whether the working directory is part of a git
// work tree. This is the one precondition for the whole run.
func (c *Client) InsideWorkTree(ctx context.Context) bool {
	out, err := c.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// TopLevel returns the absolute path of the repository root, or "".
func (c *Client) TopLevel(ctx context.Context) string {
	return c.gitOK(ctx, "rev-parse", "--show-toplevel")
}

// CurrentBranch returns the checked-out branch. Empty output from
// --show-current means the repository is in detached HEAD state.
func (c *Client) CurrentBranch(ctx context.Context) Branch {
	name := c.gitOK(ctx, "branch", "--show-current")
	if name == "" {
		return Branch{Detached: true}
	}
	return Branch{Name: name}
}

// DefaultBranch resolves the repository's default branch from local
// state: the origin HEAD pointer first, then remote-tracking and local
// refs named main, then master. Returns "" when none of those exist;
// that is an absence, not an error.
func (c *Client) DefaultBranch(ctx context.Context) string {
	const remotePrefix = "refs/remotes/origin/"

	if head := c.gitOK(ctx, "symbolic-ref", "refs/remotes/origin/HEAD"); strings.HasPrefix(head, remotePrefix) {
		return strings.TrimPrefix(head, remotePrefix)
	}

	for _, candidate := range []string{"main", "master"} {
		if c.exitZero(ctx, "show-ref", "--verify", remotePrefix+candidate) {
			return candidate
		}
		if c.exitZero(ctx, "show-ref", "--verify", "refs/heads/"+candidate) {
			return candidate
		}
	}

	return ""
}

// Upstream returns the current branch's configured upstream, or "" when
// no upstream is set.
func (c *Client) Upstream(ctx context.Context) string {
	return c.gitOK(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
}

// AheadBehind returns how many commits HEAD is ahead of and behind the
// given upstream. An empty upstream or any query/parse failure yields
// (0, 0).
func (c *Client) AheadBehind(ctx context.Context, upstream string) (ahead, behind int) {
	if upstream == "" {
		return 0, 0
	}

	out, err := c.git(ctx, "rev-list", "--left-right", "--count", upstream+"...HEAD")
	if err != nil {
		return 0, 0
	}
	return parseAheadBehind(out)
}

// parseAheadBehind splits rev-list --left-right --count output. The left
// count is the upstream side (behind), the right count is the HEAD side
// (ahead). Anything other than exactly two tokens yields (0, 0).
func parseAheadBehind(out string) (ahead, behind int) {
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseInt(parts[1]), parseInt(parts[0])
}

// parseInt converts a count token, treating anything non-numeric as 0.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ChangedCounts lists staged, unstaged, and untracked files and counts
// the non-empty lines of each listing.
func (c *Client) ChangedCounts(ctx context.Context) Counts {
	return Counts{
		Staged:    countLines(c.gitOK(ctx, "diff", "--cached", "--name-only")),
		Unstaged:  countLines(c.gitOK(ctx, "diff", "--name-only")),
		Untracked: countLines(c.gitOK(ctx, "ls-files", "--others", "--exclude-standard")),
	}
}

// countLines counts non-empty lines, ignoring surrounding whitespace.
func countLines(out string) int {
	text := strings.TrimSpace(out)
	if text == "" {
		return 0
	}
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// StagedClean reports whether the index matches HEAD. This is a cheap
// exit-code check, distinct from the name-only listing behind the
// public counts.
func (c *Client) StagedClean(ctx context.Context) bool {
	return c.exitZero(ctx, "diff", "--cached", "--quiet")
}

// UnstagedClean reports whether the working tree matches the index.
func (c *Client) UnstagedClean(ctx context.Context) bool {
	return c.exitZero(ctx, "diff", "--quiet")
}

// RemoteURL returns the fetch URL of the named remote, or "".
func (c *Client) RemoteURL(ctx context.Context, remote string) string {
	return c.gitOK(ctx, "remote", "get-url", remote)
}
