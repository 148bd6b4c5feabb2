// Package gh gathers review context for the current branch from the
// GitHub CLI. The CLI is optional: a missing binary or a failed auth
// check produces an unavailable/unauthenticated context, never an error.
package gh

import (
	"context"
	"encoding/json"

	"github.com/saint0x/preflight/pkg/log"
)

// Runner executes an external command and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// PullRequest mirrors the fields requested from gh pr view --json.
type PullRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	HeadRefName string `json:"headRefName"`
	BaseRefName string `json:"baseRefName"`
}

// Context describes what the GitHub CLI knows about the current branch.
// PR is nil when no open pull request exists; Raw carries the unparsed
// payload when gh returned output that failed structured decoding.
type Context struct {
	Available     bool
	Authenticated bool
	PR            *PullRequest
	Raw           string
}

// Client queries the gh CLI through a Runner.
type Client struct {
	logger *log.Logger
	runner Runner
}

// New creates a gh client
func New(logger *log.Logger, runner Runner) *Client {
	return &Client{logger: logger, runner: runner}
}

// Collect builds the review context. When the gh binary is not on PATH
// the auth check is skipped entirely.
func (c *Client) Collect(ctx context.Context) Context {
	if _, err := c.runner.LookPath("gh"); err != nil {
		c.logger.Debug("gh not found on PATH")
		return Context{}
	}

	result := Context{Available: true}

	if _, err := c.runner.Run(ctx, "gh", "auth", "status"); err != nil {
		return result
	}
	result.Authenticated = true

	out, err := c.runner.Run(ctx, "gh", "pr", "view", "--json", "number,title,url,headRefName,baseRefName")
	if err != nil || out == "" {
		// No PR for this branch. Normal, not an error.
		return result
	}

	var pr PullRequest
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		c.logger.Debug("gh pr view returned unparseable JSON: %v", err)
		result.Raw = out
		return result
	}

	result.PR = &pr
	return result
}
