// Package github resolves repository metadata through the GitHub API.
// It is the last step of default-branch resolution, consulted only when
// every local ref-based step has failed and a token is configured.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/saint0x/preflight/pkg/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client handles GitHub API lookups
type Client struct {
	client  *github.Client
	logger  *log.Logger
	limiter *rate.Limiter
}

// New creates a new GitHub client, or nil when no token is configured.
func New(logger *log.Logger, token string) *Client {
	if token == "" {
		return nil
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
		logger: logger,
		// One lookup per run in practice; the limiter just keeps any
		// future caller honest with the API.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// DefaultBranch gets the default branch for a repository
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	repository, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository: %w", err)
	}

	return repository.GetDefaultBranch(), nil
}

// ParseRepoURL parses a GitHub remote URL into owner and repo
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	repoURL = strings.TrimSuffix(repoURL, ".git")

	// SSH remotes (git@github.com:owner/repo)
	if strings.HasPrefix(repoURL, "git@github.com:") {
		parts := strings.Split(strings.TrimPrefix(repoURL, "git@github.com:"), "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid SSH repository URL format")
		}
		return parts[0], parts[1], nil
	}

	// HTTPS remotes
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host != "github.com" {
		return "", "", fmt.Errorf("not a github.com remote: %s", u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository URL format")
	}

	return parts[0], parts[1], nil
}
