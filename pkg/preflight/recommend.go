package preflight

import (
	"fmt"

	"github.com/saint0x/preflight/pkg/git"
)

// Action tags, a contract for downstream automation.
const (
	ActionAskUser         = "ask_user_branch_or_worktree_before_proceeding"
	ActionCreateBranch    = "create_branch_or_worktree_before_implementation"
	ActionResolveDetached = "resolve_detached_head"
	ActionContinue        = "continue_on_current_branch_or_confirm_new_branch"
)

// Recommendation is the single selected next action. Prompt is meant for
// a human-in-the-loop confirmation, not for automated execution.
type Recommendation struct {
	Action       string `json:"action"`
	Reason       string `json:"reason"`
	SafeToCommit bool   `json:"safe_to_commit_on_current_branch"`
	Prompt       string `json:"prompt"`
}

// Recommend maps the observed branch state to exactly one action. The
// cases are ordered and exhaustive: an undetermined default branch can
// never put us on-default, and a detached checkout can never match a
// real default-branch name, so this function has no error path.
func Recommend(current git.Branch, defaultBranch string, dirty bool) Recommendation {
	onDefault := defaultBranch != "" && !current.Detached && current.Name == defaultBranch

	if onDefault && dirty {
		return Recommendation{
			Action:       ActionAskUser,
			Reason:       "Working tree has changes on the default branch.",
			SafeToCommit: false,
			Prompt: fmt.Sprintf(
				"You are on `%s` with local changes. Continue on this branch, "+
					"create a feature branch, or use a worktree?",
				defaultBranch,
			),
		}
	}

	if onDefault {
		return Recommendation{
			Action:       ActionCreateBranch,
			Reason:       "Current branch is the default branch.",
			SafeToCommit: false,
			Prompt: fmt.Sprintf(
				"You are on the default branch `%s`. Create a feature branch "+
					"or use a worktree before making changes.",
				defaultBranch,
			),
		}
	}

	if current.Detached {
		return Recommendation{
			Action:       ActionResolveDetached,
			Reason:       "Repository is in detached HEAD state.",
			SafeToCommit: false,
			Prompt:       "Detached HEAD detected. Checkout a branch or create a worktree before continuing.",
		}
	}

	return Recommendation{
		Action:       ActionContinue,
		Reason:       "Already on a non-default branch.",
		SafeToCommit: true,
		Prompt: fmt.Sprintf(
			"Already on feature branch `%s`. Continue here or create a new branch/worktree?",
			current.Name,
		),
	}
}
