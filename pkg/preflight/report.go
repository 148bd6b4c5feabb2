package preflight

// The field names and nesting below are a wire contract for downstream
// consumers. Change them and every agent parsing the output breaks.

// Report is the full success payload written to stdout.
type Report struct {
	OK             bool               `json:"ok"`
	Repo           RepoReport         `json:"repo"`
	Integrations   IntegrationsReport `json:"integrations"`
	GitHub         GitHubReport       `json:"github"`
	Recommendation Recommendation     `json:"recommendation"`
}

// RepoReport is the git portion of the payload.
type RepoReport struct {
	Root             string  `json:"root"`
	CurrentBranch    string  `json:"current_branch"`
	DefaultBranch    *string `json:"default_branch"`
	OnDefaultBranch  bool    `json:"on_default_branch"`
	DetachedHead     bool    `json:"detached_head"`
	UpstreamBranch   *string `json:"upstream_branch"`
	AheadBy          int     `json:"ahead_by"`
	BehindBy         int     `json:"behind_by"`
	WorkingTreeDirty bool    `json:"working_tree_dirty"`
	StagedFiles      int     `json:"staged_files"`
	UnstagedFiles    int     `json:"unstaged_files"`
	UntrackedFiles   int     `json:"untracked_files"`
}

// IntegrationsReport carries the independent presence flags.
type IntegrationsReport struct {
	LinearAPIKeyPresent bool `json:"linear_api_key_present"`
	TodosDirExists      bool `json:"todos_dir_exists"`
}

// GitHubReport describes review-host availability and the current
// branch's pull request: a structured object, a {"raw": ...} record
// when gh returned unparseable output, or null when absent.
type GitHubReport struct {
	GHAvailable     bool        `json:"gh_available"`
	GHAuthenticated bool        `json:"gh_authenticated"`
	CurrentBranchPR interface{} `json:"current_branch_pr"`
}

// Failure is the payload for the single fatal case.
type Failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// BuildReport shapes collected facts into the wire payload and runs the
// recommendation engine over them.
func BuildReport(result *Result) Report {
	f := result.Facts

	var pr interface{}
	switch {
	case result.Review.PR != nil:
		pr = result.Review.PR
	case result.Review.Raw != "":
		pr = map[string]string{"raw": result.Review.Raw}
	}

	return Report{
		OK: true,
		Repo: RepoReport{
			Root:             f.Root,
			CurrentBranch:    f.Current.DisplayName(),
			DefaultBranch:    optional(f.DefaultBranch),
			OnDefaultBranch:  f.OnDefault(),
			DetachedHead:     f.Current.Detached,
			UpstreamBranch:   optional(f.Upstream),
			AheadBy:          f.Ahead,
			BehindBy:         f.Behind,
			WorkingTreeDirty: f.Dirty(),
			StagedFiles:      f.Staged,
			UnstagedFiles:    f.Unstaged,
			UntrackedFiles:   f.Untracked,
		},
		Integrations: IntegrationsReport{
			LinearAPIKeyPresent: result.Flags.LinearKeyPresent,
			TodosDirExists:      result.Flags.TodosDirExists,
		},
		GitHub: GitHubReport{
			GHAvailable:     result.Review.Available,
			GHAuthenticated: result.Review.Authenticated,
			CurrentBranchPR: pr,
		},
		Recommendation: Recommend(f.Current, f.DefaultBranch, f.Dirty()),
	}
}

// optional maps "" to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
