package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/saint0x/preflight/pkg/config"
	"github.com/saint0x/preflight/pkg/gh"
	"github.com/saint0x/preflight/pkg/git"
	"github.com/saint0x/preflight/pkg/log"
)

// fakeRunner replays canned responses for both git and gh commands.
type fakeRunner struct {
	ghOnPath  bool
	responses map[string]string
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	out, ok := f.responses[key]
	if !ok {
		return "", errors.New("exit status 1")
	}
	return out, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.ghOnPath {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

// fakeAPI stands in for the GitHub default-branch lookup.
type fakeAPI struct {
	branch string
	err    error
	calls  int
}

func (f *fakeAPI) DefaultBranch(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.branch, f.err
}

// cleanRepo returns responses for a clean checkout of branch with an
// origin/main default and an up-to-date upstream.
func cleanRepo(root, branch string) map[string]string {
	m := make(map[string]string)
	m["git rev-parse --is-inside-work-tree"] = "true"
	m["git rev-parse --show-toplevel"] = root
	m["git branch --show-current"] = branch
	m["git symbolic-ref refs/remotes/origin/HEAD"] = "refs/remotes/origin/main"
	m["git rev-parse --abbrev-ref --symbolic-full-name @{u}"] = "origin/" + branch
	m["git rev-list --left-right --count origin/"+branch+"...HEAD"] = "0\t0"
	m["git diff --cached --quiet"] = ""
	m["git diff --quiet"] = ""
	m["git diff --cached --name-only"] = ""
	m["git diff --name-only"] = ""
	m["git ls-files --others --exclude-standard"] = ""
	return m
}

func newCollector(runner *fakeRunner, api DefaultBranchAPI, env *config.Environment) *Collector {
	logger := log.New(false)
	if env == nil {
		env = &config.Environment{}
	}
	return NewCollector(logger, git.New(logger, runner), gh.New(logger, runner), api, env)
}

func TestCollectNotARepository(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{}}
	collector := newCollector(runner, nil, nil)

	_, err := collector.Collect(context.Background())
	if !errors.Is(err, ErrNotARepository) {
		t.Fatalf("Collect() error = %v, want ErrNotARepository", err)
	}
	// The fatal precondition stops collection before any other query.
	if len(runner.calls) != 1 {
		t.Errorf("Collect() invoked %v, want only the work-tree check", runner.calls)
	}
}

func TestCollectCleanOnDefault(t *testing.T) {
	runner := &fakeRunner{responses: cleanRepo("/work/demo", "main")}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	f := result.Facts
	if !f.OnDefault() {
		t.Errorf("OnDefault() = false, want true (facts %+v)", f)
	}
	if f.Dirty() {
		t.Errorf("Dirty() = true, want false")
	}

	rec := Recommend(f.Current, f.DefaultBranch, f.Dirty())
	if rec.Action != ActionCreateBranch {
		t.Errorf("action = %q, want %q", rec.Action, ActionCreateBranch)
	}
	if rec.SafeToCommit {
		t.Error("safe_to_commit = true, want false")
	}
}

func TestCollectDirtyOnDefault(t *testing.T) {
	responses := cleanRepo("/work/demo", "main")
	delete(responses, "git diff --cached --quiet")
	responses["git diff --cached --name-only"] = "a.go\nb.go"
	responses["git ls-files --others --exclude-standard"] = "notes.txt"
	runner := &fakeRunner{responses: responses}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	f := result.Facts
	if f.Staged != 2 || f.Unstaged != 0 || f.Untracked != 1 {
		t.Errorf("counts = (%d, %d, %d), want (2, 0, 1)", f.Staged, f.Unstaged, f.Untracked)
	}
	if !f.Dirty() {
		t.Error("Dirty() = false, want true")
	}

	rec := Recommend(f.Current, f.DefaultBranch, f.Dirty())
	if rec.Action != ActionAskUser {
		t.Errorf("action = %q, want %q", rec.Action, ActionAskUser)
	}
}

func TestCollectDetached(t *testing.T) {
	responses := cleanRepo("/work/demo", "main")
	responses["git branch --show-current"] = ""
	runner := &fakeRunner{responses: responses}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	f := result.Facts
	if !f.Current.Detached {
		t.Errorf("Current = %+v, want detached", f.Current)
	}
	if f.OnDefault() {
		t.Error("OnDefault() = true for a detached HEAD")
	}

	rec := Recommend(f.Current, f.DefaultBranch, f.Dirty())
	if rec.Action != ActionResolveDetached {
		t.Errorf("action = %q, want %q", rec.Action, ActionResolveDetached)
	}
}

func TestCollectFeatureBranch(t *testing.T) {
	runner := &fakeRunner{responses: cleanRepo("/work/demo", "feature/x")}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	f := result.Facts
	rec := Recommend(f.Current, f.DefaultBranch, f.Dirty())
	if rec.Action != ActionContinue {
		t.Errorf("action = %q, want %q", rec.Action, ActionContinue)
	}
	if !rec.SafeToCommit {
		t.Error("safe_to_commit = false, want true")
	}
}

func TestCollectAheadBehind(t *testing.T) {
	responses := cleanRepo("/work/demo", "feature/x")
	responses["git rev-list --left-right --count origin/feature/x...HEAD"] = "3\t5"
	runner := &fakeRunner{responses: responses}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if result.Facts.Ahead != 5 || result.Facts.Behind != 3 {
		t.Errorf("ahead/behind = (%d, %d), want (5, 3)", result.Facts.Ahead, result.Facts.Behind)
	}
}

func TestCollectNoUpstream(t *testing.T) {
	responses := cleanRepo("/work/demo", "feature/x")
	delete(responses, "git rev-parse --abbrev-ref --symbolic-full-name @{u}")
	runner := &fakeRunner{responses: responses}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	f := result.Facts
	if f.Upstream != "" || f.Ahead != 0 || f.Behind != 0 {
		t.Errorf("upstream facts = (%q, %d, %d), want none", f.Upstream, f.Ahead, f.Behind)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "git rev-list") {
			t.Errorf("rev-list ran without an upstream: %v", runner.calls)
		}
	}
}

func TestCollectIdempotent(t *testing.T) {
	runner := &fakeRunner{responses: cleanRepo("/work/demo", "feature/x")}
	collector := newCollector(runner, nil, nil)

	first, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	second, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated collection differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCollectGHAbsent(t *testing.T) {
	runner := &fakeRunner{ghOnPath: false, responses: cleanRepo("/work/demo", "feature/x")}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if result.Review.Available || result.Review.Authenticated || result.Review.PR != nil {
		t.Errorf("Review = %+v, want zero context", result.Review)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "gh ") {
			t.Errorf("gh was invoked despite a missing binary: %v", runner.calls)
		}
	}
}

func TestDefaultBranchAPIFallback(t *testing.T) {
	responses := cleanRepo("/work/demo", "feature/x")
	delete(responses, "git symbolic-ref refs/remotes/origin/HEAD")
	responses["git remote get-url origin"] = "git@github.com:saint0x/preflight.git"
	runner := &fakeRunner{responses: responses}
	api := &fakeAPI{branch: "develop"}
	collector := newCollector(runner, api, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if result.Facts.DefaultBranch != "develop" {
		t.Errorf("DefaultBranch = %q, want develop", result.Facts.DefaultBranch)
	}
	if api.calls != 1 {
		t.Errorf("API calls = %d, want 1", api.calls)
	}
}

func TestDefaultBranchAPISkippedWhenLocalResolves(t *testing.T) {
	runner := &fakeRunner{responses: cleanRepo("/work/demo", "feature/x")}
	api := &fakeAPI{branch: "develop"}
	collector := newCollector(runner, api, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if result.Facts.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want main", result.Facts.DefaultBranch)
	}
	if api.calls != 0 {
		t.Errorf("API calls = %d, want 0", api.calls)
	}
}

func TestDefaultBranchAPIFailureDegrades(t *testing.T) {
	responses := cleanRepo("/work/demo", "feature/x")
	delete(responses, "git symbolic-ref refs/remotes/origin/HEAD")
	responses["git remote get-url origin"] = "https://github.com/saint0x/preflight"
	runner := &fakeRunner{responses: responses}
	api := &fakeAPI{err: errors.New("api down")}
	collector := newCollector(runner, api, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if result.Facts.DefaultBranch != "" {
		t.Errorf("DefaultBranch = %q, want undetermined", result.Facts.DefaultBranch)
	}
}

func TestDefaultBranchAPISkippedForNonGitHubRemote(t *testing.T) {
	responses := cleanRepo("/work/demo", "feature/x")
	delete(responses, "git symbolic-ref refs/remotes/origin/HEAD")
	responses["git remote get-url origin"] = "https://gitlab.com/saint0x/preflight.git"
	runner := &fakeRunner{responses: responses}
	api := &fakeAPI{branch: "develop"}
	collector := newCollector(runner, api, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if result.Facts.DefaultBranch != "" {
		t.Errorf("DefaultBranch = %q, want undetermined", result.Facts.DefaultBranch)
	}
	if api.calls != 0 {
		t.Errorf("API calls = %d, want 0", api.calls)
	}
}

func TestIntegrationFlags(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "todos"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	runner := &fakeRunner{responses: cleanRepo(root, "feature/x")}
	collector := newCollector(runner, nil, &config.Environment{LinearKeyPresent: true})

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if !result.Flags.LinearKeyPresent {
		t.Error("LinearKeyPresent = false, want true")
	}
	if !result.Flags.TodosDirExists {
		t.Error("TodosDirExists = false, want true")
	}
}

func TestIntegrationFlagsAbsent(t *testing.T) {
	runner := &fakeRunner{responses: cleanRepo(t.TempDir(), "feature/x")}
	collector := newCollector(runner, nil, nil)

	result, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if result.Flags.LinearKeyPresent || result.Flags.TodosDirExists {
		t.Errorf("Flags = %+v, want both false", result.Flags)
	}
}
