package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/saint0x/preflight/pkg/config"
	"github.com/saint0x/preflight/pkg/gh"
	"github.com/saint0x/preflight/pkg/git"
	"github.com/saint0x/preflight/pkg/github"
	"github.com/saint0x/preflight/pkg/log"
	"github.com/saint0x/preflight/pkg/preflight"
	"github.com/saint0x/preflight/pkg/run"
)

var (
	debug = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	env := config.FromEnv()
	logger := log.New(*debug || env.Debug)

	runner := run.New(logger)
	gitClient := git.New(logger, runner)
	ghClient := gh.New(logger, runner)

	var api preflight.DefaultBranchAPI
	if client := github.New(logger, env.GitHubToken); client != nil {
		api = client
	}

	collector := preflight.NewCollector(logger, gitClient, ghClient, api, env)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	result, err := collector.Collect(context.Background())
	if err != nil {
		enc.Encode(preflight.Failure{OK: false, Error: "Not inside a git repository"})
		os.Exit(1)
	}

	if err := enc.Encode(preflight.BuildReport(result)); err != nil {
		logger.Error("Failed to encode report: %v", err)
		os.Exit(1)
	}
}
