package config

import (
	"os"
)

// Environment holds the environment snapshot taken once at startup.
// LinearKeyPresent is a presence check only; the key's value is never
// read past the empty test.
type Environment struct {
	GitHubToken      string
	LinearKeyPresent bool
	Debug            bool
}

// FromEnv reads the environment variables the tool cares about.
// Nothing is validated here: a missing token just disables the API
// fallback, and a missing Linear key is itself a reportable fact.
func FromEnv() *Environment {
	return &Environment{
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		LinearKeyPresent: os.Getenv("LINEAR_API_KEY") != "",
		Debug:            os.Getenv("DEBUG") == "true",
	}
}
