// Package run executes external commands for the fact collectors.
//
// Commands are invoked directly via os/exec rather than through library
// bindings so that user configuration (credential helpers, aliases, SSH
// keys) applies exactly as it would on the command line. Only the exit
// status and stdout text of a command matter to callers.
package run

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/saint0x/preflight/pkg/log"
)

// DefaultTimeout bounds every external invocation. A hung git or gh
// process is treated the same as a failed one.
const DefaultTimeout = 10 * time.Second

// CLI runs commands against the real system.
type CLI struct {
	logger  *log.Logger
	timeout time.Duration
}

// New creates a CLI runner with the default per-command timeout.
func New(logger *log.Logger) *CLI {
	return &CLI{logger: logger, timeout: DefaultTimeout}
}

// Run executes name with args and returns trimmed stdout. A non-zero
// exit, a missing binary, or a timeout all surface as a non-nil error;
// callers map that to their documented fallback value.
func (c *CLI) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		c.logger.Debug("%s %s failed: %v", name, strings.Join(args, " "), err)
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// LookPath reports where name resolves on PATH, if anywhere.
func (c *CLI) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
