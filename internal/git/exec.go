package git

import (
	"context"
	"strings"

	"github.com/raphi011/wts/internal/cmd"
)

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...)
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}

// outputGitLine returns the first line of stdout, trimmed.
func outputGitLine(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := outputGit(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// exitedWith reports whether err is a git exit with the given status.
func exitedWith(err error, code int) bool {
	return err != nil && cmd.ExitCode(err) == code
}
