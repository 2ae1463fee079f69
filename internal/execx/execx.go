package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner は外部コマンドを実行するための最小インターフェースです。
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// CommandRunner runs real processes. Env entries are appended to the
// parent environment.
type CommandRunner struct {
	Env []string
}

func (r CommandRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// gitEnv keeps git from prompting and its messages in English.
var gitEnv = []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}

// DefaultRunner は git 向けの環境変数を付けた CommandRunner を返します。
func DefaultRunner() Runner {
	return CommandRunner{Env: gitEnv}
}

// CommandError は失敗したコマンドと、その標準エラーの要約です。
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Git runs git in dir and returns trimmed stdout. Failures come back as
// *CommandError carrying the first line of stderr.
func Git(ctx context.Context, r Runner, dir string, args ...string) (string, error) {
	if r == nil {
		r = DefaultRunner()
	}
	stdout, stderr, err := r.Run(ctx, dir, "git", args...)
	if err != nil {
		line, _, _ := strings.Cut(strings.TrimSpace(string(stderr)), "\n")
		return "", &CommandError{Args: append([]string{"git"}, args...), Stderr: line, Err: err}
	}
	return strings.TrimSpace(string(stdout)), nil
}

// IsNotFound reports whether the executable itself could not be found.
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}

// Describe is a short form for log fields: the stderr line when there is
// one, the error otherwise.
func Describe(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) && ce.Stderr != "" {
		return ce.Stderr
	}
	return fmt.Sprint(err)
}
