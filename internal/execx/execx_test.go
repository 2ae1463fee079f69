package execx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout, stderr string
	err            error
	got            []string
}

func (s *stubRunner) Run(_ context.Context, _ string, name string, args ...string) ([]byte, []byte, error) {
	s.got = append([]string{name}, args...)
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestGitTrimsStdout(t *testing.T) {
	r := &stubRunner{stdout: "  abc123\n"}
	out, err := Git(context.Background(), r, ".", "rev-parse", "HEAD")
	require.NoError(t, err)
	require.Equal(t, "abc123", out)
	require.Equal(t, []string{"git", "rev-parse", "HEAD"}, r.got)
}

func TestGitエラーは標準エラーの1行目を持つ(t *testing.T) {
	exit := errors.New("exit status 128")
	r := &stubRunner{stderr: "fatal: not a git repository\nhint: more\n", err: exit}
	_, err := Git(context.Background(), r, ".", "config", "--get", "remote.origin.url")
	require.ErrorIs(t, err, exit)
	require.EqualError(t, err, "git config --get remote.origin.url: exit status 128: fatal: not a git repository")

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "fatal: not a git repository", Describe(err))
	require.Equal(t, "boom", Describe(errors.New("boom")))
}

func TestCommandRunnerMissingBinary(t *testing.T) {
	_, _, err := CommandRunner{}.Run(context.Background(), "", "i18nscan-definitely-missing-binary")
	require.True(t, IsNotFound(err), "err = %v", err)
	require.False(t, IsNotFound(errors.New("exit status 1")))
}
