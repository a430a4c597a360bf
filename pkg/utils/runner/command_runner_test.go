package runner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/utils/runner"
)

func TestExecCommandRunner_CapturesStdout(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewExecCommandRunner()

	res, err := execRunner.Run(context.Background(), runner.Command{
		Name: "sh",
		Args: []string{"-c", "echo hello"},
	})

	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Equal(t, "hello\n", res.Stdout)
}

func TestExecCommandRunner_ReportsExitCodeWithoutError(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewExecCommandRunner()

	res, err := execRunner.Run(context.Background(), runner.Command{
		Name: "sh",
		Args: []string{"-c", "echo oops >&2; exit 3"},
	})

	require.NoError(t, err)
	require.Equal(t, 3, res.ExitCode)
	require.Equal(t, "oops\n", res.Stderr)
}

func TestExecCommandRunner_StdinIsConnected(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewExecCommandRunner()

	res, err := execRunner.Run(context.Background(), runner.Command{
		Name:  "cat",
		Stdin: strings.NewReader("piped content"),
	})

	require.NoError(t, err)
	require.Equal(t, "piped content", res.Stdout)
}

func TestExecCommandRunner_EmptyNameIsError(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewExecCommandRunner()

	_, err := execRunner.Run(context.Background(), runner.Command{})

	require.ErrorIs(t, err, runner.ErrEmptyCommand)
}

func TestExecCommandRunner_MissingProgramIsError(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewExecCommandRunner()

	_, err := execRunner.Run(context.Background(), runner.Command{
		Name: "definitely-not-a-real-binary-xyz",
	})

	require.Error(t, err)
}
