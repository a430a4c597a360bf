package wpcli_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
	"github.com/funkpd/autolocal/pkg/utils/runner"
)

// fakeRunner replays canned results and records every command it receives.
type fakeRunner struct {
	results []runner.CommandResult
	err     error
	calls   []runner.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (runner.CommandResult, error) {
	f.calls = append(f.calls, cmd)

	if f.err != nil {
		return runner.CommandResult{}, f.err
	}

	if len(f.results) == 0 {
		return runner.CommandResult{}, nil
	}

	res := f.results[0]
	f.results = f.results[1:]

	return res, nil
}

func newTestClient(t *testing.T, fake *fakeRunner) *wpcli.Client {
	t.Helper()

	log, err := runlog.OpenWithRunID(t.TempDir(), "testrun1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	return wpcli.NewClient("/usr/bin/wp", "/srv/http", fake, log)
}

func TestRunAppendsQuietAndSitePath(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	client := newTestClient(t, fake)

	res, err := client.Run(context.Background(), "demo.local", "core", "is-installed")
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	require.Len(t, fake.calls, 1)
	require.Contains(t, fake.calls[0].Args, "--quiet")
	require.Contains(t, fake.calls[0].Args, "--path=/srv/http/demo.local")
	require.Contains(t, fake.calls[0].Env, "WP_CLI_DISABLE_AUTO_CHECK_UPDATE=1")
}

func TestRunJSONParsesArrayPayload(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{results: []runner.CommandResult{
		{Stdout: `[{"ID":12,"post_title":"Home"}]`},
	}}
	client := newTestClient(t, fake)

	res, err := client.RunJSON(context.Background(), "demo.local", "post", "list")
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	row, ok := res.FirstRow()
	require.True(t, ok)
	require.InEpsilon(t, float64(12), row["ID"], 0.0001)

	require.Contains(t, fake.calls[0].Args, "--format=json")
}

func TestRunJSONToleratesNoisyOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{results: []runner.CommandResult{
		{Stdout: "PHP Notice: deprecation ahead\n\x1b[32m[{\"name\":\"elementor\",\"status\":\"active\"}]\x1b[0m"},
	}}
	client := newTestClient(t, fake)

	res, err := client.RunJSON(context.Background(), "demo.local", "plugin", "list")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "elementor", res.Rows[0]["name"])
}

func TestRunJSONScalarPayload(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{results: []runner.CommandResult{
		{Stdout: `"3.25.4"`},
	}}
	client := newTestClient(t, fake)

	res, err := client.RunJSON(context.Background(), "demo.local", "plugin", "get", "elementor", "--field=version")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	require.Equal(t, "3.25.4", res.Value)
}

func TestResultPayloadNeverNil(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fake *fakeRunner
		call func(*wpcli.Client) (wpcli.Result, error)
	}{
		{
			name: "non-zero exit",
			fake: &fakeRunner{results: []runner.CommandResult{{ExitCode: 1, Stderr: "boom"}}},
			call: func(c *wpcli.Client) (wpcli.Result, error) {
				return c.RunJSON(context.Background(), "demo.local", "post", "list")
			},
		},
		{
			name: "empty stdout where payload expected",
			fake: &fakeRunner{results: []runner.CommandResult{{Stdout: ""}}},
			call: func(c *wpcli.Client) (wpcli.Result, error) {
				return c.RunJSON(context.Background(), "demo.local", "post", "list")
			},
		},
		{
			name: "runner failure",
			fake: &fakeRunner{err: io.ErrUnexpectedEOF},
			call: func(c *wpcli.Client) (wpcli.Result, error) {
				return c.RunJSON(context.Background(), "demo.local", "post", "list")
			},
		},
		{
			name: "empty porcelain output",
			fake: &fakeRunner{results: []runner.CommandResult{{Stdout: "\n"}}},
			call: func(c *wpcli.Client) (wpcli.Result, error) {
				return c.RunPorcelain(context.Background(), "demo.local", "post", "create", "--porcelain")
			},
		},
	}

	for _, testCase := range cases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, testCase.fake)

			res, err := testCase.call(client)
			require.NoError(t, err)
			require.False(t, res.Succeeded)
			require.NotNil(t, res.Rows)
			require.NotNil(t, res.Fields)
			require.Empty(t, res.Rows)
			require.Empty(t, res.Fields)
		})
	}
}

func TestRunPorcelainTakesLastLine(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{results: []runner.CommandResult{
		{Stdout: "Importing media...\n42\n"},
	}}
	client := newTestClient(t, fake)

	res, err := client.RunPorcelain(context.Background(), "demo.local", "media", "import", "x.jpg", "--porcelain")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	require.Equal(t, "42", res.Value)
}

func TestRunWithStdinConnectsReader(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	client := newTestClient(t, fake)

	blob := strings.NewReader(`[{"id":1}]`)

	res, err := client.RunWithStdin(context.Background(), "demo.local", blob, "post", "meta", "update", "7", "_elementor_data")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	require.NotNil(t, fake.calls[0].Stdin)
}

func TestEmptyArgvIsProgrammerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeRunner{})

	_, err := client.Run(context.Background(), "demo.local")
	require.ErrorIs(t, err, wpcli.ErrEmptyCommand)
}

func TestRunJSONAtPathTargetsExplicitRoot(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{results: []runner.CommandResult{{Stdout: `[]`}}}
	client := newTestClient(t, fake)

	res, err := client.RunJSONAtPath(context.Background(), "/srv/http/vault.local", "post", "list")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	require.Contains(t, fake.calls[0].Args, "--path=/srv/http/vault.local")
}
