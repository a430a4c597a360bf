package cmd_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/spf13/cobra"

	"github.com/funkpd/autolocal/pkg/cli/cmd"
)

var errRootTest = errors.New("boom")

func TestMain(m *testing.M) {
	exitCode := m.Run()

	snaps.Clean(m, snaps.CleanOpts{Sort: true})

	os.Exit(exitCode)
}

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	version := "1.2.3"
	commit := "abc123"
	date := "2026-08-29"
	root := cmd.NewRootCmd(version, commit, date)

	expectedVersion := version + " (Built on " + date + " from Git SHA " + commit + ")"
	if root.Version != expectedVersion {
		t.Fatalf("unexpected version string. want %q, got %q", expectedVersion, root.Version)
	}
}

func TestExecuteShowsHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsHelpFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteWithNonexistentCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"nonexistent"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	snaps.MatchSnapshot(t, out.String())
}

func TestCreateRequiresDomainArgument(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"create"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Expected error but got none")
	}
}

func TestRemoveRequiresDomainArgument(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"remove"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Expected error but got none")
	}
}

func TestCreateHasPresetAndForceFlags(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	var create *cobra.Command

	for _, sub := range root.Commands() {
		if sub.Name() == "create" {
			create = sub
		}
	}

	if create == nil {
		t.Fatal("expected create subcommand to exist")
	}

	if create.Flags().Lookup("preset") == nil {
		t.Fatal("expected create to have a --preset flag")
	}

	if create.Flags().Lookup("force") == nil {
		t.Fatal("expected create to have a --force flag")
	}
}

func TestRootHasConfigAndTimingFlags(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("expected root to have a persistent --config flag")
	}

	timing, err := root.PersistentFlags().GetBool("timing")
	if err != nil {
		t.Fatalf("expected to read timing flag: %v", err)
	}

	if timing {
		t.Fatal("expected --timing to default to false")
	}
}

func TestExecuteReturnsError(t *testing.T) {
	t.Parallel()

	failing := &cobra.Command{
		Use: "fail",
		RunE: func(*cobra.Command, []string) error {
			return errRootTest
		},
	}

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetArgs([]string{"fail"})
	root.AddCommand(failing)

	err := cmd.Execute(root)
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	if !errors.Is(err, errRootTest) {
		t.Fatalf("Expected error to wrap %v, got %v", errRootTest, err)
	}
}

func TestExecuteWrapperSuccess(t *testing.T) {
	t.Parallel()

	succeeding := &cobra.Command{
		Use: "ok",
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetArgs([]string{"ok"})
	root.AddCommand(succeeding)

	err := cmd.Execute(root)
	if err != nil {
		t.Fatalf("Expected no error but got %v", err)
	}
}
