// Package main provides tests for the leapdbml CLI.
package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdbml/internal/cli"
	"github.com/leapstack-labs/leapdbml/internal/cli/commands"
	"github.com/leapstack-labs/leapdbml/internal/cli/testutil"
)

// run executes the root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapdbml v"+cli.Version)
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := cli.NewRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "check", "fmt", "tokens", "inspect", "export", "deps", "watch", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "verbose", "output", "schema-dir", "include", "concurrency"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestCheckCommand_UsesConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := run(t, "check", "--config", filepath.Join(dir, "leapdbml.yaml"), "-o", "json")
	require.NoError(t, err)

	var got commands.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Summary.Total)
	assert.Equal(t, 3, got.Summary.Tables)
}

func TestCheckCommand_OutputFromEnv(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Setenv("LEAPDBML_OUTPUT", "json")

	out, _, err := run(t, "check", "--config", filepath.Join(dir, "leapdbml.yaml"))
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
}

func TestCheckCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.dbml")
	testutil.WriteFile(t, path, testutil.BrokenSchema)

	out, _, err := run(t, "check", "-o", "markdown", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed to compile")
	assert.Contains(t, out, "- **FAIL**")
	assert.Contains(t, out, ":4:")
}

func TestFmtCommand_FormatFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.dbml")
	testutil.WriteFile(t, path, "Table t {\n  id int\n}\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "defaults",
			want: "Table t {\n  id int\n}\n",
		},
		{
			name: "tab indent",
			args: []string{"--indent", "\t"},
			want: "Table t {\n\tid int\n}\n",
		},
		{
			name: "crlf",
			args: []string{"--linebreak", "crlf"},
			want: "Table t {\r\n  id int\r\n}\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"fmt"}, tt.args...)
			args = append(args, path)
			out, _, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad output", []string{"check", "-o", "xml"}, "invalid output"},
		{"negative concurrency", []string{"check", "--concurrency=-1"}, "concurrency must not be negative"},
		{"bad include", []string{"check", "--include", "[a"}, "invalid include pattern"},
		{"bad linebreak", []string{"fmt", "--linebreak", "cr", "x.dbml"}, "invalid format.linebreak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := run(t, "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "leapdbml")
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	require.Error(t, err)
}
