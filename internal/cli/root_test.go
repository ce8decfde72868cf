package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs rootCmd with args and returns stdout and stderr with
// styling stripped. Flags are reset first since cobra keeps their values
// between executions.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return ansi.Strip(stdout.String()), ansi.Strip(stderr.String()), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestGetVersion(t *testing.T) {
	version := getVersion()
	assert.Contains(t, version, "dev")
	assert.Contains(t, version, "unknown")
}

func TestInitLogging(t *testing.T) {
	require.NotPanics(t, func() {
		initLogging()
	})
}

func TestInitConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NotPanics(t, func() {
		initConfig()
	})
}

func TestRootFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name     string
		defValue string
	}{
		{"config", ""},
		{"log-level", "disabled"},
		{"output", "text"},
		{"quiet", "false"},
		{"verbose", "false"},
		{"no-color", "false"},
		{"debug", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := flags.Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}

	assert.Equal(t, "q", flags.Lookup("quiet").Shorthand)
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
}

func TestRootCommands(t *testing.T) {
	for _, name := range []string{"parse", "derive", "eval", "format", "batch", "functions", "repl", "serve", "version", "update", "schema"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}

	cmd, _, err := rootCmd.Find([]string{"d"})
	require.NoError(t, err)
	assert.Equal(t, "derive", cmd.Name())
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCommand(t, "integrate", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
