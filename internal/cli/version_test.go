package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "drv dev")
	assert.Contains(t, stdout, "commit")
	assert.Contains(t, stdout, "platform")
}

func TestVersionCommandShort(t *testing.T) {
	stdout, _, err := executeCommand(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestVersionCommandJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "version", "--output", "json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, currentVersionInfo(), info)
}

func TestVersionCommandYAML(t *testing.T) {
	stdout, _, err := executeCommand(t, "version", "--output", "yaml")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GoVersion, info.GoVersion)
}

func TestPrintText(t *testing.T) {
	info := VersionInfo{
		Version:   "1.0.0",
		Commit:    "abc123",
		Date:      "2024-01-01",
		BuiltBy:   "goreleaser",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
	}

	var buf bytes.Buffer
	printText(&buf, info, false)
	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "drv 1.0.0\n")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "goreleaser")
	assert.Contains(t, out, "linux/amd64")

	buf.Reset()
	printText(&buf, info, true)
	assert.Equal(t, "1.0.0\n", buf.String())
}

func TestBuildVariables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, Date)
	assert.NotEmpty(t, GoVersion)
	assert.Contains(t, GoVersion, "go")
}
