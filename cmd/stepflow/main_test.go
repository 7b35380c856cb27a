package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stepflow version "+strings.TrimSpace(stepflow.Version)+"\n", out)
}

func TestRunCommand_JSON(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "hello.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("start_node: split_text\nedges:\n  split_text: {next: generate_summaries}\n"), 0644))

	out, err := execute(t, "run", doc, "--json", "--state", `{"text": "One. Two."}`, "--log-level", "error")
	require.NoError(t, err)

	var res domain.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []any{"One"}, res.FinalState["summaries"])
	assert.Len(t, res.Log, 2)
}

func TestRunCommand_RequiresDocument(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRootCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: cassandra\n"), 0644))

	_, err := execute(t, "version", "--config", path)
	assert.ErrorContains(t, err, "unknown backend")
}
