package main

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/stepflow/pkg/dsl"
	"github.com/aretw0/stepflow/pkg/workflows/summarize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, generate(dir))

	def, err := dsl.Load(filepath.Join(dir, "graph.yaml"))
	require.NoError(t, err)

	want := summarize.Graph()
	assert.Equal(t, want.StartNode, def.StartNode)
	assert.Equal(t, want.Edges, def.Edges)
	assert.EqualValues(t, want.InitialState, def.InitialState)
}
