package dsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	doc := `
start_node: split
edges:
  split:
    next: refine
  refine:
    condition_key: summary_length
    condition_op: ">"
    condition_value: 200
    if_true: refine
initial_state:
  text: hello world
  max_chunk_size: 50
`
	def, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "split", def.StartNode)
	assert.Equal(t, "refine", def.Edges["split"].Next)

	refine := def.Edges["refine"]
	assert.Equal(t, "summary_length", refine.ConditionKey)
	assert.Equal(t, ">", refine.ConditionOp)
	assert.Equal(t, 200, refine.ConditionValue)
	assert.Equal(t, "refine", refine.IfTrue)
	assert.Empty(t, refine.IfFalse)

	assert.Equal(t, "hello world", def.InitialState["text"])
	assert.Equal(t, 50, def.InitialState["max_chunk_size"])
}

func TestParse_JSON(t *testing.T) {
	doc := `{"start_node": "A", "edges": {"A": {"next": "B"}}}`
	def, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "B", def.Edges["A"].Next)
	assert.NotNil(t, def.InitialState)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         ``,
		"invalid yaml":  `start_node: [`,
		"missing start": `edges: {}`,
		"unknown key":   "start_node: A\nedges:\n  A:\n    if_ture: B\n",
		"wrong type":    "start_node: A\nedges: [1, 2]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_node: A\n"), 0644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A", def.StartNode)
	assert.Empty(t, def.Edges)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefinition_RoundTrip(t *testing.T) {
	def := New("a").Node("a").Next("b").Build()
	data, err := def.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, def.Edges, back.Edges)
}

func TestParseState(t *testing.T) {
	s, err := ParseState(`{"count": 10, "name": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, float64(10), s["count"])

	s, err = ParseState("")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = ParseState("{")
	assert.Error(t, err)
}
