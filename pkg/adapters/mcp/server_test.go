package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *stepflow.Engine) {
	t.Helper()
	eng := stepflow.New()
	eng.RegisterNodeFunc("greet", func(ctx context.Context, s domain.State) (domain.State, error) {
		name, _ := s["name"].(string)
		s["greeting"] = "hello " + name
		return s, nil
	})
	eng.RegisterTool("echo", func(ctx context.Context, args map[string]any) (any, error) { return args, nil })
	return NewServer(eng, WithCatalog(eng.Registry())), eng
}

func TestCreateRunAndGetState(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	created, err := s.handleCreateGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"start_node": "greet",
		"edges":      `{"greet": {}}`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.GraphID)

	res, err := s.handleRunGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"graph_id":      created.GraphID,
		"initial_state": `{"name": "ada"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello ada", res.FinalState["greeting"])
	require.Len(t, res.Log, 1)
	assert.Equal(t, "greet", res.Log[0].Node)

	state, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"run_id": res.RunID})
	require.NoError(t, err)
	assert.Equal(t, res.RunID, state.RunID)
	assert.Equal(t, "hello ada", state.State["greeting"])
}

func TestCreateGraph_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleCreateGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.ErrorContains(t, err, "start_node is required")

	_, err = s.handleCreateGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"start_node": "greet",
		"edges":      `[not json`,
	})
	assert.ErrorContains(t, err, "invalid edges")
}

func TestRunGraph_Errors(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleRunGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{"graph_id": "nope"})
	assert.ErrorContains(t, err, "unknown graph_id")

	graphID, err := eng.CreateGraph(ctx, "missing", nil)
	require.NoError(t, err)
	_, err = s.handleRunGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{"graph_id": graphID})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	_, err = s.handleRunGraph(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"graph_id":      graphID,
		"initial_state": `{`,
	})
	assert.ErrorContains(t, err, "invalid initial_state")
}

func TestGetState_Unknown(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.handleGetState(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"run_id": "nope"})
	assert.ErrorContains(t, err, "unknown run_id")
}

func TestGetGraph(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	graphID, err := eng.CreateGraph(ctx, "greet", map[string]domain.Edge{"greet": {Next: "other"}})
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_graph"
	req.Params.Arguments = map[string]any{"graph_id": graphID}

	result, err := s.handleGetGraph(ctx, req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var graph domain.Graph
	require.NoError(t, json.Unmarshal([]byte(text.Text), &graph))
	assert.Equal(t, "greet", graph.StartNode)
	assert.Equal(t, "other", graph.Edges["greet"].Next)

	req.Params.Arguments = map[string]any{"graph_id": "nope"}
	result, err = s.handleGetGraph(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCatalogSnapshot(t *testing.T) {
	s, _ := newTestServer(t)

	snap := s.catalogSnapshot()
	assert.Equal(t, []string{"greet"}, snap["nodes"])
	assert.Equal(t, []string{"echo"}, snap["tools"])
}
