package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...stepflow.Option) *stepflow.Engine {
	eng := stepflow.New(opts...)
	eng.RegisterNodeFunc("inc", func(ctx context.Context, s domain.State) (domain.State, error) {
		n, _ := s["n"].(float64)
		s["n"] = n + 1
		return s, nil
	})
	eng.RegisterNodeFunc("done", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["done"] = true
		return s, nil
	})
	return eng
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createGraph(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/graph/create", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GraphCreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.GraphID)
	return resp.GraphID
}

func TestCreateRunAndState(t *testing.T) {
	h := NewHandler(newTestEngine())

	graphID := createGraph(t, h, `{
		"start_node": "inc",
		"edges": {
			"inc": {"condition_key": "n", "condition_op": "<", "condition_value": 3, "if_true": "inc", "if_false": "done"}
		}
	}`)

	w := do(t, h, http.MethodPost, "/graph/run", `{"graph_id": "`+graphID+`", "initial_state": {"n": 0}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res domain.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, float64(3), res.FinalState["n"])
	assert.Equal(t, true, res.FinalState["done"])
	require.Len(t, res.Log, 4)
	assert.Equal(t, "done", res.Log[3].Node)

	w = do(t, h, http.MethodGet, "/graph/state/"+res.RunID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var state RunStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, res.RunID, state.RunID)
	assert.Equal(t, res.FinalState, state.State)
}

func TestRunGraph_UnknownGraph(t *testing.T) {
	h := NewHandler(newTestEngine())

	w := do(t, h, http.MethodPost, "/graph/run", `{"graph_id": "nope", "initial_state": {}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "Unknown graph_id"}`, w.Body.String())
}

func TestRunGraph_NodeFailure(t *testing.T) {
	h := NewHandler(newTestEngine())
	graphID := createGraph(t, h, `{"start_node": "missing", "edges": {}}`)

	w := do(t, h, http.MethodPost, "/graph/run", `{"graph_id": "`+graphID+`", "initial_state": {}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "missing")
}

func TestGetRunState_Unknown(t *testing.T) {
	h := NewHandler(newTestEngine())

	w := do(t, h, http.MethodGet, "/graph/state/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "Unknown run_id"}`, w.Body.String())
}

func TestBadRequestBodies(t *testing.T) {
	h := NewHandler(newTestEngine())

	for _, path := range []string{"/graph/create", "/graph/run"} {
		w := do(t, h, http.MethodPost, path, `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(newTestEngine())

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "stepflow-http", info["app"])
	assert.Equal(t, strings.TrimSpace(stepflow.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/graph/run"))

	h := NewHandler(newTestEngine())
	w := do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("openapi:")))
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(newTestEngine())

	w := do(t, h, http.MethodOptions, "/graph/run", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "stepflow_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := NewHandler(newTestEngine(), WithMetrics(reg))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stepflow_test_total 1")

	// Not mounted without a gatherer.
	w = do(t, NewHandler(newTestEngine()), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	streams := NewStreamManager(nil)
	eng := newTestEngine(stepflow.WithLifecycleHooks(streams.Hooks()))
	srv := httptest.NewServer(NewHandler(eng, WithStreams(streams)))
	defer srv.Close()

	graphID, err := eng.CreateGraph(context.Background(), "done", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?graph_id="+graphID, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	_, err = eng.Run(context.Background(), graphID, domain.State{})
	require.NoError(t, err)

	var types []string
	for len(types) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
		if !ok || data == "connected" {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(data), &event))
		types = append(types, event["type"].(string))
	}
	assert.Equal(t, []string{"node_enter", "node_leave", "run_complete"}, types)
}

func TestSubscribeEvents_MissingGraphID(t *testing.T) {
	h := NewHandler(newTestEngine(), WithStreams(NewStreamManager(nil)))
	w := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamManager_UnsubscribeIsIdempotent(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("g")

	sm.Broadcast("g", "hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Broadcasting without subscribers is a no-op.
	sm.Broadcast("g", "ignored")
}
