package domain

// LogEntry records one node invocation and the state right after it.
type LogEntry struct {
	Node          string `json:"node"`
	StateSnapshot State  `json:"state_snapshot"`
}

// Run is the stored outcome of a completed traversal.
type Run struct {
	ID         string     `json:"id"`
	GraphID    string     `json:"graph_id"`
	FinalState State      `json:"final_state"`
	Log        []LogEntry `json:"log"`
}

// Clone returns a copy of the run whose top-level state maps are not shared.
func (r *Run) Clone() *Run {
	out := &Run{
		ID:         r.ID,
		GraphID:    r.GraphID,
		FinalState: r.FinalState.Clone(),
		Log:        make([]LogEntry, len(r.Log)),
	}
	for i, entry := range r.Log {
		out.Log[i] = LogEntry{Node: entry.Node, StateSnapshot: entry.StateSnapshot.Clone()}
	}
	return out
}

// Nodes returns the visited node names in execution order.
func (r *Run) Nodes() []string {
	out := make([]string, len(r.Log))
	for i, entry := range r.Log {
		out[i] = entry.Node
	}
	return out
}

// RunResult is returned to the caller of a run.
type RunResult struct {
	RunID      string     `json:"run_id"`
	FinalState State      `json:"final_state"`
	Log        []LogEntry `json:"log"`
}
