package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/stepflow/pkg/domain"
)

// GraphValidationError lists the problems found in a graph definition.
type GraphValidationError struct {
	GraphID          string
	MissingNodes     []string
	UnknownOperators map[string]string
}

func (e *GraphValidationError) Error() string {
	msg := fmt.Sprintf("graph '%s' is invalid", e.GraphID)
	if len(e.MissingNodes) > 0 {
		msg += fmt.Sprintf(": unregistered nodes %v", e.MissingNodes)
	}
	if len(e.UnknownOperators) > 0 {
		msg += fmt.Sprintf(": unknown operators %v", e.UnknownOperators)
	}
	return msg
}

// Validate checks that every node the graph can reach is registered and that
// every conditional edge uses a supported operator.
// The execution loop does not call it; runs discover missing nodes lazily.
func (e *Engine) Validate(graph *domain.Graph) error {
	if graph == nil {
		return fmt.Errorf("cannot validate nil graph")
	}

	verr := &GraphValidationError{GraphID: graph.ID}
	if graph.StartNode == "" {
		verr.MissingNodes = append(verr.MissingNodes, "<start>")
	}

	for _, name := range graph.NodeNames() {
		if _, err := e.nodes.Node(name); err != nil {
			verr.MissingNodes = append(verr.MissingNodes, name)
		}
	}
	sort.Strings(verr.MissingNodes)

	for from, edge := range graph.Edges {
		if edge.IsConditional() && !domain.Operator(edge.ConditionOp).Valid() {
			if verr.UnknownOperators == nil {
				verr.UnknownOperators = map[string]string{}
			}
			verr.UnknownOperators[from] = edge.ConditionOp
		}
	}

	if len(verr.MissingNodes) > 0 || len(verr.UnknownOperators) > 0 {
		return verr
	}
	return nil
}
