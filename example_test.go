package stepflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
)

// ExampleNew demonstrates a conditional loop: the node doubles "n" until it reaches 100.
func ExampleNew() {
	eng := stepflow.New()
	eng.RegisterNodeFunc("double", func(ctx context.Context, s domain.State) (domain.State, error) {
		n, _ := s["n"].(int)
		s["n"] = n * 2
		return s, nil
	})

	ctx := context.Background()
	graphID, err := eng.CreateGraph(ctx, "double", map[string]domain.Edge{
		"double": {ConditionKey: "n", ConditionOp: "<", ConditionValue: 100, IfTrue: "double"},
	})
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Run(ctx, graphID, domain.State{"n": 3})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.FinalState["n"], len(res.Log))
	// Output: 192 6
}
