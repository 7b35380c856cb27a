package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// ConditionEvaluator decides the outcome of a conditional edge against the current state.
type ConditionEvaluator func(state domain.State, edge domain.Edge) (bool, error)

// ComparisonError is returned when a condition compares values that have no common ordering.
type ComparisonError struct {
	Key   string
	Op    domain.Operator
	Left  any
	Right any
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot evaluate %q %s %v: %T and %T are incomparable", e.Key, e.Op, e.Right, e.Left, e.Right)
}

func (e *ComparisonError) Unwrap() error {
	return domain.ErrIncomparable
}

// Evaluate is the default ConditionEvaluator.
//
// It returns false when the edge is not conditional, when the key is missing
// from the state (or holds nil), and when the operator is unknown. Operators
// are matched exactly, so " > " is unknown. Numbers of
// any Go kind compare numerically, strings lexically and bools by equality.
// Mixing types, or ordering values that have no order, yields a *ComparisonError.
func Evaluate(state domain.State, edge domain.Edge) (bool, error) {
	if edge.ConditionKey == "" || edge.ConditionOp == "" {
		return false, nil
	}

	value, ok := state.Lookup(edge.ConditionKey)
	if !ok {
		return false, nil
	}

	op := domain.Operator(edge.ConditionOp)
	if !op.Valid() {
		return false, nil
	}

	res, ok := compare(op, value, edge.ConditionValue)
	if !ok {
		return false, &ComparisonError{
			Key:   edge.ConditionKey,
			Op:    op,
			Left:  value,
			Right: edge.ConditionValue,
		}
	}
	return res, nil
}

// compare applies op to left and right. The second result is false when the
// operands cannot be compared with op.
func compare(op domain.Operator, left, right any) (bool, bool) {
	if l, ok := toFloat(left); ok {
		r, ok := toFloat(right)
		if !ok || math.IsNaN(l) || math.IsNaN(r) {
			return false, false
		}
		return ordered(op, cmpFloat(l, r)), true
	}

	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return false, false
		}
		return ordered(op, strings.Compare(l, r)), true
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false, false
		}
		return equality(op, l == r)
	}

	if right == nil || reflect.TypeOf(left) != reflect.TypeOf(right) {
		return false, false
	}
	return equality(op, reflect.DeepEqual(left, right))
}

func ordered(op domain.Operator, c int) bool {
	switch op {
	case domain.OpGreater:
		return c > 0
	case domain.OpLess:
		return c < 0
	case domain.OpGreaterEqual:
		return c >= 0
	case domain.OpLessEqual:
		return c <= 0
	case domain.OpEqual:
		return c == 0
	case domain.OpNotEqual:
		return c != 0
	}
	return false
}

// equality handles operand types that only support == and !=.
func equality(op domain.Operator, equal bool) (bool, bool) {
	switch op {
	case domain.OpEqual:
		return equal, true
	case domain.OpNotEqual:
		return !equal, true
	}
	return false, false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
