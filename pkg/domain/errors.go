package domain

import "errors"

// ErrGraphNotFound is returned when a graph ID cannot be found in the store.
var ErrGraphNotFound = errors.New("graph not found")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrNodeNotFound is returned when a graph references a node that was never registered.
var ErrNodeNotFound = errors.New("node not found")

// ErrToolNotFound is returned when a tool name is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrIncomparable is returned when a condition compares values of incompatible types.
var ErrIncomparable = errors.New("incomparable types")

// ErrMaxStepsExceeded is returned when a run exceeds the configured step limit.
var ErrMaxStepsExceeded = errors.New("max steps exceeded")
