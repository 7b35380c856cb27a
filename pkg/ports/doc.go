/*
Package ports defines the driven ports (interfaces) for the stepflow engine.

These interfaces decouple the execution loop from external implementations,
allowing the engine to keep graph definitions and run records in memory, in
Redis, or in any other backend.

# Key Interfaces

  - GraphStore: Responsible for persisting immutable Graph definitions.
  - RunStore: Responsible for persisting completed Runs.

Reusable contract suites (RunGraphStoreContract, RunRunStoreContract) let every
adapter prove it honours the same semantics.
*/
package ports
