/*
Package domain contains the core domain models of the stepflow engine.

It defines the fundamental entities of a workflow run, such as Graphs, Edges,
the mutable State record and the Run log. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - State: The open-ended key/value record every node reads and writes.
  - Graph: A start node plus a mapping from node name to its outgoing Edge.
  - Edge: Either an unconditional "next" pointer or a single-key comparison.
  - Run: The final State and ordered log of a completed traversal.
*/
package domain
