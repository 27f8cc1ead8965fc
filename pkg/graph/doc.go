// Package graph provides the mutable block-and-connection model of a
// behavior tree.
//
// # Core Types
//
//   - [Block]: a vertex instantiated from a node type
//   - [Connection]: a directed parent→child edge
//   - [Store]: owner of the active tree's blocks, connections and selection
//   - [State]: the hand-over form of a whole graph, used when switching trees
//
// # Structural Rules
//
// [Store.AddConnection] keeps the graph a forest of well-formed trees and
// rejects, with code INVALID_CONNECTION, any edge that would give a block
// a second parent, give a root or decorator a second child, give an action
// or module any child, make a root a child, or close a cycle. Sibling order
// is the order in which connections were added.
//
// # Events
//
// The store publishes blockadded, blockremoved, connectionadded,
// connectionremoved, blockselected, blockdeselected, blockchanged and redraw
// through an [event.Publisher], always after the change is applied.
//
//	bus := event.NewBus()
//	store := graph.NewStore(bus)
//	root := store.AddBlock(&rootType, 0, 0)
//	seq := store.AddBlock(&sequenceType, 200, 0)
//	if _, err := store.AddConnection(root, seq); err != nil {
//	    return err
//	}
package graph
