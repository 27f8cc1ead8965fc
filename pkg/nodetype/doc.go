// Package nodetype provides the catalog of node types from which behavior
// tree blocks are instantiated.
//
// # Overview
//
// A [NodeType] is a named descriptor: a unique name, a display title, a
// [Category] and a bag of default parameter values. Blocks reference their
// type by name only, so renaming or removing a type through the [Registry]
// is immediately visible to every lookup.
//
// # Categories
//
// The category decides the structural shape of a block:
//
//   - root: the single entry point of a tree, at most one child
//   - composite: an ordered list of children (tagged "control" in documents)
//   - decorator: exactly one child
//   - action: a leaf
//   - module: a leaf referencing another tree document by path
//
// # Catalogs
//
// User-defined types can be kept in TOML files and loaded with
// [ReadCatalogFile] and [Registry.Load]:
//
//	cat, err := nodetype.ReadCatalogFile("nodes.toml")
//	if err != nil {
//	    return err
//	}
//	skipped, err := reg.Load(cat)
package nodetype
