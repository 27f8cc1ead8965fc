// Package document converts behavior trees between the live block graph and
// the portable tree document format.
//
// # Format
//
//	{
//	  "name": "Guard",
//	  "description": "",
//	  "scripts": [],
//	  "root": {
//	    "type": "control",
//	    "name": "Sequence",
//	    "children": [
//	      {"type": "action", "name": "Wait", "parameters": {"ms": 100}},
//	      {"type": "module", "path": "trees/patrol.json"}
//	    ]
//	  }
//	}
//
// A node is either a module reference ({type: "module", path}) or a named
// node with optional title, description and parameters. Control nodes list
// their children in order; decorator nodes carry a single child.
//
// # Vocabulary
//
// Documents call composites "control". Import reads "control" as the
// composite category and export writes composites back as "control"; no
// other tag is translated.
//
// # Round Trip
//
// For documents without module nodes, Export(Import(D)) equals D. Block IDs
// are assigned fresh on import and never written.
//
// # Validation
//
// [Validate] checks a document against the registry before anything is
// imported, so a rejected document never leaves a half-built graph. All
// failures carry code MALFORMED_DOCUMENT.
package document
