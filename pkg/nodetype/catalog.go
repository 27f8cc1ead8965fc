package nodetype

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// Catalog is the on-disk form of a set of user-defined node types:
//
//	[[node]]
//	name = "Wait"
//	title = "Wait <milliseconds>ms"
//	category = "action"
//	[node.properties]
//	milliseconds = 0
type Catalog struct {
	Nodes []NodeType `toml:"node"`
}

// ReadCatalog decodes a TOML catalog from r.
func ReadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Catalog{}, errors.Wrap(errors.ErrCodeInvalidNodeCatalog, err, "decode node catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Catalog{}, errors.New(errors.ErrCodeInvalidNodeCatalog, "unknown catalog key %q", undecoded[0].String())
	}
	for i, n := range c.Nodes {
		if n.Name == "" {
			return Catalog{}, errors.New(errors.ErrCodeInvalidNodeCatalog, "node %d: missing name", i+1)
		}
		if !n.Category.Valid() || n.Category == CategoryRoot {
			return Catalog{}, errors.New(errors.ErrCodeInvalidNodeCatalog, "node %q: invalid category %q", n.Name, n.Category)
		}
	}
	return c, nil
}

// ReadCatalogFile reads a TOML catalog from path.
func ReadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// WriteCatalog encodes c as TOML.
func WriteCatalog(w io.Writer, c Catalog) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode node catalog: %w", err)
	}
	return nil
}

// Load registers every node of c. Types already registered under the same
// name are skipped and reported in the returned slice; any other error
// aborts the load.
func (r *Registry) Load(c Catalog) (skipped []string, err error) {
	for _, n := range c.Nodes {
		if r.Has(n.Name) {
			skipped = append(skipped, n.Name)
			continue
		}
		n.Builtin = false
		if _, err := r.Register(n); err != nil {
			return skipped, fmt.Errorf("register %s: %w", n.Name, err)
		}
	}
	return skipped, nil
}
