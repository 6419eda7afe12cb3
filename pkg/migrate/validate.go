package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// Validator holds compiled schemas keyed by version text (like "V1", "v2.0.0").
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*jsonschema.Schema)}
}

// LoadAll compiles all *.json schemas in dir. The file name without extension is the
// version the schema applies to.
func (v *Validator) LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".json" {
			continue
		}
		version := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		if err := v.loadFile(version, filepath.Join(dir, ent.Name())); err != nil {
			return fmt.Errorf("load schema %s: %w", ent.Name(), err)
		}
	}
	return nil
}

func (v *Validator) loadFile(version, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return v.Add(version, f.Name(), f)
}

// Add compiles the schema read from r and registers it for version. url identifies the
// resource in error messages.
func (v *Validator) Add(version, url string, r io.Reader) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, r); err != nil {
		return err
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	v.schemas[version] = sch
	return nil
}

// Has reports whether a schema is registered for version.
func (v *Validator) Has(version string) bool {
	_, ok := v.schemas[version]
	return ok
}

// Validate ensures doc conforms to the schema for the given version.
func (v *Validator) Validate(version string, doc document.Node) error {
	sch, ok := v.schemas[version]
	if !ok {
		return fmt.Errorf("no schema for version %s", version)
	}
	b, err := document.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var redecoded interface{}
	if err := dec.Decode(&redecoded); err != nil {
		return err
	}
	if err := sch.Validate(redecoded); err != nil {
		return fmt.Errorf("schema validation failed for version %s: %w", version, err)
	}
	return nil
}
