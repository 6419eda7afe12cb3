package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

var validate = validator.New()

// ReadChangeSet decodes and validates a JSON or YAML change set file.
func ReadChangeSet(path string) (*ChangeSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cs ChangeSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cs)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&cs)
	default:
		return nil, fmt.Errorf("%s: unsupported change set format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := validate.Struct(cs); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &cs, nil
}

// ReadDir reads every *.json, *.yaml and *.yml change set in dir, in file name order.
func ReadDir(dir string) ([]*ChangeSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*ChangeSet
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		cs, err := ReadChangeSet(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// Apply registers every change of cs on r. parse turns the change set's version text into
// registry versions; transforms resolves "modified" changes.
func Apply[V any](r *Registry[V], cs *ChangeSet, parse func(string) (V, error), transforms Transforms) error {
	if cs.Subject != r.subject {
		return fmt.Errorf("%w: %q is not %q", ErrSubjectMismatch, cs.Subject, r.subject)
	}
	for i, c := range cs.Changes {
		if err := applyChange(r, c, parse, transforms); err != nil {
			return fmt.Errorf("%s change %d (%s): %w", cs.Subject, i, c.Op, err)
		}
	}
	r.log.Debug("loaded change set", zap.Int("changes", len(cs.Changes)))
	return nil
}

// LoadDir reads dir and applies all change sets whose subject is the registry's subject.
func LoadDir[V any](r *Registry[V], dir string, parse func(string) (V, error), transforms Transforms) error {
	sets, err := ReadDir(dir)
	if err != nil {
		return err
	}
	for _, cs := range sets {
		if cs.Subject != r.subject {
			continue
		}
		if err := Apply(r, cs, parse, transforms); err != nil {
			return err
		}
	}
	return nil
}

func applyChange[V any](r *Registry[V], c Change, parse func(string) (V, error), transforms Transforms) error {
	down, err := parse(c.Down)
	if err != nil {
		return fmt.Errorf("down: %w", err)
	}
	up, err := parse(c.Up)
	if err != nil {
		return fmt.Errorf("up: %w", err)
	}
	switch c.Op {
	case "added", "removed":
		value, err := valueSource(c)
		if err != nil {
			return err
		}
		if c.Op == "added" {
			return r.AttributeAddedFunc(down, up, c.Attribute, value)
		}
		return r.AttributeRemovedFunc(down, up, c.Attribute, value)
	case "renamed":
		return r.AttributeRenamed(down, up, c.From, c.To)
	case "modified":
		t, ok := transforms[c.Transform]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTransform, c.Transform)
		}
		return r.AttributeModified(down, up, c.Attribute, t.Backward, t.Forward)
	}
	return fmt.Errorf("%w: unsupported op %q", ErrInvalidChange, c.Op)
}

func valueSource(c Change) (ValueFunc, error) {
	switch {
	case c.Default != nil && c.CopyFrom != "":
		return nil, fmt.Errorf("%w: default and copyFrom are exclusive", ErrInvalidChange)
	case c.CopyFrom != "":
		return CopyFrom(c.CopyFrom), nil
	case c.Default != nil:
		return Constant(c.Default.Node), nil
	}
	return Constant(document.Null{}), nil
}
