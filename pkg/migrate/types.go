package migrate

import (
	"gopkg.in/yaml.v3"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// ChangeSet describes the history of one document type as a list of edits.
type ChangeSet struct {
	Subject string   `json:"subject" yaml:"subject" validate:"required"`
	Changes []Change `json:"changes" yaml:"changes" validate:"required,min=1,dive"`
}

// Change is a single edit between two versions.
type Change struct {
	Op        string   `json:"op" yaml:"op" validate:"required,oneof=added removed renamed modified"` // added|removed|renamed|modified
	Down      string   `json:"down" yaml:"down" validate:"required"`
	Up        string   `json:"up" yaml:"up" validate:"required"`
	Attribute string   `json:"attribute,omitempty" yaml:"attribute,omitempty" validate:"required_unless=Op renamed"`
	From      string   `json:"from,omitempty" yaml:"from,omitempty" validate:"required_if=Op renamed"`
	To        string   `json:"to,omitempty" yaml:"to,omitempty" validate:"required_if=Op renamed"`
	Default   *Literal `json:"default,omitempty" yaml:"default,omitempty"`
	CopyFrom  string   `json:"copyFrom,omitempty" yaml:"copyFrom,omitempty"` // slash path read from the document
	Transform string   `json:"transform,omitempty" yaml:"transform,omitempty" validate:"required_if=Op modified"`
}

// Literal is a default value decoded exactly from JSON or YAML.
type Literal struct {
	Node document.Node
}

func (l *Literal) UnmarshalJSON(data []byte) error {
	n, err := document.Parse(data)
	if err != nil {
		return err
	}
	l.Node = n
	return nil
}

func (l *Literal) UnmarshalYAML(value *yaml.Node) error {
	n, err := document.FromYAML(value)
	if err != nil {
		return err
	}
	l.Node = n
	return nil
}

// Transform is a named pair of value rewrites used by "modified" changes.
type Transform struct {
	Forward  ModifyFunc
	Backward ModifyFunc
}

// Transforms maps transform names used in change sets to their implementations.
type Transforms map[string]Transform
