package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Expectation is one entry of the verification checklist: the deletion
// behavior a specific foreign key must declare.
type Expectation struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
	Column string `yaml:"column"`
	Action Action `yaml:"on_delete"`
}

// TenantTable names a tenant-scoped table and its owning-organization
// column.
type TenantTable struct {
	Name      string `yaml:"name"`
	OrgColumn string `yaml:"org_column"`
}

// Checklist is the full set of assertions the verifier checks against the
// live catalog.
type Checklist struct {
	Relationships []Expectation `yaml:"relationships"`
	TenantTables  []TenantTable `yaml:"tenant_tables"`
}

// DefaultChecklist builds the checklist from the declared relationships,
// deriving each expected action through Classify so the checklist and the
// policy rules cannot disagree.
func DefaultChecklist() *Checklist {
	cl := &Checklist{
		TenantTables: append([]TenantTable(nil), tenantTables...),
	}
	for _, rel := range relationships {
		cl.Relationships = append(cl.Relationships, Expectation{
			Parent: rel.Parent,
			Child:  rel.Child,
			Column: rel.Column,
			Action: Classify(rel),
		})
	}
	return cl
}

// LoadChecklist reads a checklist from a YAML file. Used when auditing a
// schema other than the built-in one, or to extend the default checklist in
// CI without a code change.
func LoadChecklist(path string) (*Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist file: %w", err)
	}

	var cl Checklist
	if err := yaml.Unmarshal(data, &cl); err != nil {
		return nil, fmt.Errorf("failed to parse checklist file: %w", err)
	}

	for i, exp := range cl.Relationships {
		switch exp.Action {
		case Cascade, Restrict, SetNull:
		default:
			return nil, fmt.Errorf("relationship %d (%s -> %s): unknown action %q", i, exp.Parent, exp.Child, exp.Action)
		}
	}

	return &cl, nil
}
