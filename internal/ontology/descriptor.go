package ontology

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BaseType is the generic root label every entity type ultimately derives
// from. Relationships whose endpoints both resolve to it carry no schema
// information and are pruned during ingestion.
const BaseType = "Entity"

// Enrichment names the external provider that can supply supplemental
// properties for an entity type. The core only resolves the service name;
// the lookup itself happens outside.
type Enrichment struct {
	Service string `yaml:"service" json:"service"`
}

// EntityDefinition is the schema for one entity type as declared by an
// ontology plugin.
type EntityDefinition struct {
	Properties    map[string]string `yaml:"properties" json:"properties"`
	KeyProperties []string          `yaml:"keyProperties" json:"keyProperties"`
	Parent        string            `yaml:"parent" json:"parent,omitempty"`
	// ParentClass is the legacy alias for Parent kept for older plugin files.
	ParentClass string      `yaml:"parentClass" json:"parentClass,omitempty"`
	Enrichment  *Enrichment `yaml:"enrichment" json:"enrichment,omitempty"`
	VectorIndex bool        `yaml:"vectorIndex" json:"vectorIndex,omitempty"`
}

// ParentType returns the declared supertype, preferring the current field
// over the legacy alias. Empty when the type is a root.
func (d EntityDefinition) ParentType() string {
	if d.Parent != "" {
		return d.Parent
	}
	return d.ParentClass
}

// RelationshipDefinition declares one relationship type between a source
// (domain) and target (range) entity type.
type RelationshipDefinition struct {
	Name   string `yaml:"name" json:"name"`
	Domain string `yaml:"domain" json:"domain"`
	Range  string `yaml:"range" json:"range"`
}

// AlgorithmDescriptor is the loose, plugin-supplied shape of a reasoning
// algorithm. It is converted into a typed algorithm by the reasoning package
// before compilation; unknown names are skipped there, not here.
type AlgorithmDescriptor struct {
	Name             string    `yaml:"name" json:"name"`
	EntityType       string    `yaml:"entityType" json:"entityType"`
	Factors          []string  `yaml:"factors" json:"factors,omitempty"`
	Weights          []float64 `yaml:"weights" json:"weights,omitempty"`
	Threshold        float64   `yaml:"threshold" json:"threshold,omitempty"`
	RelationshipType string    `yaml:"relationshipType" json:"relationshipType,omitempty"`
	Pattern          string    `yaml:"pattern" json:"pattern,omitempty"`
	PatternName      string    `yaml:"patternName" json:"patternName,omitempty"`
}

// Reasoning groups the algorithms an ontology declares.
type Reasoning struct {
	Algorithms map[string]AlgorithmDescriptor `yaml:"algorithms" json:"algorithms"`
}

// Descriptor is one ontology plugin's contribution to the merged schema.
type Descriptor struct {
	Name          string                            `yaml:"name" json:"name"`
	Entities      map[string]EntityDefinition       `yaml:"entities" json:"entities"`
	Relationships map[string]RelationshipDefinition `yaml:"relationships" json:"relationships"`
	Reasoning     *Reasoning                        `yaml:"reasoning" json:"reasoning,omitempty"`
}

// ParseDescriptor decodes a single YAML ontology descriptor and validates it.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse ontology descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the structural invariants a descriptor must satisfy before
// it can be merged: every key property must be a declared property, and
// weighted algorithms must carry one weight per factor.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("ontology descriptor has no name")
	}
	for typeName, def := range d.Entities {
		for _, key := range def.KeyProperties {
			if _, ok := def.Properties[key]; !ok {
				return fmt.Errorf("ontology %q: entity %q declares key property %q outside its properties", d.Name, typeName, key)
			}
		}
	}
	for relName, rel := range d.Relationships {
		if rel.Name == "" {
			rel.Name = relName
			d.Relationships[relName] = rel
		}
		if rel.Domain == "" || rel.Range == "" {
			return fmt.Errorf("ontology %q: relationship %q is missing domain or range", d.Name, relName)
		}
	}
	if d.Reasoning != nil {
		for algName, alg := range d.Reasoning.Algorithms {
			if alg.Name == "" {
				alg.Name = algName
				d.Reasoning.Algorithms[algName] = alg
			}
			if len(alg.Weights) > 0 && len(alg.Weights) != len(alg.Factors) {
				return fmt.Errorf("ontology %q: algorithm %q has %d weights for %d factors", d.Name, algName, len(alg.Weights), len(alg.Factors))
			}
		}
	}
	return nil
}
