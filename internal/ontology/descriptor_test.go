package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptorYAML(t *testing.T) {
	data := []byte(`
name: financial
entities:
  Deal:
    properties:
      name: string
      sector: string
      dealType: string
    keyProperties:
      - name
    parent: Entity
    vectorIndex: true
  Entity:
    properties:
      name: string
relationships:
  PARTICIPATES_IN:
    name: PARTICIPATES_IN
    domain: Organization
    range: Deal
reasoning:
  algorithms:
    deal_similarity:
      name: similarity_scoring
      entityType: Deal
      factors: [sector, dealType]
      weights: [0.7, 0.3]
      threshold: 0.5
`)

	d, err := ParseDescriptor(data)
	require.NoError(t, err)
	assert.Equal(t, "financial", d.Name)
	assert.Equal(t, "Entity", d.Entities["Deal"].ParentType())
	assert.True(t, d.Entities["Deal"].VectorIndex)
	assert.Equal(t, "Deal", d.Relationships["PARTICIPATES_IN"].Range)

	alg := d.Reasoning.Algorithms["deal_similarity"]
	assert.Equal(t, "similarity_scoring", alg.Name)
	assert.Equal(t, []float64{0.7, 0.3}, alg.Weights)
}

func TestParseDescriptorKeyPropertyOutsideProperties(t *testing.T) {
	data := []byte(`
name: broken
entities:
  Contact:
    properties:
      name: string
    keyProperties:
      - email
`)
	_, err := ParseDescriptor(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key property")
}

func TestParseDescriptorWeightFactorMismatch(t *testing.T) {
	data := []byte(`
name: broken
entities:
  Deal:
    properties:
      sector: string
reasoning:
  algorithms:
    deal_similarity:
      name: similarity_scoring
      entityType: Deal
      factors: [sector]
      weights: [0.5, 0.5]
`)
	_, err := ParseDescriptor(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestValidateFillsRelationshipAndAlgorithmNames(t *testing.T) {
	d := &Descriptor{
		Name: "defaults",
		Relationships: map[string]RelationshipDefinition{
			"KNOWS": {Domain: "Person", Range: "Person"},
		},
		Reasoning: &Reasoning{
			Algorithms: map[string]AlgorithmDescriptor{
				"risk_assessment": {EntityType: "Person"},
			},
		},
	}
	require.NoError(t, d.Validate())
	assert.Equal(t, "KNOWS", d.Relationships["KNOWS"].Name)
	assert.Equal(t, "risk_assessment", d.Reasoning.Algorithms["risk_assessment"].Name)
}
