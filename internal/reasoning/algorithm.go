package reasoning

import (
	"strings"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

// Algorithm is the closed set of reasoning algorithms the compiler accepts.
// Plugin descriptors arrive stringly-typed; FromDescriptor narrows them into
// one of the three variants so compilation can match exhaustively instead of
// branching on names.
type Algorithm interface {
	EntityLabel() string
	sealed()
}

// SimilarityScoring creates weighted similarity edges between pairs of nodes
// of one type. Re-runs are idempotent: pairs already connected by the
// relationship type are excluded.
type SimilarityScoring struct {
	EntityType       string
	Factors          []string
	Weights          []float64
	Threshold        float64
	RelationshipType string
}

func (a SimilarityScoring) EntityLabel() string { return a.EntityType }
func (SimilarityScoring) sealed()               {}

// EdgeType returns the relationship type the similarity pass writes,
// deriving SIMILAR_<TYPE> when no override is configured.
func (a SimilarityScoring) EdgeType() string {
	if a.RelationshipType != "" {
		return a.RelationshipType
	}
	return "SIMILAR_" + strings.ToUpper(a.EntityType)
}

// RiskAssessment writes a weighted risk_score onto nodes that do not carry
// one yet. Nodes already scored are never touched again.
type RiskAssessment struct {
	EntityType string
	Factors    []string
	Weights    []float64
}

func (a RiskAssessment) EntityLabel() string { return a.EntityType }
func (RiskAssessment) sealed()               {}

// PatternDetection links nodes satisfying a boolean predicate to a singleton
// Pattern node identified by PatternName.
type PatternDetection struct {
	EntityType       string
	Pattern          string
	PatternName      string
	RelationshipType string
}

func (a PatternDetection) EntityLabel() string { return a.EntityType }
func (PatternDetection) sealed()               {}

// EdgeType returns the detection edge type, FOLLOWS_PATTERN by default.
func (a PatternDetection) EdgeType() string {
	if a.RelationshipType != "" {
		return a.RelationshipType
	}
	return "FOLLOWS_PATTERN"
}

// FromDescriptor narrows a loose plugin descriptor into a typed algorithm.
// Returns nil for unrecognized names or shapes; callers skip nil silently.
// The legacy lot_similarity name maps to similarity scoring.
func FromDescriptor(d ontology.AlgorithmDescriptor) Algorithm {
	switch d.Name {
	case "similarity_scoring", "lot_similarity":
		if len(d.Factors) == 0 || len(d.Weights) != len(d.Factors) {
			return nil
		}
		return SimilarityScoring{
			EntityType:       d.EntityType,
			Factors:          d.Factors,
			Weights:          d.Weights,
			Threshold:        d.Threshold,
			RelationshipType: d.RelationshipType,
		}
	case "risk_assessment":
		if len(d.Factors) == 0 || len(d.Weights) != len(d.Factors) {
			return nil
		}
		return RiskAssessment{
			EntityType: d.EntityType,
			Factors:    d.Factors,
			Weights:    d.Weights,
		}
	case "pattern_detection":
		if d.Pattern == "" || d.PatternName == "" {
			return nil
		}
		return PatternDetection{
			EntityType:       d.EntityType,
			Pattern:          d.Pattern,
			PatternName:      d.PatternName,
			RelationshipType: d.RelationshipType,
		}
	default:
		return nil
	}
}
