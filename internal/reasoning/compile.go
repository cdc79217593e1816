package reasoning

import (
	"fmt"
	"strings"
	"time"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/driver"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

// Query is one compiled, parametrized graph statement.
type Query struct {
	Cypher string
	Params map[string]interface{}
}

// Compile turns a typed algorithm into a parametrized Cypher statement
// against the merged schema. It returns nil when the algorithm is nil, its
// entity type is not in the registry, or an identifier cannot be safely
// interpolated - callers skip on nil, they never fail.
func Compile(alg Algorithm, registry *ontology.Registry) *Query {
	if alg == nil || registry == nil {
		return nil
	}
	if !registry.IsValidLabel(alg.EntityLabel()) || !driver.ValidIdentifier(alg.EntityLabel()) {
		return nil
	}

	switch a := alg.(type) {
	case SimilarityScoring:
		return compileSimilarity(a)
	case RiskAssessment:
		return compileRisk(a)
	case PatternDetection:
		return compilePattern(a)
	default:
		return nil
	}
}

// compileSimilarity scores every unordered pair of distinct nodes by summing
// the weights of factors with equal values. Pairs above the threshold get an
// edge unless one of the relationship type already connects them, which
// keeps the edge count stable across repeated runs.
func compileSimilarity(a SimilarityScoring) *Query {
	if len(a.Factors) == 0 || len(a.Weights) != len(a.Factors) {
		return nil
	}
	edgeType := a.EdgeType()
	if !driver.ValidIdentifier(edgeType) {
		return nil
	}

	terms := make([]string, 0, len(a.Factors))
	for i, factor := range a.Factors {
		if !driver.ValidIdentifier(factor) {
			return nil
		}
		terms = append(terms, fmt.Sprintf(
			"(CASE WHEN a.%s IS NOT NULL AND a.%s = b.%s THEN %g ELSE 0.0 END)",
			factor, factor, factor, a.Weights[i]))
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%s), (b:%s)
		WHERE a.uuid < b.uuid
		WITH a, b, %s AS score
		WHERE score > $threshold AND NOT (a)-[:%s]-(b)
		CREATE (a)-[r:%s]->(b)
		SET r.score = score, r.computed_at = $now
		RETURN count(r) AS created
	`, a.EntityType, a.EntityType, strings.Join(terms, " + "), edgeType, edgeType)

	return &Query{
		Cypher: cypher,
		Params: map[string]interface{}{
			"threshold": a.Threshold,
			"now":       time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// compileRisk writes a weighted sum of numeric factors as risk_score onto
// nodes that lack one. Null factors contribute zero; already-scored nodes
// are excluded so repeated runs are no-ops for them.
func compileRisk(a RiskAssessment) *Query {
	if len(a.Factors) == 0 || len(a.Weights) != len(a.Factors) {
		return nil
	}

	terms := make([]string, 0, len(a.Factors))
	for i, factor := range a.Factors {
		if !driver.ValidIdentifier(factor) {
			return nil
		}
		terms = append(terms, fmt.Sprintf("coalesce(n.%s, 0.0) * %g", factor, a.Weights[i]))
	}

	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE n.risk_score IS NULL
		SET n.risk_score = %s,
			n.risk_assessed_at = $now
		RETURN count(n) AS scored
	`, a.EntityType, strings.Join(terms, " + "))

	return &Query{
		Cypher: cypher,
		Params: map[string]interface{}{
			"now": time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// compilePattern links every node satisfying the boolean predicate to the
// singleton Pattern node for PatternName. Both the pattern node and the
// detection edge are MERGEd, keeping re-runs idempotent.
func compilePattern(a PatternDetection) *Query {
	if a.Pattern == "" || a.PatternName == "" {
		return nil
	}
	edgeType := a.EdgeType()
	if !driver.ValidIdentifier(edgeType) {
		return nil
	}

	cypher := fmt.Sprintf(`
		MERGE (p:Pattern {name: $pattern_name})
		WITH p
		MATCH (n:%s)
		WHERE %s
		MERGE (n)-[r:%s]->(p)
		ON CREATE SET r.detected_at = $now
		RETURN count(r) AS matched
	`, a.EntityType, a.Pattern, edgeType)

	return &Query{
		Cypher: cypher,
		Params: map[string]interface{}{
			"pattern_name": a.PatternName,
			"now":          time.Now().UTC().Format(time.RFC3339),
		},
	}
}
