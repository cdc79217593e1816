package driver

import (
	"context"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the session-scoped query capability the core engines depend
// on. Nothing store-specific beyond parametrized Cypher execution leaks
// through it, so tests substitute a recording mock.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context, labels, vectorLabels []string) error
	Close(ctx context.Context) error
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to interpolate into a Cypher
// statement as a label or relationship type. Labels cannot be parametrized,
// so every interpolated identifier must pass this check first.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
