package driver

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver wraps the bolt driver. It also speaks to Memgraph, which
// accepts the same protocol.
type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jDriver(uri, username, password string) (*Neo4jDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Printf("Connected to graph store at %s", uri)
	return &Neo4jDriver{Driver: d}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs one parametrized statement in its own short-lived
// session and returns the eagerly collected result. Each call is its own
// atomic unit of work; no transaction spans calls.
func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the per-label lookup indexes the upsert path relies
// on, plus a vector index for every label that declared one. Failures are
// logged and skipped since the index may already exist or the store may not
// support the syntax.
func (d *Neo4jDriver) BuildIndices(ctx context.Context, labels, vectorLabels []string) error {
	for _, label := range labels {
		if !ValidIdentifier(label) {
			log.Printf("Warning: skipping index for invalid label %q", label)
			continue
		}
		queries := []string{
			fmt.Sprintf("CREATE INDEX idx_%s_uuid IF NOT EXISTS FOR (n:%s) ON (n.uuid)", label, label),
			fmt.Sprintf("CREATE INDEX idx_%s_id IF NOT EXISTS FOR (n:%s) ON (n.id)", label, label),
		}
		for _, q := range queries {
			if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
				log.Printf("Warning: failed to create index '%s': %v", q, err)
			}
		}
	}

	for _, label := range vectorLabels {
		if !ValidIdentifier(label) {
			continue
		}
		q := fmt.Sprintf(
			"CREATE VECTOR INDEX vec_%s IF NOT EXISTS FOR (n:%s) ON (n.embedding) "+
				"OPTIONS {indexConfig: {`vector.dimensions`: 1536, `vector.similarity_function`: 'cosine'}}",
			label, label)
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			log.Printf("Warning: failed to create vector index for %s: %v", label, err)
		}
	}

	return nil
}
