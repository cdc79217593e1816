package reasoning

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver records every executed statement. FailOn makes statements
// containing the substring fail, which lets tests exercise failure
// isolation.
type MockDriver struct {
	Queries []string
	Params  []map[string]interface{}
	Err     error
	FailOn  string
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if m.FailOn != "" && strings.Contains(query, m.FailOn) {
		return neo4j.EagerResult{}, errStoreDown
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context, labels, vectorLabels []string) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

type storeError string

func (e storeError) Error() string { return string(e) }

const errStoreDown = storeError("store unavailable")
