package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver records statements and replays scripted results in order. Safe
// for concurrent use so IngestAll can be exercised with a worker pool.
type MockDriver struct {
	mu      sync.Mutex
	Queries []string
	Params  []map[string]interface{}
	Script  []neo4j.EagerResult
	FailOn  string
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.FailOn != "" && strings.Contains(query, m.FailOn) {
		return neo4j.EagerResult{}, fmt.Errorf("store unavailable")
	}
	if len(m.Script) > 0 {
		res := m.Script[0]
		m.Script = m.Script[1:]
		return res, nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context, labels, vectorLabels []string) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func (m *MockDriver) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

func mergeResult(uuid string, created bool) neo4j.EagerResult {
	return neo4j.EagerResult{
		Records: []*neo4j.Record{
			{
				Keys:   []string{"uuid", "created"},
				Values: []interface{}{uuid, created},
			},
		},
	}
}
