package server

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/config"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ingest"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/reasoning"
)

type MockDriver struct {
	Queries []string
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context, labels, vectorLabels []string) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func newTestServer(mock *MockDriver) *Server {
	registry := ontology.NewRegistry()
	registry.Load(&ontology.Descriptor{
		Name: "crm",
		Entities: map[string]ontology.EntityDefinition{
			"Contact": {
				Properties:    map[string]string{"name": "string"},
				KeyProperties: []string{"name"},
			},
		},
		Relationships: map[string]ontology.RelationshipDefinition{
			"KNOWS": {Name: "KNOWS", Domain: "Contact", Range: "Contact"},
		},
	})

	return &Server{
		Config:   &config.Config{},
		Registry: registry,
		Engine:   ingest.NewEngine(mock, registry, 0),
		Executor: reasoning.NewExecutor(mock, registry, 0),
	}
}

func TestIngestEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &MockDriver{}
	srv := newTestServer(mock)
	router := srv.SetupRouter()

	body := `{
		"entities": [
			{"id": "c1", "type": "Contact", "properties": {"name": "Alice"}}
		]
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/ingest", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"entitiesCreated":1`)
	require.Len(t, mock.Queries, 1)
	assert.Contains(t, mock.Queries[0], "MERGE (n:Contact")
}

func TestIngestEndpointRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newTestServer(&MockDriver{})
	router := srv.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/ingest", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestSchemaEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newTestServer(&MockDriver{})
	router := srv.SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/schema/labels", nil))
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Contact")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/schema/relationships", nil))
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "KNOWS")
}

func TestExtractEndpointWithoutProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newTestServer(&MockDriver{})
	router := srv.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/extract", bytes.NewBufferString(`{"content": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 503, w.Code)
}

func TestRunReasoningUnknownOntology(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newTestServer(&MockDriver{})
	router := srv.SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reasoning/run", bytes.NewBufferString(`{"ontology": "ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}
