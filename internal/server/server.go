package server

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/config"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/driver"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/enrichment"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/extraction"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ingest"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/llm"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/reasoning"
)

type Server struct {
	Config    *config.Config
	Registry  *ontology.Registry
	Engine    *ingest.Engine
	Executor  *reasoning.Executor
	Extractor *extraction.Extractor
	Enricher  *enrichment.Resolver
}

// NewServer wires the whole stack: config, graph driver, merged schema,
// engines, and the optional extraction collaborator. Fatal on anything that
// leaves the process unable to serve.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyEnvOverrides(cfg)

	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		log.Fatalf("Failed to connect to graph store: %v", err)
	}

	registry := ontology.NewRegistry()
	descriptors, err := ontology.LoadDescriptorFiles(cfg.Ontology.Core, cfg.Ontology.Plugins, cfg.Ontology.Enabled)
	if err != nil {
		log.Fatalf("Failed to load ontologies: %v", err)
	}
	registry.Load(descriptors...)
	log.Printf("Loaded %d ontologies, %d entity types, %d relationship types",
		len(descriptors), len(registry.NodeLabels()), len(registry.RelationshipTypes()))

	if err := d.BuildIndices(context.Background(), registry.NodeLabels(), registry.VectorIndexedLabels()); err != nil {
		log.Printf("Warning: index bootstrap incomplete: %v", err)
	}

	s := &Server{
		Config:   cfg,
		Registry: registry,
		Engine:   ingest.NewEngine(d, registry, cfg.Concurrency.Ingest),
		Executor: reasoning.NewExecutor(d, registry, cfg.Concurrency.Reasoning),
		Enricher: enrichment.NewResolver(registry),
	}

	// Extraction is optional: without an LLM provider the /extract endpoint
	// answers 503 and callers ingest pre-extracted batches directly.
	if cfg.LLM.Provider != "" {
		client, embedder, err := llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		s.Extractor = extraction.NewExtractor(client, embedder, registry, cfg.Extraction.Entities)
	}

	return s
}

func applyEnvOverrides(cfg *config.Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Neo4j.User = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Neo4j.Password = pass
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/ingest", s.Ingest)
	r.POST("/extract", s.Extract)
	r.POST("/reasoning/run", s.RunReasoning)
	r.GET("/schema/labels", s.Labels)
	r.GET("/schema/relationships", s.RelationshipTypes)
	r.POST("/schema/reload", s.ReloadSchema)

	return r
}

// Ingest accepts a pre-extracted candidate batch and upserts it.
func (s *Server) Ingest(c *gin.Context) {
	var batch ingest.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Engine.Ingest(c.Request.Context(), batch)
	if err != nil {
		log.Printf("Failed to ingest batch: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest batch", "partial": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

type ExtractRequest struct {
	Content string `json:"content"`
}

// Extract runs the extraction collaborator on a content unit, enriches the
// candidates, and ingests the result.
func (s *Server) Extract(c *gin.Context) {
	if s.Extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No extraction provider configured"})
		return
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	batch, err := s.Extractor.Extract(c.Request.Context(), req.Content)
	if err != nil {
		log.Printf("Extraction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Extraction failed"})
		return
	}

	if s.Enricher != nil {
		for i, entity := range batch.Entities {
			enriched, err := s.Enricher.Enrich(c.Request.Context(), entity)
			if err != nil {
				log.Printf("Warning: %v", err)
				continue
			}
			batch.Entities[i] = enriched
		}
	}

	result, err := s.Engine.Ingest(c.Request.Context(), batch)
	if err != nil {
		log.Printf("Failed to ingest extracted batch: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest batch", "partial": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

type ReasoningRequest struct {
	Ontology string `json:"ontology"`
}

// RunReasoning executes reasoning for one named ontology or for all of them.
func (s *Server) RunReasoning(c *gin.Context) {
	var req ReasoningRequest
	_ = c.ShouldBindJSON(&req)

	if req.Ontology != "" {
		for _, desc := range s.Registry.Descriptors() {
			if desc.Name == req.Ontology {
				c.JSON(http.StatusOK, s.Executor.ExecuteOntologyReasoning(c.Request.Context(), desc))
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown ontology"})
		return
	}

	c.JSON(http.StatusOK, s.Executor.ExecuteAllReasoning(c.Request.Context()))
}

func (s *Server) Labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": s.Registry.NodeLabels()})
}

func (s *Server) RelationshipTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"relationshipTypes": s.Registry.RelationshipTypes()})
}

// ReloadSchema rebuilds the merged schema from the configured descriptor
// files. The swap is atomic; in-flight readers finish on the old schema.
func (s *Server) ReloadSchema(c *gin.Context) {
	descriptors, err := ontology.LoadDescriptorFiles(
		s.Config.Ontology.Core, s.Config.Ontology.Plugins, s.Config.Ontology.Enabled)
	if err != nil {
		log.Printf("Failed to reload ontologies: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload ontologies"})
		return
	}
	s.Registry.Load(descriptors...)

	c.JSON(http.StatusOK, gin.H{
		"ontologies": len(descriptors),
		"labels":     len(s.Registry.NodeLabels()),
	})
}
