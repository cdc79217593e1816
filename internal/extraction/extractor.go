package extraction

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ingest"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/llm"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

const defaultPrompt = `You are an expert data extractor for a knowledge graph.

<SCHEMA>
%s
</SCHEMA>

<TEXT>
%s
</TEXT>

Instructions:
1. Identify every entity in the TEXT that matches a type in the SCHEMA.
2. Extract the key properties listed for its type; include other schema properties when present.
3. Identify relationships between the extracted entities.
4. Return one JSON object with keys "entities" and "relationships".

Example JSON:
{
  "entities": [
    {"id": "e1", "type": "Contact", "label": "Alice Smith", "properties": {"name": "Alice Smith"}}
  ],
  "relationships": [
    {"sourceId": "e1", "targetId": "e2", "type": "WORKS_FOR"}
  ]
}`

// Extractor is the extraction collaborator: it turns a content unit into
// candidate entities and relationships for the ingestion engine. The core
// never depends on it; wiring happens in the server.
type Extractor struct {
	LLM      llm.Client
	Embedder llm.Embedder
	Registry *ontology.Registry
	// Prompt is a format template with two slots: schema summary, content.
	// Empty falls back to the built-in prompt.
	Prompt string
}

func NewExtractor(client llm.Client, embedder llm.Embedder, registry *ontology.Registry, prompt string) *Extractor {
	return &Extractor{LLM: client, Embedder: embedder, Registry: registry, Prompt: prompt}
}

// Extract asks the LLM for candidates matching the merged schema. Candidates
// missing an id get one assigned so relationships stay resolvable; vectors
// are computed for vector-indexed types when an embedder is configured.
func (e *Extractor) Extract(ctx context.Context, content string) (ingest.Batch, error) {
	prompt := e.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	response, err := e.LLM.Generate(ctx, fmt.Sprintf(prompt, e.schemaSummary(), content))
	if err != nil {
		return ingest.Batch{}, fmt.Errorf("extraction failed: %w", err)
	}

	batch, err := parseJSON[ingest.Batch](response)
	if err != nil {
		return ingest.Batch{}, fmt.Errorf("extraction failed: %w", err)
	}

	for i := range batch.Entities {
		if batch.Entities[i].ID == "" {
			batch.Entities[i].ID = uuid.NewString()
		}
		e.embed(ctx, &batch.Entities[i])
	}

	return batch, nil
}

func (e *Extractor) embed(ctx context.Context, entity *ingest.CandidateEntity) {
	if e.Embedder == nil || len(entity.Embedding) > 0 {
		return
	}
	def, ok := e.Registry.EntityDefinition(entity.Type)
	if !ok || !def.VectorIndex {
		return
	}
	text := entity.Label
	if text == "" {
		text = entity.ID
	}
	vec, err := e.Embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("Warning: embedding for %q failed: %v", entity.ID, err)
		return
	}
	entity.Embedding = vec
}

// schemaSummary renders the merged schema as prompt context: one line per
// entity type with its key properties, then the relationship types.
func (e *Extractor) schemaSummary() string {
	var b strings.Builder
	for _, label := range e.Registry.NodeLabels() {
		keys, _ := e.Registry.KeyProperties(label)
		if len(keys) > 0 {
			fmt.Fprintf(&b, "- %s (key properties: %s)\n", label, strings.Join(keys, ", "))
		} else {
			fmt.Fprintf(&b, "- %s\n", label)
		}
	}
	relTypes := e.Registry.RelationshipTypes()
	if len(relTypes) > 0 {
		fmt.Fprintf(&b, "Relationship types: %s\n", strings.Join(relTypes, ", "))
	}
	return b.String()
}
