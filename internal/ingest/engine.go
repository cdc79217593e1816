package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/driver"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

// noiseTypes are placeholder relationship names some extractors emit between
// otherwise untyped entities. They carry no information and never reach the
// store when both endpoints resolve to the generic base type.
var noiseTypes = map[string]bool{
	"hasproperty":  true,
	"hasattribute": true,
	"relatedto":    true,
	"related_to":   true,
}

// Engine upserts extraction batches into the graph store. Writes within a
// batch are sequential so identity-key merges never race each other;
// independent batches may run concurrently because every write is an
// idempotent MERGE.
type Engine struct {
	Driver   driver.GraphDriver
	Registry *ontology.Registry
	// Workers bounds IngestAll's batch concurrency. Zero or negative means
	// sequential.
	Workers int

	UUIDGenerator func() string
	Now           func() time.Time
}

func NewEngine(d driver.GraphDriver, registry *ontology.Registry, workers int) *Engine {
	return &Engine{
		Driver:        d,
		Registry:      registry,
		Workers:       workers,
		UUIDGenerator: uuid.NewString,
		Now:           time.Now,
	}
}

// resolvedEntity tracks where a candidate landed so relationships can be
// wired by candidate id.
type resolvedEntity struct {
	UUID string
	Type string
}

// Ingest writes one batch. Malformed candidates are skipped and reported,
// never aborting the batch; a store failure aborts with the partial result,
// which is safe to retry since every write is a merge.
func (e *Engine) Ingest(ctx context.Context, batch Batch) (Result, error) {
	var result Result
	resolved := make(map[string]resolvedEntity)

	for _, entity := range batch.Entities {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.upsertEntity(ctx, entity, resolved, &result); err != nil {
			return result, err
		}
	}

	for _, rel := range batch.Relationships {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.upsertRelationship(ctx, rel, resolved, &result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *Engine) upsertEntity(ctx context.Context, entity CandidateEntity, resolved map[string]resolvedEntity, result *Result) error {
	if entity.Type == "" || !driver.ValidIdentifier(entity.Type) {
		result.skip(entity.ID, fmt.Sprintf("invalid entity type %q", entity.Type))
		return nil
	}

	keyProps, known := e.Registry.KeyProperties(entity.Type)
	if !known {
		result.UnknownTypes++
	}

	clause, params, err := identityKey(entity, keyProps)
	if err != nil {
		log.Printf("Warning: skipping candidate %q: %v", entity.ID, err)
		result.skip(entity.ID, err.Error())
		return nil
	}

	now := e.Now().UTC().Format(time.RFC3339Nano)
	params["uuid"] = e.UUIDGenerator()
	params["created_at"] = now
	params["props"] = entityProperties(entity)

	query := fmt.Sprintf(driver.UpsertNodeQueryTmpl, entity.Type, clause)
	res, err := e.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return fmt.Errorf("failed to upsert entity %q: %w", entity.ID, err)
	}

	nodeUUID, created := upsertOutcome(res, params["uuid"].(string))
	if created {
		result.EntitiesCreated++
	} else {
		result.EntitiesUpdated++
	}
	if entity.ID != "" {
		resolved[entity.ID] = resolvedEntity{UUID: nodeUUID, Type: entity.Type}
	}

	if len(entity.Embedding) > 0 {
		if _, err := e.Driver.ExecuteQuery(ctx, driver.SetEmbeddingQuery, map[string]interface{}{
			"uuid":      nodeUUID,
			"embedding": entity.Embedding,
		}); err != nil {
			return fmt.Errorf("failed to set embedding for %q: %w", entity.ID, err)
		}
	}

	return nil
}

func (e *Engine) upsertRelationship(ctx context.Context, rel CandidateRelationship, resolved map[string]resolvedEntity, result *Result) error {
	source, sourceOK := resolved[rel.SourceID]
	target, targetOK := resolved[rel.TargetID]
	if !sourceOK || !targetOK {
		log.Printf("Warning: pruning relationship %q: unresolved endpoint", rel.Type)
		result.RelationshipsPruned++
		return nil
	}

	if e.isNoise(rel, source.Type, target.Type) {
		result.RelationshipsPruned++
		return nil
	}

	relType := rel.Type
	if relType == "" {
		relType = "RELATED_TO"
	}
	if !driver.ValidIdentifier(relType) {
		log.Printf("Warning: pruning relationship with invalid type %q", rel.Type)
		result.RelationshipsPruned++
		return nil
	}

	now := e.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf(driver.UpsertRelationshipQueryTmpl, relType)
	res, err := e.Driver.ExecuteQuery(ctx, query, map[string]interface{}{
		"source_uuid": source.UUID,
		"target_uuid": target.UUID,
		"created_at":  now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationship %q: %w", relType, err)
	}

	if _, created := upsertOutcome(res, ""); created {
		result.RelationshipsCreated++
	}
	return nil
}

// isNoise reports whether a relationship is an information-free placeholder:
// both endpoints degenerate to the generic base type and the relationship
// name is untyped or a known noise pattern. Relationship types whose schema
// definition spans the generic base type on both sides are noise regardless
// of their name.
func (e *Engine) isNoise(rel CandidateRelationship, sourceType, targetType string) bool {
	if def, ok := e.Registry.RelationshipDefinition(rel.Type); ok {
		if def.Domain == ontology.BaseType && def.Range == ontology.BaseType {
			return true
		}
	}
	if !e.isGenericType(sourceType) || !e.isGenericType(targetType) {
		return false
	}
	if rel.Type == "" {
		return true
	}
	return noiseTypes[strings.ToLower(rel.Type)]
}

// isGenericType is true for the base type itself and for types the schema
// does not know, which have nothing more specific to offer.
func (e *Engine) isGenericType(typeName string) bool {
	if typeName == ontology.BaseType {
		return true
	}
	return !e.Registry.IsValidLabel(typeName)
}

// identityKey builds the MERGE key clause. Key-property values define
// identity when the schema configures them; otherwise the candidate id does.
func identityKey(entity CandidateEntity, keyProps []string) (string, map[string]interface{}, error) {
	params := make(map[string]interface{})

	if len(keyProps) > 0 {
		parts := make([]string, 0, len(keyProps))
		for _, key := range keyProps {
			if !driver.ValidIdentifier(key) {
				return "", nil, fmt.Errorf("invalid key property %q", key)
			}
			value, ok := entity.Properties[key]
			if !ok || value == nil || value == "" {
				return "", nil, fmt.Errorf("missing key property %q for type %q", key, entity.Type)
			}
			parts = append(parts, fmt.Sprintf("%s: $key_%s", key, key))
			params["key_"+key] = value
		}
		return strings.Join(parts, ", "), params, nil
	}

	if entity.ID == "" {
		return "", nil, fmt.Errorf("candidate of type %q has neither key properties nor an id", entity.Type)
	}
	params["key_id"] = entity.ID
	return "id: $key_id", params, nil
}

// entityProperties collects the non-null incoming properties. Nulls are
// stripped here because `SET n += $props` would otherwise erase existing
// values, and an existing non-null value must never be overwritten by an
// incoming null.
func entityProperties(entity CandidateEntity) map[string]interface{} {
	props := make(map[string]interface{}, len(entity.Properties)+2)
	for k, v := range entity.Properties {
		if v != nil {
			props[k] = v
		}
	}
	if entity.Label != "" {
		props["label"] = entity.Label
	}
	if entity.ID != "" {
		props["id"] = entity.ID
	}
	return props
}

// upsertOutcome extracts the node uuid and created flag from a merge result.
// A missing record is treated as a create so counts stay meaningful against
// stores that do not return rows.
func upsertOutcome(res neo4j.EagerResult, fallbackUUID string) (string, bool) {
	if len(res.Records) == 0 {
		return fallbackUUID, true
	}
	record := res.Records[0]
	nodeUUID := fallbackUUID
	if v, ok := record.Get("uuid"); ok {
		if s, ok := v.(string); ok && s != "" {
			nodeUUID = s
		}
	}
	created := true
	if v, ok := record.Get("created"); ok {
		if b, ok := v.(bool); ok {
			created = b
		}
	}
	return nodeUUID, created
}

// IngestAll runs independent batches through a bounded worker pool. Results
// are returned in batch order; a failed batch carries its partial result and
// the error.
func (e *Engine) IngestAll(ctx context.Context, batches []Batch) ([]Result, error) {
	results := make([]Result, len(batches))
	errs := make([]error, len(batches))

	workers := e.Workers
	if workers <= 1 {
		for i, batch := range batches {
			results[i], errs[i] = e.Ingest(ctx, batch)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		for i := range batches {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				results[i], errs[i] = e.Ingest(ctx, batches[i])
			}(i)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
