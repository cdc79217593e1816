package driver

// Cypher templates shared by the ingestion engine. Labels and relationship
// types cannot be parametrized in Cypher, so the %s slots are filled by the
// caller after a ValidIdentifier check; everything else travels as params.
const (
	// UpsertNodeQueryTmpl slots: label, identity-key clause
	// (e.g. `name: $key_name`). The created flag compares created_at against
	// this call's timestamp, which only matches on the creating run.
	UpsertNodeQueryTmpl = `
		MERGE (n:%s {%s})
		ON CREATE SET n.uuid = $uuid, n.created_at = $created_at
		SET n += $props
		RETURN n.uuid AS uuid, n.created_at = $created_at AS created
	`

	// UpsertRelationshipQueryTmpl slot: relationship type. Endpoints are the
	// uuids returned by the node upserts of the same batch.
	UpsertRelationshipQueryTmpl = `
		MATCH (a {uuid: $source_uuid})
		MATCH (b {uuid: $target_uuid})
		MERGE (a)-[r:%s]->(b)
		ON CREATE SET r.created_at = $created_at
		RETURN r.created_at = $created_at AS created
	`

	// SetEmbeddingQuery persists a candidate's vector alongside its node for
	// later similarity passes.
	SetEmbeddingQuery = `
		MATCH (n {uuid: $uuid})
		SET n.embedding = $embedding
		RETURN n.uuid AS uuid
	`
)
