package ingest

// CandidateEntity is one extracted entity candidate, produced by the
// extraction collaborator and discarded once its batch is written.
type CandidateEntity struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Label      string                 `json:"label,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Embedding  []float32              `json:"embedding,omitempty"`
}

// CandidateRelationship links two candidates of the same batch by their
// candidate ids.
type CandidateRelationship struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}

// Batch is one ingestion unit of work.
type Batch struct {
	Entities      []CandidateEntity       `json:"entities"`
	Relationships []CandidateRelationship `json:"relationships"`
}

// Skip records why one candidate was left out of the graph write.
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result reports what one batch did to the store.
type Result struct {
	EntitiesCreated      int    `json:"entitiesCreated"`
	EntitiesUpdated      int    `json:"entitiesUpdated"`
	EntitiesSkipped      int    `json:"entitiesSkipped"`
	UnknownTypes         int    `json:"unknownTypes"`
	RelationshipsCreated int    `json:"relationshipsCreated"`
	RelationshipsPruned  int    `json:"relationshipsPruned"`
	Skipped              []Skip `json:"skipped,omitempty"`
}

func (r *Result) skip(id, reason string) {
	r.EntitiesSkipped++
	r.Skipped = append(r.Skipped, Skip{ID: id, Reason: reason})
}
