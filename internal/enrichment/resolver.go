package enrichment

import (
	"context"
	"fmt"
	"log"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ingest"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

// Provider supplies supplemental properties for an entity. Implementations
// live outside the core (EDGAR, clearbit, internal directories); tests use
// in-memory fakes.
type Provider interface {
	Enrich(ctx context.Context, entity ingest.CandidateEntity) (map[string]interface{}, error)
}

// Resolver pairs the schema's enrichment-service resolution with registered
// providers. The core only computes the service name; the provider call is
// the external lookup.
type Resolver struct {
	Registry  *ontology.Registry
	providers map[string]Provider
}

func NewResolver(registry *ontology.Registry) *Resolver {
	return &Resolver{
		Registry:  registry,
		providers: make(map[string]Provider),
	}
}

// Register binds a provider to a service name from the ontology's
// enrichment declarations.
func (r *Resolver) Register(service string, p Provider) {
	r.providers[service] = p
}

// Enrich resolves the service for the entity's type (walking the type's
// ancestors) and merges the provider's supplemental properties under the
// candidate's own: extracted values always win over enriched ones. Entities
// with no service or no registered provider pass through unchanged.
func (r *Resolver) Enrich(ctx context.Context, entity ingest.CandidateEntity) (ingest.CandidateEntity, error) {
	service := r.Registry.EnrichmentService(entity.Type)
	if service == "" {
		return entity, nil
	}
	provider, ok := r.providers[service]
	if !ok {
		log.Printf("Warning: no provider registered for enrichment service %q", service)
		return entity, nil
	}

	supplemental, err := provider.Enrich(ctx, entity)
	if err != nil {
		return entity, fmt.Errorf("enrichment via %q failed: %w", service, err)
	}

	if len(supplemental) == 0 {
		return entity, nil
	}
	merged := make(map[string]interface{}, len(entity.Properties)+len(supplemental))
	for k, v := range supplemental {
		if v != nil {
			merged[k] = v
		}
	}
	for k, v := range entity.Properties {
		if v != nil {
			merged[k] = v
		}
	}
	entity.Properties = merged
	return entity, nil
}
