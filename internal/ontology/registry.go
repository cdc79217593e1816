package ontology

import (
	"log"
	"sort"
	"sync"
)

// Registry holds the schema merged from every loaded ontology descriptor.
// It is built once at startup and read by the reasoning and ingestion
// engines; Load replaces the whole schema atomically, so readers never
// observe a partially merged state.
type Registry struct {
	mu            sync.RWMutex
	entities      map[string]EntityDefinition
	relationships map[string]RelationshipDefinition
	descriptors   []*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		entities:      make(map[string]EntityDefinition),
		relationships: make(map[string]RelationshipDefinition),
	}
}

// Load merges the given descriptors into a fresh schema and swaps it in.
// Merge policy is union by type name; on collision the later descriptor wins
// and the override is logged. Callers pass descriptors in a fixed order
// (core ontology first, plugins after) so the outcome is deterministic.
func (r *Registry) Load(descriptors ...*Descriptor) {
	entities := make(map[string]EntityDefinition)
	relationships := make(map[string]RelationshipDefinition)
	kept := make([]*Descriptor, 0, len(descriptors))

	for _, d := range descriptors {
		if d == nil {
			continue
		}
		for typeName, def := range d.Entities {
			if _, exists := entities[typeName]; exists {
				log.Printf("Warning: ontology %q overrides entity type %q", d.Name, typeName)
			}
			entities[typeName] = def
		}
		for relName, rel := range d.Relationships {
			if rel.Name == "" {
				rel.Name = relName
			}
			if _, exists := relationships[rel.Name]; exists {
				log.Printf("Warning: ontology %q overrides relationship type %q", d.Name, rel.Name)
			}
			relationships[rel.Name] = rel
		}
		kept = append(kept, d)
	}

	r.mu.Lock()
	r.entities = entities
	r.relationships = relationships
	r.descriptors = kept
	r.mu.Unlock()
}

// EntityDefinition returns the merged definition for a type name.
func (r *Registry) EntityDefinition(typeName string) (EntityDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.entities[typeName]
	return def, ok
}

// SuperClasses walks the parent chain of typeName and returns its ancestors
// ordered nearest to root, excluding typeName itself. The second return is
// true when a cyclic parent reference was encountered and the chain was cut
// there. Unknown types yield an empty chain.
func (r *Registry) SuperClasses(typeName string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []string
	visited := map[string]bool{typeName: true}
	current := typeName
	for {
		def, ok := r.entities[current]
		if !ok {
			return chain, false
		}
		parent := def.ParentType()
		if parent == "" {
			return chain, false
		}
		if visited[parent] {
			return chain, true
		}
		visited[parent] = true
		chain = append(chain, parent)
		current = parent
	}
}

// EnrichmentService resolves the enrichment provider name for an entity
// type: the type's own declaration wins, otherwise the nearest ancestor
// that declares one. Empty when neither does. Never errors, so callers can
// stay defensive against partially loaded schemas.
func (r *Registry) EnrichmentService(typeName string) string {
	r.mu.RLock()
	if def, ok := r.entities[typeName]; ok && def.Enrichment != nil && def.Enrichment.Service != "" {
		r.mu.RUnlock()
		return def.Enrichment.Service
	}
	r.mu.RUnlock()

	ancestors, _ := r.SuperClasses(typeName)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ancestor := range ancestors {
		if def, ok := r.entities[ancestor]; ok && def.Enrichment != nil && def.Enrichment.Service != "" {
			return def.Enrichment.Service
		}
	}
	return ""
}

// KeyProperties returns the identity-defining properties for a type. The
// second return distinguishes an unknown type (false) from a known type
// with no key properties (empty slice, true).
func (r *Registry) KeyProperties(typeName string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.entities[typeName]
	if !ok {
		return nil, false
	}
	keys := make([]string, len(def.KeyProperties))
	copy(keys, def.KeyProperties)
	return keys, true
}

// IsValidLabel reports whether name is a known entity type in the merged
// schema.
func (r *Registry) IsValidLabel(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entities[name]
	return ok
}

// NodeLabels returns every entity type name in the merged schema, sorted.
func (r *Registry) NodeLabels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.entities))
	for name := range r.entities {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

// RelationshipTypes returns every relationship type name, sorted.
func (r *Registry) RelationshipTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.relationships))
	for name := range r.relationships {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// RelationshipDefinition returns the merged definition for a relationship
// type name.
func (r *Registry) RelationshipDefinition(name string) (RelationshipDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.relationships[name]
	return rel, ok
}

// VectorIndexedLabels returns the entity types that requested a vector
// index, sorted. The driver bootstraps one index per label.
func (r *Registry) VectorIndexedLabels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var labels []string
	for name, def := range r.entities {
		if def.VectorIndex {
			labels = append(labels, name)
		}
	}
	sort.Strings(labels)
	return labels
}

// Descriptors returns the loaded descriptors in load order. The reasoning
// executor iterates these to run each ontology's algorithms.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}
