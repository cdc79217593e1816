package reasoning

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/kohr2/dashboard-killer-graph-sub007/internal/driver"
	"github.com/kohr2/dashboard-killer-graph-sub007/internal/ontology"
)

// AlgorithmOutcome records how one declared algorithm fared during a run.
type AlgorithmOutcome struct {
	Ontology  string `json:"ontology"`
	Algorithm string `json:"algorithm"`
	Status    string `json:"status"` // executed, skipped, failed
	Error     string `json:"error,omitempty"`
}

// Report aggregates a reasoning run for operational visibility.
type Report struct {
	Executed int                `json:"executed"`
	Skipped  int                `json:"skipped"`
	Failed   int                `json:"failed"`
	Outcomes []AlgorithmOutcome `json:"outcomes"`
}

func (r *Report) add(o AlgorithmOutcome) {
	switch o.Status {
	case "executed":
		r.Executed++
	case "skipped":
		r.Skipped++
	case "failed":
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) merge(other Report) {
	r.Executed += other.Executed
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Outcomes = append(r.Outcomes, other.Outcomes...)
}

// Executor compiles and runs the reasoning algorithms declared by loaded
// ontologies. One ontology's algorithms run sequentially, each as its own
// session-scoped statement; ontologies run independently of each other.
type Executor struct {
	Driver   driver.GraphDriver
	Registry *ontology.Registry
	// Concurrency bounds how many ontologies ExecuteAllReasoning runs in
	// parallel. Zero or negative means sequential.
	Concurrency int
}

func NewExecutor(d driver.GraphDriver, registry *ontology.Registry, concurrency int) *Executor {
	return &Executor{Driver: d, Registry: registry, Concurrency: concurrency}
}

// ExecuteOntologyReasoning runs every algorithm one ontology declares, in
// name order for determinism. A compile or store failure on one algorithm is
// recorded and does not stop the remaining algorithms.
func (e *Executor) ExecuteOntologyReasoning(ctx context.Context, desc *ontology.Descriptor) Report {
	var report Report
	if desc == nil || desc.Reasoning == nil {
		return report
	}

	names := make([]string, 0, len(desc.Reasoning.Algorithms))
	for name := range desc.Reasoning.Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			log.Printf("Warning: reasoning for ontology %q aborted: %v", desc.Name, err)
			return report
		}

		alg := FromDescriptor(desc.Reasoning.Algorithms[name])
		query := Compile(alg, e.Registry)
		if query == nil {
			log.Printf("Warning: skipping algorithm %q of ontology %q: unsupported shape or unknown entity type", name, desc.Name)
			report.add(AlgorithmOutcome{Ontology: desc.Name, Algorithm: name, Status: "skipped"})
			continue
		}

		if _, err := e.Driver.ExecuteQuery(ctx, query.Cypher, query.Params); err != nil {
			log.Printf("Warning: algorithm %q of ontology %q failed: %v", name, desc.Name, err)
			report.add(AlgorithmOutcome{Ontology: desc.Name, Algorithm: name, Status: "failed", Error: err.Error()})
			continue
		}
		report.add(AlgorithmOutcome{Ontology: desc.Name, Algorithm: name, Status: "executed"})
	}

	return report
}

// ExecuteAllReasoning runs every loaded ontology's algorithms. Failures stay
// isolated per ontology as well as per algorithm; ontologies may run
// concurrently since no statement spans two of them.
func (e *Executor) ExecuteAllReasoning(ctx context.Context) Report {
	descriptors := e.Registry.Descriptors()

	workers := e.Concurrency
	if workers <= 1 {
		var report Report
		for _, desc := range descriptors {
			report.merge(e.ExecuteOntologyReasoning(ctx, desc))
		}
		return report
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report Report
	)
	sem := make(chan struct{}, workers)
	for _, desc := range descriptors {
		wg.Add(1)
		sem <- struct{}{}
		go func(d *ontology.Descriptor) {
			defer wg.Done()
			defer func() { <-sem }()
			r := e.ExecuteOntologyReasoning(ctx, d)
			mu.Lock()
			report.merge(r)
			mu.Unlock()
		}(desc)
	}
	wg.Wait()

	return report
}
