package domain

import (
	"fmt"
	"sort"
)

// Metric is the distance function used to rank stored vectors against a
// query vector. It is a closed enumeration: values outside the three
// constants are rejected when the registry is built, never at query time.
type Metric string

// Supported distance metrics.
const (
	MetricCosine       Metric = "cosine"
	MetricInnerProduct Metric = "inner_product"
	MetricL2           Metric = "l2"
)

// Valid reports whether m is one of the supported metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricCosine, MetricInnerProduct, MetricL2:
		return true
	}
	return false
}

// Strategy describes how query text is turned into a vector for one
// modality: the embedding model plus the text transform applied before
// the embedding call.
type Strategy struct {
	// Model identifies the embedding model.
	Model string

	// Prefix is prepended to the text before embedding.
	Prefix string

	// Suffix is appended to the text after embedding.
	Suffix string
}

// Apply returns the text sent to the embedding service.
func (s Strategy) Apply(text string) string {
	return s.Prefix + text + s.Suffix
}

// Modality is a named search strategy: an embedding strategy, a
// human-readable task description and a distance metric. The modality
// name doubles as the task tag on stored embeddings.
type Modality struct {
	// Name identifies the modality and the task tag of its embeddings.
	Name string

	// Description is shown to callers (tool descriptions, CLI listing).
	Description string

	// Strategy is the embedding strategy for this modality.
	Strategy Strategy

	// Metric ranks stored vectors against the query vector.
	Metric Metric
}

// Registry is the immutable modality table. It is built once at process
// start and is read-only thereafter, so concurrent readers need no
// synchronisation.
type Registry struct {
	modalities map[string]Modality
	names      []string
}

// NewRegistry builds a registry from the given modalities. It fails on
// duplicate names, empty names or models, and metrics outside the closed
// set, making misconfiguration a startup error rather than a runtime one.
func NewRegistry(modalities []Modality) (*Registry, error) {
	if len(modalities) == 0 {
		return nil, fmt.Errorf("registry: %w: no modalities configured", ErrInvalidInput)
	}

	byName := make(map[string]Modality, len(modalities))
	names := make([]string, 0, len(modalities))
	for _, m := range modalities {
		if m.Name == "" {
			return nil, fmt.Errorf("registry: %w: modality with empty name", ErrInvalidInput)
		}
		if m.Strategy.Model == "" {
			return nil, fmt.Errorf("registry: %w: modality %q has no model", ErrInvalidInput, m.Name)
		}
		if !m.Metric.Valid() {
			return nil, fmt.Errorf("registry: %w: modality %q has unknown metric %q", ErrInvalidInput, m.Name, m.Metric)
		}
		if _, exists := byName[m.Name]; exists {
			return nil, fmt.Errorf("registry: %w: duplicate modality %q", ErrInvalidInput, m.Name)
		}
		byName[m.Name] = m
		names = append(names, m.Name)
	}
	sort.Strings(names)

	return &Registry{modalities: byName, names: names}, nil
}

// Resolve returns the modality registered under name.
// It fails with ErrUnknownModality when name is absent.
func (r *Registry) Resolve(name string) (Modality, error) {
	m, ok := r.modalities[name]
	if !ok {
		return Modality{}, fmt.Errorf("%w: %q", ErrUnknownModality, name)
	}
	return m, nil
}

// Names returns the registered modality names in sorted order.
// Sorted output keeps tool registration deterministic.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Modalities returns all registered modalities in name order.
func (r *Registry) Modalities() []Modality {
	out := make([]Modality, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.modalities[name])
	}
	return out
}

// DefaultModalities is the built-in modality table. A config file may
// replace it wholesale, but never mutate it at runtime.
func DefaultModalities() []Modality {
	return []Modality{
		{
			Name:        "qa",
			Description: "Search optimized for question->answer pairs",
			Strategy:    Strategy{Model: "nomic-embed-text:v1.5", Prefix: "search_query: "},
			Metric:      MetricCosine,
		},
		{
			Name:        "style",
			Description: "Search for content clustered by theme or style",
			Strategy:    Strategy{Model: "nomic-embed-text:v1.5", Prefix: "classification: "},
			Metric:      MetricCosine,
		},
		{
			Name:        "semantic",
			Description: "Search based on semantic similarity",
			Strategy:    Strategy{Model: "nomic-embed-text:v1.5", Prefix: "clustering: "},
			Metric:      MetricCosine,
		},
		{
			Name:        "similar_code",
			Description: "Search for similar code snippets",
			Strategy:    Strategy{Model: "hamidakach/nomic-embed-text-v1.5-GGUF", Prefix: "clustering: "},
			Metric:      MetricCosine,
		},
	}
}
