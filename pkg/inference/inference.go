package inference

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// Inferencer defines an interface for running model inference and verification.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Edit(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}

// Registry holds the providers configured at startup. It is built once in
// main and passed by reference into the generator and evaluator; nothing
// mutates it after construction.
type Registry struct {
	providers map[string]Inferencer
	def       string
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Inferencer)}
}

// Register adds a provider. The first registered provider becomes the default.
func (r *Registry) Register(name string, inf Inferencer) {
	if r.def == "" {
		r.def = name
	}
	r.providers[name] = inf
}

// Get returns the named provider, or the default when name is empty.
// A nil Inferencer with a nil error means no provider is configured at all;
// callers treat that as capability-unavailable, not as a failure.
func (r *Registry) Get(name string) (Inferencer, error) {
	if name == "" {
		name = r.def
	}
	if name == "" {
		return nil, nil
	}
	inf, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider %q", name)
	}
	return inf, nil
}

func (r *Registry) Default() string { return r.def }

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
