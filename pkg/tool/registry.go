package tool

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// Registry is the concurrency-safe store of registered tools. All
// operations are safe to call from any number of goroutines without
// external locking.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*entry
}

type entry struct {
	handler  Handler
	compiled *gojsonschema.Schema
	meta     Metadata
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*entry),
	}
}

// Register validates and stores a tool definition. Registered tools are
// immutable; a second registration under the same name is rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return NewError(KindValidation, "tool name cannot be empty")
	}
	if def.Description == "" {
		return NewError(KindValidation, "tool description cannot be empty")
	}
	if def.Handler == nil {
		return NewError(KindValidation, "tool handler cannot be nil")
	}

	if err := ValidateSchema(def.Schema); err != nil {
		return err
	}
	compiled, err := CompileSchema(def.Schema)
	if err != nil {
		return err
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate tool id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return NewError(KindValidation, fmt.Sprintf("tool %q already registered", def.Name))
	}

	r.tools[def.Name] = &entry{
		handler:  def.Handler,
		compiled: compiled,
		meta: Metadata{
			ID:          id,
			Name:        def.Name,
			Description: def.Description,
			Schema:      def.Schema,
			ReturnType:  def.ReturnType,
			TimeoutMS:   def.Timeout.Milliseconds(),
			CreatedAt:   time.Now(),
		},
	}

	log.Info().Str("tool", def.Name).Str("tool_id", id).Msg("Tool registered")

	return nil
}

// RegisterFunc adapts a native Go function into a tool handler and
// registers it. The function's shape is validated first.
func (r *Registry) RegisterFunc(name, description string, fn any, schema map[string]any, returnType string) error {
	handler, err := Adapt(fn)
	if err != nil {
		return err
	}

	return r.Register(Definition{
		Name:        name,
		Description: description,
		Schema:      schema,
		ReturnType:  returnType,
		Handler:     handler,
	})
}

// Metadata returns a snapshot of a tool's metadata. The second return
// value is false for unknown names.
func (r *Registry) Metadata(name string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, ok := r.tools[name]
	if !ok {
		return Metadata{}, false
	}

	meta := ent.meta
	meta.Schema = cloneSchema(ent.meta.Schema)
	if ent.meta.LastCalledAt != nil {
		last := *ent.meta.LastCalledAt
		meta.LastCalledAt = &last
	}
	return meta, true
}

// cloneSchema deep-copies a JSON-shaped schema so metadata snapshots
// cannot mutate the stored definition.
func cloneSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	return cloneValue(schema).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	case []string:
		s := make([]string, len(t))
		copy(s, t)
		return s
	default:
		return v
	}
}

// List returns the names of all registered tools. Order is not guaranteed.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// Unregister removes a tool, reporting whether it existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)

	log.Info().Str("tool", name).Msg("Tool unregistered")

	return true
}

// lookup returns the live entry for a tool.
func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, ok := r.tools[name]
	return ent, ok
}

// recordCall updates a tool's call counters after a completed execution.
// These are the only metadata fields that change after registration.
func (r *Registry) recordCall(name string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.tools[name]
	if !ok {
		return
	}

	ent.meta.CallCount++
	ent.meta.TotalDurationMS += uint64(duration.Milliseconds())
	now := time.Now()
	ent.meta.LastCalledAt = &now
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
// It is a thin convenience over an explicit Registry instance.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry. Intended for tests.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultRegistry = nil
}
