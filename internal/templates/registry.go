package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Registry keeps the immutable mapping from template ids to definitions.
type Registry struct {
	order     []string
	templates map[string]domain.ContentTemplate
}

var _ ports.TemplateCatalog = (*Registry)(nil)

// NewRegistry builds a registry from the given templates; later duplicates win.
func NewRegistry(defs ...domain.ContentTemplate) *Registry {
	r := &Registry{templates: map[string]domain.ContentTemplate{}}
	for _, def := range defs {
		if _, ok := r.templates[def.ID]; !ok {
			r.order = append(r.order, def.ID)
		}
		r.templates[def.ID] = def.Clone()
	}
	return r
}

// Builtin parses the embedded template catalog.
func Builtin() (*Registry, error) {
	defs, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin templates: %w", err)
	}
	return NewRegistry(defs...), nil
}

// MustBuiltin is Builtin for process start-up, where a broken embed is fatal.
func MustBuiltin() *Registry {
	reg, err := Builtin()
	if err != nil {
		panic(err)
	}
	return reg
}

// Parse decodes a YAML template catalog.
func Parse(raw []byte) ([]domain.ContentTemplate, error) {
	var doc struct {
		Templates []domain.ContentTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for i, def := range doc.Templates {
		if def.ID == "" {
			return nil, fmt.Errorf("template #%d has no id", i)
		}
	}
	return doc.Templates, nil
}

// Resolve returns a template by id or ErrTemplateNotFound.
func (r *Registry) Resolve(id string) (domain.ContentTemplate, error) {
	if def, ok := r.templates[id]; ok {
		return def.Clone(), nil
	}
	return domain.ContentTemplate{}, fmt.Errorf("template %s: %w", id, domain.ErrTemplateNotFound)
}

// All lists templates in registration order.
func (r *Registry) All() []domain.ContentTemplate {
	out := make([]domain.ContentTemplate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id].Clone())
	}
	return out
}
