package preferences

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
)

// Preset is a named set of StyleGAN parameters.
type Preset struct {
	Name        string             `json:"name"`
	Params      domain.StyleParams `json:"params"`
	Description string             `json:"description,omitempty"`
	BuiltIn     bool               `json:"builtIn"`
}

var builtIns = []Preset{
	{Name: "Natural", Params: domain.StyleParams{Truncation: 0.7, Noise: 0.3, Strength: 0.6}, Description: "Balanced defaults for natural-looking transfers", BuiltIn: true},
	{Name: "Artistic", Params: domain.StyleParams{Truncation: 0.9, Noise: 0.7, Strength: 0.8}, Description: "Creative, expressive transfers", BuiltIn: true},
	{Name: "Bold", Params: domain.StyleParams{Truncation: 1.0, Noise: 0.8, Strength: 1.0}, Description: "Strong, dramatic transfers", BuiltIn: true},
	{Name: "Subtle", Params: domain.StyleParams{Truncation: 0.5, Noise: 0.2, Strength: 0.4}, Description: "Delicate, understated transfers", BuiltIn: true},
}

// BuiltIns returns the fixed presets in display order.
func BuiltIns() []Preset {
	out := make([]Preset, len(builtIns))
	copy(out, builtIns)
	return out
}

type PresetStore interface {
	LoadPresets(ctx context.Context) (map[string]domain.StyleParams, error)
	SavePresets(ctx context.Context, presets map[string]domain.StyleParams) error
}

// Presets serves built-in presets plus the persisted custom ones. A custom
// preset may reuse a built-in name; lookups prefer the custom entry.
type Presets struct {
	store PresetStore

	mu     sync.Mutex
	custom map[string]domain.StyleParams
}

func NewPresets(store PresetStore) *Presets {
	return &Presets{store: store, custom: map[string]domain.StyleParams{}}
}

// Load reads custom presets, skipping entries outside the valid range.
func (p *Presets) Load(ctx context.Context) error {
	saved, err := p.store.LoadPresets(ctx)
	if err != nil {
		return fmt.Errorf("preferences: load presets: %w", err)
	}
	custom := make(map[string]domain.StyleParams, len(saved))
	for name, params := range saved {
		if params.Validate() == nil {
			custom[name] = params
		}
	}
	p.mu.Lock()
	p.custom = custom
	p.mu.Unlock()
	return nil
}

// All lists built-ins first, then custom presets by name.
func (p *Presets) All() []Preset {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := BuiltIns()
	names := make([]string, 0, len(p.custom))
	for name := range p.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, Preset{Name: name, Params: p.custom[name]})
	}
	return out
}

func (p *Presets) Lookup(name string) (Preset, error) {
	p.mu.Lock()
	params, ok := p.custom[name]
	p.mu.Unlock()
	if ok {
		return Preset{Name: name, Params: params}, nil
	}
	for _, b := range builtIns {
		if b.Name == name {
			return b, nil
		}
	}
	return Preset{}, fmt.Errorf("preferences: preset %q: %w", name, domain.ErrNotFound)
}

// Save stores params under name, replacing an existing custom preset.
func (p *Presets) Save(ctx context.Context, name string, params domain.StyleParams) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, domain.Invalid("name", "preset name is required")
	}
	if err := params.Validate(); err != nil {
		return Preset{}, err
	}
	return Preset{Name: name, Params: params}, p.mutate(ctx, func(m map[string]domain.StyleParams) {
		m[name] = params
	})
}

// Delete removes a custom preset; unknown names are a no-op.
func (p *Presets) Delete(ctx context.Context, name string) error {
	return p.mutate(ctx, func(m map[string]domain.StyleParams) { delete(m, name) })
}

func (p *Presets) mutate(ctx context.Context, fn func(map[string]domain.StyleParams)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := make(map[string]domain.StyleParams, len(p.custom)+1)
	for k, v := range p.custom {
		next[k] = v
	}
	fn(next)
	p.custom = next
	if err := p.store.SavePresets(ctx, next); err != nil {
		return fmt.Errorf("preferences: save presets: %w", err)
	}
	return nil
}
