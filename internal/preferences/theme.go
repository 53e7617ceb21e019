package preferences

import (
	"context"
	"fmt"
	"sync"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type ThemeStore interface {
	LoadTheme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error
}

// Theme is the persisted dark/light flag. Until a value has been stored the
// configured default applies.
type Theme struct {
	store ThemeStore
	def   string

	mu      sync.Mutex
	current string
}

func NewTheme(store ThemeStore, def string) *Theme {
	if def != ThemeDark {
		def = ThemeLight
	}
	return &Theme{store: store, def: def, current: def}
}

func (t *Theme) Load(ctx context.Context) error {
	saved, err := t.store.LoadTheme(ctx)
	if err != nil {
		return fmt.Errorf("preferences: load theme: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if saved == ThemeDark || saved == ThemeLight {
		t.current = saved
	} else {
		t.current = t.def
	}
	return nil
}

func (t *Theme) Get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Theme) Set(ctx context.Context, theme string) (string, error) {
	if theme != ThemeDark && theme != ThemeLight {
		return t.Get(), domain.Invalid("theme", "must be dark or light")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = theme
	if err := t.store.SaveTheme(ctx, theme); err != nil {
		return theme, fmt.Errorf("preferences: save theme: %w", err)
	}
	return theme, nil
}

func (t *Theme) Toggle(ctx context.Context) (string, error) {
	t.mu.Lock()
	next := ThemeDark
	if t.current == ThemeDark {
		next = ThemeLight
	}
	t.mu.Unlock()
	return t.Set(ctx, next)
}
