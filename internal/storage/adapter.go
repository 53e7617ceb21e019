package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
)

// Keys shared with the browser UI's local storage.
const (
	KeyTheme         = "theme"
	KeyHistory       = "imageGenerationHistory"
	KeyCustomPresets = "styleGanCustomPresets"
)

// ErrCorrupt marks a stored value that exists but does not decode.
var ErrCorrupt = errors.New("storage: stored value is malformed")

// Adapter maps the studio's persisted state onto a KV.
type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// LoadHistory returns the stored list, nil when absent, or ErrCorrupt.
func (a *Adapter) LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := a.getJSON(ctx, KeyHistory, &entries); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

func (a *Adapter) SaveHistory(ctx context.Context, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return a.setJSON(ctx, KeyHistory, entries)
}

// LoadTheme returns the stored flag, or "" when absent. Values are stored as
// the bare strings "dark" / "light" like the browser does.
func (a *Adapter) LoadTheme(ctx context.Context) (string, error) {
	data, err := a.kv.Get(ctx, KeyTheme)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *Adapter) SaveTheme(ctx context.Context, theme string) error {
	return a.kv.Set(ctx, KeyTheme, []byte(theme))
}

func (a *Adapter) LoadPresets(ctx context.Context) (map[string]domain.StyleParams, error) {
	presets := map[string]domain.StyleParams{}
	if err := a.getJSON(ctx, KeyCustomPresets, &presets); err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string]domain.StyleParams{}, nil
		}
		return nil, err
	}
	return presets, nil
}

func (a *Adapter) SavePresets(ctx context.Context, presets map[string]domain.StyleParams) error {
	if presets == nil {
		presets = map[string]domain.StyleParams{}
	}
	return a.setJSON(ctx, KeyCustomPresets, presets)
}

func (a *Adapter) getJSON(ctx context.Context, key string, v any) error {
	data, err := a.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (a *Adapter) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return a.kv.Set(ctx, key, data)
}
