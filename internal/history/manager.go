package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
	"github.com/fasion-image-generator-project/FashionFusion/internal/storage"
)

// ImportMode decides how an imported list combines with the current one.
type ImportMode string

const (
	ImportUnspecified ImportMode = ""
	ImportMerge       ImportMode = "merge"
	ImportReplace     ImportMode = "replace"
)

// ParseImportMode accepts "merge", "replace" or "" (unspecified).
func ParseImportMode(s string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ImportUnspecified, ImportMerge, ImportReplace:
		return m, nil
	default:
		return "", domain.Invalid("mode", fmt.Sprintf("unknown import mode %q", s))
	}
}

// Store persists the whole list at once.
type Store interface {
	LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	SaveHistory(ctx context.Context, entries []domain.HistoryEntry) error
}

type Options struct {
	// Limit keeps only the newest Limit entries; 0 keeps everything.
	Limit   int
	Logger  *infra.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Manager owns the ordered history, newest first. Every mutation is written
// through to the store; when the write fails the in-memory list keeps the
// mutation and the error is returned.
type Manager struct {
	store   Store
	limit   int
	logger  *infra.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func NewManager(store Store, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limit := opts.Limit
	if limit < 0 {
		limit = 0
	}
	return &Manager{
		store:   store,
		limit:   limit,
		logger:  infra.OrDiscard(opts.Logger),
		metrics: opts.Metrics,
		now:     now,
	}
}

// Load replaces the in-memory list with the stored one. A missing or
// malformed value yields an empty history; only backend failures are returned.
func (m *Manager) Load(ctx context.Context) error {
	entries, err := m.store.LoadHistory(ctx)
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return fmt.Errorf("history: load: %w", err)
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("stored history is malformed, starting empty")
		entries = nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = m.bound(entries)
	m.metrics.HistorySize(len(m.entries))
	m.logger.Debug().Int("entries", len(m.entries)).Msg("history loaded")
	return nil
}

// Append prepends entry. A zero ID is stamped from the clock and IDs are kept
// strictly above the current head so two entries created in the same
// millisecond stay distinct.
func (m *Manager) Append(ctx context.Context, entry domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == 0 {
		now := m.now()
		entry.ID = now.UnixMilli()
		if entry.Timestamp == "" {
			entry.Timestamp = now.Format(domain.TimestampLayout)
		}
	}
	if len(m.entries) > 0 && entry.ID <= m.entries[0].ID && m.indexOf(entry.ID) >= 0 {
		entry.ID = m.entries[0].ID + 1
	}
	next := make([]domain.HistoryEntry, 0, len(m.entries)+1)
	next = append(next, entry)
	next = append(next, m.entries...)
	return m.commit(ctx, "append", next)
}

// Delete removes the entry with id; unknown ids are a no-op.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]domain.HistoryEntry, 0, len(m.entries)-1)
	next = append(next, m.entries[:i]...)
	next = append(next, m.entries[i+1:]...)
	return m.commit(ctx, "delete", next)
}

// Clear empties the history once the caller has confirmed.
func (m *Manager) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("history: clear: %w", domain.ErrConfirmationRequired)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, "clear", []domain.HistoryEntry{})
}

// Export renders the list as indented JSON and names the download after
// today's UTC date.
func (m *Manager) Export() ([]byte, string, error) {
	entries := m.List()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, "", fmt.Errorf("history: export: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	return data, ExportFilename(m.now()), nil
}

// ExportFilename is the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return "fashion-fusion-history-" + t.UTC().Format("2006-01-02") + ".json"
}

// Import parses data as a JSON array of entries and combines it per mode.
// Format is checked before mode, so a bad file never asks for confirmation.
// It returns the number of imported entries.
func (m *Manager) Import(ctx context.Context, data []byte, mode ImportMode) (int, error) {
	imported, err := decodeEntries(data)
	if err != nil {
		return 0, err
	}
	if mode != ImportMerge && mode != ImportReplace {
		return 0, fmt.Errorf("history: import: choose merge or replace: %w", domain.ErrConfirmationRequired)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var next []domain.HistoryEntry
	if mode == ImportMerge {
		next = make([]domain.HistoryEntry, 0, len(m.entries)+len(imported))
		next = append(next, m.entries...)
	}
	next = append(next, imported...)
	if err := m.commit(ctx, "import", next); err != nil {
		return len(imported), err
	}
	return len(imported), nil
}

// decodeEntries accepts only a top-level JSON array whose items are objects
// carrying an id and at least one image. A bare null is not an array.
func decodeEntries(data []byte) ([]domain.HistoryEntry, error) {
	var raw []json.RawMessage
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) || json.Unmarshal(data, &raw) != nil {
		return nil, fmt.Errorf("history: import: expected a JSON array: %w", domain.ErrFormat)
	}
	entries := make([]domain.HistoryEntry, 0, len(raw))
	for i, item := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			return nil, fmt.Errorf("history: import: entry %d is not an object: %w", i, domain.ErrFormat)
		}
		var e domain.HistoryEntry
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, fmt.Errorf("history: import: entry %d: %w", i, domain.ErrFormat)
		}
		if e.ID == 0 || (e.InitialImage.IsZero() && e.FinalImage.IsZero()) {
			return nil, fmt.Errorf("history: import: entry %d has no id or images: %w", i, domain.ErrFormat)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// List returns a copy of the entries, newest first.
func (m *Manager) List() []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) Get(id int64) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.entries[i], nil
	}
	return domain.HistoryEntry{}, fmt.Errorf("history: entry %d: %w", id, domain.ErrNotFound)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// commit must run with mu held.
func (m *Manager) commit(ctx context.Context, op string, next []domain.HistoryEntry) error {
	m.entries = m.bound(next)
	m.metrics.HistorySize(len(m.entries))
	if err := m.store.SaveHistory(ctx, m.entries); err != nil {
		m.logger.Error().Err(err).Str("op", op).Msg("history write failed")
		return fmt.Errorf("history: %s: persist: %w", op, err)
	}
	return nil
}

func (m *Manager) bound(entries []domain.HistoryEntry) []domain.HistoryEntry {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	if m.limit > 0 && len(entries) > m.limit {
		entries = entries[:m.limit:m.limit]
	}
	return entries
}

func (m *Manager) indexOf(id int64) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

var _ domain.HistorySink = (*Manager)(nil)
