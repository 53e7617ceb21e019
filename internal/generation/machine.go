package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/messages"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
)

// Phase is the workflow position. Idle, HasInitial and HasFinal are stable;
// the Generating phases exist only while a backend call is outstanding.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseGeneratingInitial Phase = "generating_initial"
	PhaseHasInitial        Phase = "has_initial"
	PhaseGeneratingFinal   Phase = "generating_final"
	PhaseHasFinal          Phase = "has_final"
)

// State is a value snapshot of one session.
type State struct {
	Phase         Phase               `json:"phase"`
	Prompt        string              `json:"prompt"`
	InitialModel  string              `json:"initialModel"`
	SelectedModel string              `json:"selectedModel"`
	InitialImage  domain.ImagePayload `json:"initialImage"`
	FinalImage    domain.ImagePayload `json:"finalImage"`
	StyleParams   domain.StyleParams  `json:"styleParams"`
	ActivePreset  string              `json:"activePreset,omitempty"`
	Loading       bool                `json:"loading"`
	Error         string              `json:"error,omitempty"`
}

type Options struct {
	// MaxPromptLength bounds prompts in characters; 0 disables the check.
	MaxPromptLength int
	Locale          language.Tag
	History         domain.HistorySink
	Logger          *infra.Logger
	Metrics         *metrics.Recorder
	Now             func() time.Time
}

// Machine sequences prompt → initial image → final image for one session.
// The mutex guards state only; backend calls run unlocked and their results
// are applied only if no Reset happened in between.
type Machine struct {
	client    remote.Client
	history   domain.HistorySink
	maxPrompt int
	logger    *infra.Logger
	metrics   *metrics.Recorder
	now       func() time.Time

	mu     sync.Mutex
	locale language.Tag
	state  State
	token  uint64
}

func NewMachine(client remote.Client, opts Options) *Machine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	locale := opts.Locale
	if locale == language.Und {
		locale = language.Korean
	}
	return &Machine{
		client:    client,
		history:   opts.History,
		maxPrompt: opts.MaxPromptLength,
		logger:    infra.OrDiscard(opts.Logger),
		metrics:   opts.Metrics,
		now:       now,
		locale:    locale,
		state:     initialState(),
	}
}

func initialState() State {
	return State{
		Phase:         PhaseIdle,
		InitialModel:  domain.DefaultInitialModel,
		SelectedModel: domain.DefaultFinalModel,
		StyleParams:   domain.DefaultStyleParams,
	}
}

// SetLocale picks the language of future error messages.
func (m *Machine) SetLocale(tag language.Tag) {
	m.mu.Lock()
	m.locale = tag
	m.mu.Unlock()
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SubmitPrompt generates a new initial image for text. Invalid text is
// rejected before any state change.
func (m *Machine) SubmitPrompt(ctx context.Context, text string) (State, error) {
	if err := domain.ValidatePrompt(text, m.maxPrompt); err != nil {
		return m.Snapshot(), err
	}

	m.mu.Lock()
	if m.state.Loading {
		defer m.mu.Unlock()
		return m.state, domain.ErrBusy
	}
	prior := m.state
	m.state.Prompt = text
	m.state.Error = ""
	m.state.Loading = true
	m.state.Phase = PhaseGeneratingInitial
	token := m.token
	model := m.state.InitialModel
	m.mu.Unlock()

	img, err := m.client.RequestInitialImage(ctx, text, model)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != token {
		m.metrics.Generation("initial", "stale")
		m.logger.Debug().Msg("discarding initial image after reset")
		return m.state, domain.ErrStale
	}
	if err != nil {
		m.fail(prior, err)
		m.metrics.Generation("initial", "error")
		return m.state, err
	}
	m.state.InitialImage = img
	m.state.FinalImage = domain.ImagePayload{}
	m.state.Loading = false
	m.state.Phase = PhaseHasInitial
	m.metrics.Generation("initial", "ok")
	return m.state, nil
}

// RequestTransform restyles the held initial image with the selected model
// and records the completed cycle in history.
func (m *Machine) RequestTransform(ctx context.Context) (State, error) {
	m.mu.Lock()
	if m.state.Loading {
		defer m.mu.Unlock()
		return m.state, domain.ErrBusy
	}
	if m.state.InitialImage.IsZero() {
		defer m.mu.Unlock()
		return m.state, fmt.Errorf("generation: transform needs an initial image: %w", domain.ErrInvalidState)
	}
	prior := m.state
	req := remote.TransformRequest{Image: m.state.InitialImage, Model: m.state.SelectedModel}
	if model, ok := domain.LookupModel(domain.StageFinal, req.Model); ok && model.Tunable {
		params := m.state.StyleParams
		req.Params = &params
	}
	prompt := m.state.Prompt
	m.state.Error = ""
	m.state.Loading = true
	m.state.Phase = PhaseGeneratingFinal
	token := m.token
	m.mu.Unlock()

	img, err := m.client.RequestTransform(ctx, req)

	m.mu.Lock()
	if m.token != token {
		defer m.mu.Unlock()
		m.metrics.Generation("final", "stale")
		m.logger.Debug().Msg("discarding final image after reset")
		return m.state, domain.ErrStale
	}
	if err != nil {
		defer m.mu.Unlock()
		m.fail(prior, err)
		m.metrics.Generation("final", "error")
		return m.state, err
	}
	m.state.FinalImage = img
	m.state.Loading = false
	m.state.Phase = PhaseHasFinal
	snapshot := m.state
	m.mu.Unlock()
	m.metrics.Generation("final", "ok")

	if m.history == nil {
		return snapshot, nil
	}
	entry := domain.NewHistoryEntry(m.now(), prompt, req.Model, req.Image, img)
	if err := m.history.Append(ctx, entry); err != nil {
		m.logger.Error().Err(err).Msg("history append failed")
		return snapshot, fmt.Errorf("generation: record history: %w", err)
	}
	return snapshot, nil
}

// Regenerate redoes the most recent stage: the transform when a final image
// is held, the initial image otherwise.
func (m *Machine) Regenerate(ctx context.Context) (State, error) {
	m.mu.Lock()
	hasFinal := !m.state.FinalImage.IsZero()
	prompt := m.state.Prompt
	m.mu.Unlock()
	if hasFinal {
		return m.RequestTransform(ctx)
	}
	return m.SubmitPrompt(ctx, prompt)
}

// Reset clears the session from any phase. A response still in flight will
// be discarded when it arrives.
func (m *Machine) Reset() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token++
	m.state.Prompt = ""
	m.state.InitialImage = domain.ImagePayload{}
	m.state.FinalImage = domain.ImagePayload{}
	m.state.Error = ""
	m.state.Loading = false
	m.state.Phase = PhaseIdle
	return m.state
}

// SelectModel picks the final-stage model.
func (m *Machine) SelectModel(id string) (State, error) {
	if _, ok := domain.LookupModel(domain.StageFinal, id); !ok {
		return m.Snapshot(), domain.Invalid("model", fmt.Sprintf("unknown model %q", id))
	}
	return m.update(func(s *State) { s.SelectedModel = id })
}

// SelectInitialModel picks the diffusion model for the initial stage.
func (m *Machine) SelectInitialModel(id string) (State, error) {
	if _, ok := domain.LookupModel(domain.StageInitial, id); !ok {
		return m.Snapshot(), domain.Invalid("initialModel", fmt.Sprintf("unknown model %q", id))
	}
	return m.update(func(s *State) { s.InitialModel = id })
}

// SetStyleParams replaces the parameters sent with tunable models and clears
// the active preset.
func (m *Machine) SetStyleParams(p domain.StyleParams) (State, error) {
	if err := p.Validate(); err != nil {
		return m.Snapshot(), err
	}
	return m.update(func(s *State) {
		s.StyleParams = p
		s.ActivePreset = ""
	})
}

// SetStyleParam adjusts a single parameter by name.
func (m *Machine) SetStyleParam(name string, value float64) (State, error) {
	m.mu.Lock()
	current := m.state.StyleParams
	m.mu.Unlock()
	next, err := current.With(name, value)
	if err != nil {
		return m.Snapshot(), err
	}
	return m.update(func(s *State) {
		s.StyleParams = next
		s.ActivePreset = ""
	})
}

// ApplyPreset adopts named parameters and marks the preset active.
func (m *Machine) ApplyPreset(name string, p domain.StyleParams) (State, error) {
	if err := p.Validate(); err != nil {
		return m.Snapshot(), err
	}
	return m.update(func(s *State) {
		s.StyleParams = p
		s.ActivePreset = name
	})
}

// ResetStyleParams restores the default parameters.
func (m *Machine) ResetStyleParams() (State, error) {
	return m.update(func(s *State) {
		s.StyleParams = domain.DefaultStyleParams
		s.ActivePreset = ""
	})
}

// Restore loads a history entry back into the session.
func (m *Machine) Restore(entry domain.HistoryEntry) (State, error) {
	if entry.InitialImage.IsZero() || entry.FinalImage.IsZero() {
		return m.Snapshot(), fmt.Errorf("generation: restore: entry %d has no images: %w", entry.ID, domain.ErrInvalidState)
	}
	return m.update(func(s *State) {
		s.Prompt = entry.Prompt
		if _, ok := domain.LookupModel(domain.StageFinal, entry.Model); ok {
			s.SelectedModel = entry.Model
		}
		s.InitialImage = entry.InitialImage
		s.FinalImage = entry.FinalImage
		s.Error = ""
		s.Phase = PhaseHasFinal
	})
}

// update applies fn in a stable phase.
func (m *Machine) update(fn func(*State)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Loading {
		return m.state, domain.ErrBusy
	}
	fn(&m.state)
	return m.state, nil
}

// fail returns to the prior stable state with the error banner set. Must run
// with mu held.
func (m *Machine) fail(prior State, err error) {
	prior.Loading = false
	prior.Error = messages.Describe(m.locale, err)
	m.state = prior
	ev := m.logger.Warn().Err(err).Str("phase", string(prior.Phase))
	if status := domain.StatusOf(err); status != 0 {
		ev = ev.Int("status", status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ev = ev.Bool("timeout", true)
	}
	ev.Msg("generation failed")
}
