package generation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/history"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
	"github.com/fasion-image-generator-project/FashionFusion/internal/storage"
)

type fixture struct {
	client  *remote.MockClient
	history *history.Manager
	machine *Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := remote.NewMockClient(remote.MockOptions{})
	hist := history.NewManager(storage.NewAdapter(storage.NewMemoryStore()), history.Options{})
	require.NoError(t, hist.Load(context.Background()))
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	m := NewMachine(client, Options{MaxPromptLength: domain.DefaultMaxPromptLength, History: hist, Now: now})
	return &fixture{client: client, history: hist, machine: m}
}

func TestHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.machine.SubmitPrompt(ctx, "denim jacket")
	require.NoError(t, err)
	assert.Equal(t, PhaseHasInitial, st.Phase)
	assert.Equal(t, remote.DummyInitialImage, st.InitialImage)
	assert.False(t, st.Loading)

	st, err = f.machine.RequestTransform(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseHasFinal, st.Phase)
	assert.Equal(t, remote.DummyFinalImage, st.FinalImage)

	entries := f.history.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "denim jacket", entries[0].Prompt)
	assert.Equal(t, domain.DefaultFinalModel, entries[0].Model)
}

func TestResetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.machine.SubmitPrompt(ctx, "scarf")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		st := f.machine.Reset()
		assert.Equal(t, PhaseIdle, st.Phase)
		assert.Empty(t, st.Prompt)
		assert.True(t, st.InitialImage.IsZero())
		assert.True(t, st.FinalImage.IsZero())
		assert.Empty(t, st.Error)
	}
}

func TestConcurrentTriggerIsRejected(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	started := make(chan struct{})
	f.client.InitialFunc = func(ctx context.Context, prompt, model string) (domain.ImagePayload, error) {
		close(started)
		<-release
		return remote.DummyInitialImage, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.machine.SubmitPrompt(context.Background(), "first")
		done <- err
	}()
	<-started

	before := f.machine.Snapshot()
	assert.True(t, before.Loading)
	st, err := f.machine.SubmitPrompt(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, before, st)
	assert.Equal(t, 1, f.client.Calls("initial"))

	_, err = f.machine.SelectModel("cycle-gan")
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "first", f.machine.Snapshot().Prompt)
}

func TestHistoryIsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, p := range []string{"a", "b"} {
		_, err := f.machine.SubmitPrompt(ctx, p)
		require.NoError(t, err)
		_, err = f.machine.RequestTransform(ctx)
		require.NoError(t, err)
	}
	entries := f.history.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Prompt)
	assert.Equal(t, "a", entries[1].Prompt)
}

func TestPromptValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.machine.Snapshot()

	_, err := f.machine.SubmitPrompt(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.machine.SubmitPrompt(ctx, strings.Repeat(" ", 501))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.machine.SubmitPrompt(ctx, strings.Repeat("a", 501))
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, before, f.machine.Snapshot())
	assert.Zero(t, f.client.Calls("initial"))

	_, err = f.machine.SubmitPrompt(ctx, strings.Repeat("가", 500))
	assert.NoError(t, err)
}

func TestTransformNeedsInitialImage(t *testing.T) {
	f := newFixture(t)
	_, err := f.machine.RequestTransform(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, f.client.Calls("transform"))
	assert.Equal(t, PhaseIdle, f.machine.Snapshot().Phase)
}

func TestFailureRestoresPriorStableState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.machine.SubmitPrompt(ctx, "coat")
	require.NoError(t, err)

	f.client.TransformFunc = func(context.Context, remote.TransformRequest) (domain.ImagePayload, error) {
		return domain.ImagePayload{}, &domain.ServerError{Status: 404}
	}
	st, err := f.machine.RequestTransform(ctx)
	assert.Equal(t, 404, domain.StatusOf(err))
	assert.Equal(t, PhaseHasInitial, st.Phase)
	assert.False(t, st.Loading)
	assert.Equal(t, "요청한 리소스를 찾을 수 없습니다.", st.Error)
	assert.Empty(t, f.history.List())

	f.client.TransformFunc = nil
	st, err = f.machine.RequestTransform(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Error)
}

func TestUnmappedStatusUsesFallbackMessage(t *testing.T) {
	f := newFixture(t)
	f.machine.SetLocale(language.English)
	f.client.InitialFunc = func(context.Context, string, string) (domain.ImagePayload, error) {
		return domain.ImagePayload{}, &domain.ServerError{Status: 599}
	}
	st, err := f.machine.SubmitPrompt(context.Background(), "boots")
	require.Error(t, err)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "An unknown error occurred.", st.Error)
}

func TestLateResponseAfterResetIsDiscarded(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	started := make(chan struct{})
	f.client.InitialFunc = func(ctx context.Context, prompt, model string) (domain.ImagePayload, error) {
		close(started)
		<-release
		return remote.DummyInitialImage, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.machine.SubmitPrompt(context.Background(), "late")
		done <- err
	}()
	<-started
	f.machine.Reset()
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrStale)
	st := f.machine.Snapshot()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.True(t, st.InitialImage.IsZero())
	assert.Empty(t, st.Prompt)
}

func TestRegenerateRedoesLatestStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.machine.SubmitPrompt(ctx, "hat")
	require.NoError(t, err)
	_, err = f.machine.Regenerate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.Calls("initial"))
	assert.Zero(t, f.client.Calls("transform"))

	_, err = f.machine.RequestTransform(ctx)
	require.NoError(t, err)
	st, err := f.machine.Regenerate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.Calls("transform"))
	assert.Equal(t, PhaseHasFinal, st.Phase)
	assert.Len(t, f.history.List(), 2)
}

func TestTunableModelsSendParams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var got []remote.TransformRequest
	f.client.TransformFunc = func(_ context.Context, req remote.TransformRequest) (domain.ImagePayload, error) {
		got = append(got, req)
		return remote.DummyFinalImage, nil
	}
	_, err := f.machine.SubmitPrompt(ctx, "skirt")
	require.NoError(t, err)

	_, err = f.machine.RequestTransform(ctx)
	require.NoError(t, err)

	params := domain.StyleParams{Truncation: 1, Noise: 0.8, Strength: 1}
	_, err = f.machine.SetStyleParams(params)
	require.NoError(t, err)
	_, err = f.machine.SelectModel("style-gan")
	require.NoError(t, err)
	_, err = f.machine.RequestTransform(ctx)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Nil(t, got[0].Params)
	require.NotNil(t, got[1].Params)
	assert.Equal(t, params, *got[1].Params)
	assert.Equal(t, "style-gan", got[1].Model)
}

func TestSelectionValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.machine.SelectModel("dall-e")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.machine.SelectInitialModel("cycle-gan")
	assert.ErrorIs(t, err, domain.ErrValidation)
	st, err := f.machine.SelectInitialModel("Stable Diffusion 3.5")
	require.NoError(t, err)
	assert.Equal(t, "Stable Diffusion 3.5", st.InitialModel)
	_, err = f.machine.SetStyleParams(domain.StyleParams{Truncation: 2, Noise: 0.5, Strength: 0.5})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRestoreLoadsEntry(t *testing.T) {
	f := newFixture(t)
	entry := domain.HistoryEntry{
		ID:           42,
		Prompt:       "vintage",
		Model:        "Disco GAN",
		InitialImage: remote.DummyInitialImage,
		FinalImage:   remote.DummyFinalImage,
	}
	st, err := f.machine.Restore(entry)
	require.NoError(t, err)
	assert.Equal(t, PhaseHasFinal, st.Phase)
	assert.Equal(t, "vintage", st.Prompt)
	assert.Equal(t, "Disco GAN", st.SelectedModel)

	_, err = f.machine.Restore(domain.HistoryEntry{ID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSessions(t *testing.T) {
	f := newFixture(t)
	sessions := NewSessions(func() *Machine { return NewMachine(f.client, Options{}) })

	id, m1 := sessions.Get("")
	require.NotEmpty(t, id)
	same, m2 := sessions.Get(id)
	assert.Equal(t, id, same)
	assert.Same(t, m1, m2)

	other, m3 := sessions.Get("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", other)
	assert.NotSame(t, m1, m3)
	assert.Equal(t, 2, sessions.Len())

	chosen := uuid.NewString()
	minted, m4 := sessions.Get(chosen)
	assert.NotEqual(t, chosen, minted)
	assert.NotSame(t, m1, m4)
	again, m5 := sessions.Get(chosen)
	assert.NotEqual(t, minted, again)
	assert.NotSame(t, m4, m5)
	assert.Equal(t, 4, sessions.Len())

	sessions.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 4, sessions.Sweep(time.Minute))
	assert.Zero(t, sessions.Len())
}

func TestStyleParamEditing(t *testing.T) {
	f := newFixture(t)
	preset := domain.StyleParams{Truncation: 0.9, Noise: 0.7, Strength: 0.8}

	st, err := f.machine.ApplyPreset("Artistic", preset)
	require.NoError(t, err)
	assert.Equal(t, "Artistic", st.ActivePreset)

	st, err = f.machine.SetStyleParam("noise", 0.4)
	require.NoError(t, err)
	assert.Empty(t, st.ActivePreset)
	assert.InDelta(t, 0.4, st.StyleParams.Noise, 1e-9)
	assert.InDelta(t, 0.9, st.StyleParams.Truncation, 1e-9)

	_, err = f.machine.SetStyleParam("noise", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.machine.SetStyleParam("gamma", 0.5)
	assert.ErrorIs(t, err, domain.ErrValidation)

	st, err = f.machine.ResetStyleParams()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStyleParams, st.StyleParams)
}
