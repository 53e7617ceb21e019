package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePrompt(t *testing.T) {
	assert.ErrorIs(t, ValidatePrompt("", DefaultMaxPromptLength), ErrValidation)
	assert.ErrorIs(t, ValidatePrompt("   ", DefaultMaxPromptLength), ErrValidation)
	assert.ErrorIs(t, ValidatePrompt(strings.Repeat("a", 501), DefaultMaxPromptLength), ErrValidation)
	assert.NoError(t, ValidatePrompt(strings.Repeat("a", 500), DefaultMaxPromptLength))
	assert.NoError(t, ValidatePrompt(strings.Repeat("가", 500), DefaultMaxPromptLength))
	assert.NoError(t, ValidatePrompt(strings.Repeat("a", 501), 0))
}

func TestServerErrorStatus(t *testing.T) {
	err := error(&ServerError{Status: 404, Detail: "missing"})
	wrapped := errors.Join(errors.New("remote"), err)
	assert.Equal(t, 404, StatusOf(wrapped))
	assert.Equal(t, 0, StatusOf(ErrNetwork))
}

func TestLookupModel(t *testing.T) {
	m, ok := LookupModel(StageFinal, "Style GAN-ada")
	assert.True(t, ok)
	assert.True(t, m.Tunable)

	_, ok = LookupModel(StageFinal, DefaultInitialModel)
	assert.False(t, ok)

	_, ok = LookupModel(StageInitial, DefaultInitialModel)
	assert.True(t, ok)
}

func TestStyleParams(t *testing.T) {
	assert.NoError(t, DefaultStyleParams.Validate())

	p, err := DefaultStyleParams.With("noise", 0.9)
	assert.NoError(t, err)
	assert.Equal(t, 0.9, p.Noise)

	_, err = DefaultStyleParams.With("noise", 1.5)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = DefaultStyleParams.With("gamma", 0.5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStyleMixingParamsDefaults(t *testing.T) {
	p := StyleMixingParams{NumSeeds: 8}.WithDefaults()
	assert.Equal(t, 8, p.NumSeeds)
	assert.Equal(t, DefaultStyleMixingParams.SeedRange, p.SeedRange)
	assert.NoError(t, p.Validate())

	p.SeedRange = [2]int{10, 1}
	assert.ErrorIs(t, p.Validate(), ErrValidation)
	assert.True(t, JobStatusFailed.Terminal())
	assert.False(t, JobStatusProcessing.Terminal())
}
