package builderrors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Configurationf("translate languages", "language #%d has a blank setup", 2)
	assert.Equal(t, "translate languages: configuration error: language #2 has a blank setup", err.Error())

	wrapped := WrapConfiguration("prepare temp dir", fs.ErrPermission, "cannot create /tmp/x")
	assert.Equal(t, "prepare temp dir: configuration error: cannot create /tmp/x: permission denied", wrapped.Error())
	assert.ErrorIs(t, wrapped, fs.ErrPermission)
}

func TestClassification(t *testing.T) {
	cfg := fmt.Errorf("assemble: %w", Configurationf("op", "bad"))
	val := Validationf("invoke engine", "validation errors")
	reg := RegistrationWarning("/proj/missing", fs.ErrNotExist)
	other := errors.New("boom")

	assert.True(t, IsConfiguration(cfg))
	assert.True(t, IsBuildFailure(cfg))

	assert.True(t, IsValidation(val))
	assert.True(t, IsBuildFailure(val))

	assert.False(t, IsBuildFailure(reg))
	k, ok := KindOf(reg)
	assert.True(t, ok)
	assert.Equal(t, Registration, k)

	assert.False(t, IsBuildFailure(other))
	_, ok = KindOf(other)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "configuration", Configuration.String())
	assert.Equal(t, "validation", Validation.String())
	assert.Equal(t, "registration", Registration.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
