package validator

import (
	"testing"

	"importguard/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, "abra", reg.Prefix())
	assert.Equal(t, []string{"analysis", "components", "config", "core", "pages", "ui", "utils"}, reg.Modules())
	assert.True(t, reg.Contains("core"))
	assert.False(t, reg.Contains("abra"))
	assert.False(t, reg.Contains("os"))
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry("", []string{"core"})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewRegistry("abra.", []string{"core"})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewRegistry("abra", []string{" ", ""})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewRegistry("abra", []string{"core.sub"})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	reg, err := NewRegistry(" acme ", []string{"core", "core", " lib "})
	require.NoError(t, err)
	assert.Equal(t, "acme", reg.Prefix())
	assert.Equal(t, []string{"core", "lib"}, reg.Modules())
}
