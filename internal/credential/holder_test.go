package credential

import (
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder(t *testing.T) {
	h := &Holder{}
	assert.False(t, h.IsSet())
	assert.Empty(t, h.Get())

	h.Set("abc123")
	assert.True(t, h.IsSet())
	assert.Equal(t, "abc123", h.Get())

	h.Clear()
	assert.False(t, h.IsSet())
	assert.Empty(t, h.Get())
}

func TestNewHolder_Seeded(t *testing.T) {
	injector := do.New()
	do.ProvideNamedValue[string](injector, "fal_key", "seeded-key")

	h, err := NewHolder(injector)
	require.NoError(t, err)
	assert.Equal(t, "seeded-key", h.Get())
}
