package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxstudio/internal/image"
)

func testParams() Params {
	return Params{
		Defaults:      image.DefaultParams(),
		Sizes:         image.Sizes(),
		Formats:       image.Formats(),
		MinSteps:      image.MinSteps,
		MaxSteps:      image.MaxSteps,
		MinGuidance:   image.MinGuidance,
		MaxGuidance:   image.MaxGuidance,
		ExamplePrompt: ExamplePrompt,
	}
}

func TestTemplate(t *testing.T) {
	tr := &Templator{}
	html, err := tr.Template(context.Background(), testParams())
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "Flux Realism Image Generator")
	for _, size := range image.Sizes() {
		assert.Contains(t, body, string(size))
	}
	assert.Contains(t, body, `min="20" max="50"`)
	assert.Contains(t, body, "A charismatic speaker is captured mid-speech")
	assert.Contains(t, body, "Enter your FAL API key")
}

func TestTemplate_KeySet(t *testing.T) {
	params := testParams()
	params.KeySet = true

	tr := &Templator{}
	html, err := tr.Template(context.Background(), params)
	require.NoError(t, err)

	assert.Contains(t, string(html), "(key already set)")
}
