package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Normalize(t *testing.T) {
	p := Params{Prompt: "a red fox in snow"}
	p.Normalize()

	assert.Equal(t, SizeLandscape43, p.ImageSize)
	assert.Equal(t, 28, p.NumInferenceSteps)
	assert.Equal(t, 3.5, p.GuidanceScale)
	assert.Equal(t, FormatJPEG, p.OutputFormat)
	assert.Equal(t, 1, p.NumImages)
	assert.False(t, p.EnableSafetyChecker)
}

func TestParams_NormalizePinsFixedFields(t *testing.T) {
	p := Params{Prompt: "x", NumImages: 4, EnableSafetyChecker: true}
	p.Normalize()

	assert.Equal(t, 1, p.NumImages)
	assert.False(t, p.EnableSafetyChecker)
}

func TestParams_Validate(t *testing.T) {
	valid := DefaultParams()
	valid.Prompt = "a red fox in snow"

	tests := []struct {
		name   string
		mutate func(*Params)
		errMsg string
	}{
		{"valid", func(p *Params) {}, ""},
		{"empty prompt", func(p *Params) { p.Prompt = "" }, "prompt must not be empty"},
		{"unknown size", func(p *Params) { p.ImageSize = "tall" }, "unknown image size"},
		{"steps too low", func(p *Params) { p.NumInferenceSteps = 19 }, "num_inference_steps"},
		{"steps too high", func(p *Params) { p.NumInferenceSteps = 51 }, "num_inference_steps"},
		{"guidance too low", func(p *Params) { p.GuidanceScale = 0.5 }, "guidance_scale"},
		{"guidance too high", func(p *Params) { p.GuidanceScale = 20.5 }, "guidance_scale"},
		{"strength negative", func(p *Params) { p.Strength = -0.1 }, "strength"},
		{"strength too high", func(p *Params) { p.Strength = 1.1 }, "strength"},
		{"unknown format", func(p *Params) { p.OutputFormat = "webp" }, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}

func TestParams_BoundsAreInclusive(t *testing.T) {
	p := DefaultParams()
	p.Prompt = "x"

	p.NumInferenceSteps = MinSteps
	assert.NoError(t, p.Validate())
	p.NumInferenceSteps = MaxSteps
	assert.NoError(t, p.Validate())

	p.GuidanceScale = MinGuidance
	assert.NoError(t, p.Validate())
	p.GuidanceScale = MaxGuidance
	assert.NoError(t, p.Validate())

	p.Strength = 0.0
	assert.NoError(t, p.Validate())
	p.Strength = 1.0
	assert.NoError(t, p.Validate())
}
