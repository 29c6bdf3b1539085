package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

type Size string

const (
	SizeLandscape43  Size = "landscape_4_3"
	SizeLandscape169 Size = "landscape_16_9"
	SizePortrait43   Size = "portrait_4_3"
	SizePortrait169  Size = "portrait_16_9"
	SizeSquare       Size = "square"
	SizeSquareHD     Size = "square_hd"
)

func Sizes() []Size {
	return []Size{SizeLandscape43, SizeLandscape169, SizePortrait43, SizePortrait169, SizeSquare, SizeSquareHD}
}

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

func Formats() []Format {
	return []Format{FormatJPEG, FormatPNG}
}

const (
	MinSteps    = 20
	MaxSteps    = 50
	MinGuidance = 1.0
	MaxGuidance = 20.0
)

// Params is the payload submitted to the generation service. Field names
// match the remote API and must not change.
type Params struct {
	Prompt              string  `json:"prompt"`
	ImageSize           Size    `json:"image_size"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	NumImages           int     `json:"num_images"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
	Strength            float64 `json:"strength"`
	OutputFormat        Format  `json:"output_format"`
}

func DefaultParams() Params {
	return Params{
		ImageSize:         SizeLandscape43,
		NumInferenceSteps: 28,
		GuidanceScale:     3.5,
		NumImages:         1,
		Strength:          1.0,
		OutputFormat:      FormatJPEG,
	}
}

// Normalize fills unset fields with defaults and pins the fields the service
// surface does not expose: always one image, safety checker always off.
func (p *Params) Normalize() {
	def := DefaultParams()
	p.ImageSize = lo.Ternary(p.ImageSize != "", p.ImageSize, def.ImageSize)
	p.NumInferenceSteps = lo.Ternary(p.NumInferenceSteps != 0, p.NumInferenceSteps, def.NumInferenceSteps)
	p.GuidanceScale = lo.Ternary(p.GuidanceScale != 0, p.GuidanceScale, def.GuidanceScale)
	p.OutputFormat = lo.Ternary(p.OutputFormat != "", p.OutputFormat, def.OutputFormat)
	p.NumImages = 1
	p.EnableSafetyChecker = false
}

func (p Params) Validate() error {
	if p.Prompt == "" {
		return errors.New("prompt must not be empty")
	}
	if !lo.Contains(Sizes(), p.ImageSize) {
		return fmt.Errorf("unknown image size %q", p.ImageSize)
	}
	if p.NumInferenceSteps < MinSteps || p.NumInferenceSteps > MaxSteps {
		return fmt.Errorf("num_inference_steps must be between %d and %d", MinSteps, MaxSteps)
	}
	if p.GuidanceScale < MinGuidance || p.GuidanceScale > MaxGuidance {
		return fmt.Errorf("guidance_scale must be between %.1f and %.1f", MinGuidance, MaxGuidance)
	}
	if p.Strength < 0.0 || p.Strength > 1.0 {
		return errors.New("strength must be between 0.0 and 1.0")
	}
	if !lo.Contains(Formats(), p.OutputFormat) {
		return fmt.Errorf("unknown output format %q", p.OutputFormat)
	}
	return nil
}

type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

type Result struct {
	Images []Image `json:"images"`
	Seed   int64   `json:"seed,omitempty"`
}

// ProgressEvent is one in-flight status message from the remote service.
type ProgressEvent struct {
	Message string `json:"message"`
}

var (
	// ErrEmptyResult means the job reached a terminal state without
	// producing any image.
	ErrEmptyResult = errors.New("no image was generated")

	// ErrUnauthorized means the remote service rejected the credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// Generator runs one generation job to completion. The credential is passed
// explicitly on every call; there is no ambient authentication state.
// Progress events are sent to the caller-owned channel as they arrive and
// are dropped when the consumer is not reading. Generate blocks until the
// job reaches a terminal state, the context is cancelled, or the remote
// call fails. There are no retries.
type Generator interface {
	Generate(ctx context.Context, key string, params Params, progress chan<- ProgressEvent) (*Result, error)
}
