package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/samber/do"

	"fluxstudio/internal/image"
	"fluxstudio/internal/log"
)

//go:embed assets/index.html
var indexTmpl string

// ExamplePrompt is the sample prompt behind the "Load Example Prompt"
// action.
const ExamplePrompt = `A charismatic speaker is captured mid-speech. He has long, slightly wavy blonde hair tied back in a ponytail. His expressive face, adorned with a salt-and-pepper beard and mustache, is animated as he gestures with his left hand, displaying a large ring on his pinky finger. He is holding a black microphone in his right hand, speaking passionately. The man is wearing a dark, textured shirt with unique, slightly shimmering patterns, and a green lanyard with multiple badges and logos hanging around his neck. The lanyard features the "Autodesk" and "V-Ray" logos prominently. Behind him, there is a blurred background with a white banner containing logos and text, indicating a professional or conference setting. The overall scene is vibrant and dynamic, capturing the energy of a live presentation.`

type Params struct {
	Defaults      image.Params
	Sizes         []image.Size
	Formats       []image.Format
	MinSteps      int
	MaxSteps      int
	MinGuidance   float64
	MaxGuidance   float64
	ExamplePrompt string
	KeySet        bool
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (t *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	t.once.Do(func() {
		t.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating page")

	var data bytes.Buffer
	if err := t.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
