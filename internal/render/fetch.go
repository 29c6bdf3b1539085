package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/samber/do"

	"fluxstudio/internal/log"
)

// ImageData is a fetched and decoded result image.
type ImageData struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

type Fetcher struct {
	Client *http.Client
}

func NewFetcher(i *do.Injector) (*Fetcher, error) {
	return &Fetcher{Client: do.MustInvoke[*http.Client](i)}, nil
}

// Fetch downloads the image at url and verifies the bytes decode as jpeg or
// png before handing them on.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ImageData, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("render").With("url", url)
	log.Info("fetching result image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: remote returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	return &ImageData{
		Data:        data,
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
