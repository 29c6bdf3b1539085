package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/do"

	"fluxstudio/internal/log"
)

const statusCompleted = "COMPLETED"

// FalGenerator talks to the fal.ai queue API: submit the job, poll its
// status for log messages, fetch the result once the job completes.
type FalGenerator struct {
	Client       *http.Client
	Base         string
	Model        string
	PollInterval time.Duration
}

func NewFalGenerator(i *do.Injector) (Generator, error) {
	return &FalGenerator{
		Client:       do.MustInvoke[*http.Client](i),
		Base:         do.MustInvokeNamed[string](i, "fal_base_url"),
		Model:        do.MustInvokeNamed[string](i, "fal_model"),
		PollInterval: do.MustInvokeNamed[time.Duration](i, "fal_poll_interval"),
	}, nil
}

type queuedResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type statusResponse struct {
	Status string `json:"status"`
	Logs   []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

func (g *FalGenerator) Generate(ctx context.Context, key string, params Params, progress chan<- ProgressEvent) (*Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("fal").With("model", g.Model)
	log.Info("submitting generation job")

	var queued queuedResponse
	if err := g.call(ctx, http.MethodPost, g.Base+"/"+g.Model, key, params, &queued); err != nil {
		return nil, err
	}
	log.Info("job queued", "request_id", queued.RequestID)

	statusURL := queued.StatusURL + "?logs=1"
	ticker := time.NewTicker(g.PollInterval)
	defer ticker.Stop()

	delivered := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var status statusResponse
		if err := g.call(ctx, http.MethodGet, statusURL, key, nil, &status); err != nil {
			return nil, err
		}

		for _, entry := range status.Logs[min(delivered, len(status.Logs)):] {
			select {
			case progress <- ProgressEvent{Message: entry.Message}:
			default:
				// consumer not reading; drop rather than stall the poll
			}
		}
		if len(status.Logs) > delivered {
			delivered = len(status.Logs)
		}

		if status.Status == statusCompleted {
			break
		}
	}

	var result Result
	if err := g.call(ctx, http.MethodGet, queued.ResponseURL, key, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, ErrEmptyResult
	}

	log.Info("job completed", "request_id", queued.RequestID, "images", len(result.Images))
	return &result, nil
}

func (g *FalGenerator) call(ctx context.Context, method, url, key string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Key "+key)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: remote returned %s", ErrUnauthorized, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classify(fmt.Errorf("remote returned %s: %s", resp.Status, strings.TrimSpace(string(data))))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// classify falls back to matching the error text when the failure carries no
// usable status code.
func classify(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "unauthorized") {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}
