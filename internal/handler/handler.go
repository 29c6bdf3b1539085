package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"

	"fluxstudio/internal/credential"
	"fluxstudio/internal/image"
	"fluxstudio/internal/log"
	"fluxstudio/internal/page"
	"fluxstudio/internal/render"
)

const (
	EndpointIndex    = "/"
	EndpointHealth   = "/health"
	EndpointGenerate = "/api/generate"
	EndpointKey      = "/api/key"
	EndpointImage    = "/api/image"
)

const (
	emptyResultMessage  = "No image was generated. Please try again."
	unauthorizedHint    = "Invalid API key. Please check your API key and try again."
	genericErrorMessage = "Error generating image: "
)

type Handler struct {
	generator image.Generator
	fetcher   *render.Fetcher
	templator *page.Templator
	holder    *credential.Holder

	// one generation in flight per process
	busy sync.Mutex
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		generator: do.MustInvoke[image.Generator](i),
		fetcher:   do.MustInvoke[*render.Fetcher](i),
		templator: do.MustInvoke[*page.Templator](i),
		holder:    do.MustInvoke[*credential.Holder](i),
	}, nil
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET(EndpointIndex, h.Index)
	r.GET(EndpointHealth, h.Health)
	r.POST(EndpointGenerate, h.Generate)
	r.GET(EndpointKey, h.KeyStatus)
	r.POST(EndpointKey, h.SetKey)
	r.DELETE(EndpointKey, h.ClearKey)
	r.GET(EndpointImage, h.Image)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "fluxstudio"})
}

func (h *Handler) Index(c *gin.Context) {
	html, err := h.templator.Template(c.Request.Context(), page.Params{
		Defaults:      image.DefaultParams(),
		Sizes:         image.Sizes(),
		Formats:       image.Formats(),
		MinSteps:      image.MinSteps,
		MaxSteps:      image.MaxSteps,
		MinGuidance:   image.MinGuidance,
		MaxGuidance:   image.MaxGuidance,
		ExamplePrompt: page.ExamplePrompt,
		KeySet:        h.holder.IsSet(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

type generateRequest struct {
	image.Params
	APIKey string `json:"api_key,omitempty"`
}

// Generate runs one job and streams progress back as server-sent events:
// zero or more "progress" events followed by exactly one "done" or "error".
func (h *Handler) Generate(c *gin.Context) {
	// bind over defaults so omitted fields keep them; zero is a legal
	// strength value and must survive binding
	req := generateRequest{Params: image.DefaultParams()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.APIKey != "" {
		h.holder.Set(req.APIKey)
	}
	key := h.holder.Get()
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required"})
		return
	}

	params := req.Params
	params.Normalize()
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.busy.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "a generation is already in flight"})
		return
	}
	defer h.busy.Unlock()

	ctx := c.Request.Context()
	logger := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("prompt", params.Prompt)
	logger.Info("starting generation")

	type outcome struct {
		result *image.Result
		err    error
	}
	progress := make(chan image.ProgressEvent, 16)
	done := make(chan outcome, 1)
	go func() {
		result, err := h.generator.Generate(ctx, key, params, progress)
		done <- outcome{result, err}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			// client gone; the generator sees the same context
			return
		case ev := <-progress:
			c.SSEvent("progress", ev)
			c.Writer.Flush()
		case out := <-done:
			// flush progress that raced with completion
			for drained := false; !drained; {
				select {
				case ev := <-progress:
					c.SSEvent("progress", ev)
				default:
					drained = true
				}
			}
			if out.err != nil {
				logger.Info("generation failed", "error", out.err.Error())
				c.SSEvent("error", gin.H{
					"message":      userMessage(out.err),
					"unauthorized": errors.Is(out.err, image.ErrUnauthorized),
					"hint":         hint(out.err),
				})
			} else {
				logger.Info("generation succeeded", "images", len(out.result.Images))
				c.SSEvent("done", gin.H{
					"url":    out.result.Images[0].URL,
					"images": out.result.Images,
					"seed":   out.result.Seed,
					"params": params,
				})
			}
			c.Writer.Flush()
			return
		}
	}
}

func userMessage(err error) string {
	if errors.Is(err, image.ErrEmptyResult) {
		return emptyResultMessage
	}
	return genericErrorMessage + err.Error()
}

func hint(err error) string {
	if errors.Is(err, image.ErrUnauthorized) {
		return unauthorizedHint
	}
	return ""
}

type keyRequest struct {
	APIKey string `json:"api_key"`
}

func (h *Handler) KeyStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"set": h.holder.IsSet()})
}

func (h *Handler) SetKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}
	h.holder.Set(req.APIKey)
	c.JSON(http.StatusOK, gin.H{"set": true})
}

func (h *Handler) ClearKey(c *gin.Context) {
	h.holder.Clear()
	c.JSON(http.StatusOK, gin.H{"set": false})
}

// Image proxies a generated image so the page can render it without
// cross-origin trouble, verifying the bytes decode before serving them.
func (h *Handler) Image(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	img, err := h.fetcher.Fetch(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
