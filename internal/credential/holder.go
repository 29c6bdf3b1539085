package credential

import (
	"sync"

	"github.com/samber/do"
)

// Holder keeps the user-supplied API key for the lifetime of the process.
// It is re-read on every submission and passed explicitly into the
// generation client; nothing else reads it.
type Holder struct {
	mu  sync.RWMutex
	key string
}

func NewHolder(i *do.Injector) (*Holder, error) {
	return &Holder{key: do.MustInvokeNamed[string](i, "fal_key")}, nil
}

func (h *Holder) Set(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = key
}

func (h *Holder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key
}

func (h *Holder) Clear() {
	h.Set("")
}

func (h *Holder) IsSet() bool {
	return h.Get() != ""
}
