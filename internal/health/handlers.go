// Package health exposes liveness and readiness probes for the widget host.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/cartsync/internal/common"
)

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

var draining atomic.Bool

// SetReady flips readiness. The host clears it when shutdown begins so load
// balancers stop routing new clicks before the server closes.
func SetReady(ready bool) { draining.Store(!ready) }

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Store        Pinger
	StoreName    string
	StoreTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the cart store probe.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if draining.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	}
	if h.Store == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"store": "unavailable"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout())
	defer cancel()

	name := h.StoreName
	if name == "" {
		name = "store"
	}
	status := "ok"
	code := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		status = err.Error()
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, map[string]string{name: status})
}

func (h Handler) storeTimeout() time.Duration {
	if h.StoreTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.StoreTimeout
}
