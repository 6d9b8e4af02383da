package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Probe provides liveness and readiness checks for the serve mode.
type Probe struct {
	startTime time.Time

	mu     sync.RWMutex
	ready  bool
	reason string
}

// New creates a probe in the not-ready state.
func New() *Probe {
	return &Probe{
		startTime: time.Now(),
		reason:    "starting",
	}
}

// SetReady marks the service ready to accept order tasks.
func (p *Probe) SetReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	p.reason = ""
}

// SetNotReady marks the service not ready, with the reason reported by the
// readiness endpoint.
func (p *Probe) SetNotReady(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
	p.reason = reason
}

type probeResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Reason        string  `json:"reason,omitempty"`
}

// Health is the liveness handler: 200 whenever the process is running.
func (p *Probe) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, http.StatusOK, probeResponse{
			Status:        "healthy",
			UptimeSeconds: time.Since(p.startTime).Seconds(),
		})
	}
}

// Ready is the readiness handler: 200 when ready, 503 with a reason
// otherwise.
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		ready, reason := p.ready, p.reason
		p.mu.RUnlock()

		if !ready {
			writeProbe(w, http.StatusServiceUnavailable, probeResponse{
				Status: "not_ready",
				Reason: reason,
			})
			return
		}

		writeProbe(w, http.StatusOK, probeResponse{
			Status:        "ready",
			UptimeSeconds: time.Since(p.startTime).Seconds(),
		})
	}
}

func writeProbe(w http.ResponseWriter, status int, resp probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
