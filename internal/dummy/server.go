// Package dummy provides a JSON-RPC mock server for exercising flood
// without a real backend, with a method-keyed latency/error profile.
package dummy

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// Profile describes one method's simulated behavior.
type Profile struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	SpikeChance float32       // chance of an additional SpikeExtra delay
	SpikeExtra  time.Duration
	ErrorChance float32 // chance of returning a JSON-RPC error instead of a result
}

// DefaultProfiles gives every built-in method name a jitter+failure recipe:
// fast, medium, slow, spike (rare large latency tail), and error (frequent
// simulated RPC failures).
var DefaultProfiles = map[string]Profile{
	"fast":   {MinLatency: 10 * time.Millisecond, MaxLatency: 50 * time.Millisecond},
	"medium": {MinLatency: 100 * time.Millisecond, MaxLatency: 300 * time.Millisecond},
	"slow":   {MinLatency: 1 * time.Second, MaxLatency: 2 * time.Second},
	"spike":  {MinLatency: 20 * time.Millisecond, MaxLatency: 20 * time.Millisecond, SpikeChance: 0.05, SpikeExtra: 2 * time.Second},
	"error":  {MinLatency: 5 * time.Millisecond, MaxLatency: 15 * time.Millisecond, ErrorChance: 0.4},
}

// fallbackProfile answers any method not present in the configured set, so
// the mock server never 404s a well-formed JSON-RPC request.
var fallbackProfile = Profile{MinLatency: 5 * time.Millisecond, MaxLatency: 20 * time.Millisecond}

// ServerConfig controls the mock server's listen port and per-method
// profiles. A nil/empty Profiles map uses DefaultProfiles.
type ServerConfig struct {
	Port     int
	Profiles map[string]Profile
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (p Profile) delay() time.Duration {
	span := p.MaxLatency - p.MinLatency
	d := p.MinLatency
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	if p.SpikeChance > 0 && rand.Float32() < p.SpikeChance {
		d += p.SpikeExtra
	}
	return d
}

func handle(profiles map[string]Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			http.Error(w, "bad json-rpc envelope", http.StatusBadRequest)
			return
		}

		profile, ok := profiles[req.Method]
		if !ok {
			profile = fallbackProfile
		}
		time.Sleep(profile.delay())

		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
		if profile.ErrorChance > 0 && rand.Float32() < profile.ErrorChance {
			resp.Error = &rpcError{Code: -32000, Message: "dummy: simulated failure"}
		} else {
			resp.Result = json.RawMessage(fmt.Sprintf("{\"method\":%q,\"ok\":true}", req.Method))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Start launches the mock server in the background and returns immediately.
func Start(cfg ServerConfig) *http.Server {
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handle(profiles))

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Dummy JSON-RPC server running on http://localhost%s\n", addr)
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	fmt.Printf("   Methods: %v (any other method falls back to a generic profile)\n", names)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("dummy server failed: %v\n", err)
		}
	}()
	return server
}
