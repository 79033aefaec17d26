// Package rpcclient issues individual JSON-RPC calls and classifies their
// outcome. It never retries: failures are surfaced as samples, not masked.
package rpcclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"flood/internal/model"
)

// Client issues JSON-RPC calls against one of a fixed set of endpoints,
// round-robining by a global dispatch counter so load balances independent
// of rate.
type Client struct {
	http      *http.Client
	endpoints []string
	counter   uint64
	timeout   time.Duration
}

// New builds a Client with a pooled, keep-alive transport sized for the
// concurrency levels this tool drives.
func New(endpoints []string, timeout time.Duration) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4096
	t.MaxConnsPerHost = 4096
	t.MaxIdleConnsPerHost = 4096
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: t},
		endpoints: endpoints,
		timeout:   timeout,
	}
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      uint64             `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  json.RawMessage  `json:"result"`
	Error   *rpcResponseErr  `json:"error"`
}

type rpcResponseErr struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Result is the outcome of one issued call.
type Result struct {
	StartTs       time.Time
	EndTs         time.Time
	Outcome       model.Outcome
	ResponseBytes int64
	Endpoint      string
	Err           error
}

// nextDispatch round-robins across the configured endpoints by a global
// atomic counter. The same counter value doubles as the JSON-RPC request id.
func (c *Client) nextDispatch() (endpoint string, id uint64) {
	n := atomic.AddUint64(&c.counter, 1) - 1
	return c.endpoints[n%uint64(len(c.endpoints))], n
}

// Issue performs one JSON-RPC call and classifies its outcome. It never
// retries. start/end timestamps come from the monotonic wall clock
// (time.Now, which Go backs with a monotonic reading).
func (c *Client) Issue(ctx context.Context, call model.ConcreteCall) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint, id := c.nextDispatch()
	start := time.Now()

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  call.Method,
		Params:  call.Params,
	})
	if err != nil {
		end := time.Now()
		return Result{StartTs: start, EndTs: end, Outcome: model.ErrDecode, Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		end := time.Now()
		return Result{StartTs: start, EndTs: end, Outcome: model.ErrHttp, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	end := time.Now()
	if err != nil {
		if ctx.Err() != nil {
			return Result{StartTs: start, EndTs: end, Outcome: model.ErrTimeout, Endpoint: endpoint, Err: err}
		}
		return Result{StartTs: start, EndTs: end, Outcome: model.ErrHttp, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	end = time.Now()
	if err != nil {
		return Result{StartTs: start, EndTs: end, Outcome: model.ErrHttp, Endpoint: endpoint, ResponseBytes: int64(len(raw)), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{
			StartTs: start, EndTs: end, Outcome: model.ErrHttp, Endpoint: endpoint,
			ResponseBytes: int64(len(raw)),
			Err:           fmt.Errorf("rpcclient: http status %d", resp.StatusCode),
		}
	}

	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{StartTs: start, EndTs: end, Outcome: model.ErrDecode, Endpoint: endpoint, ResponseBytes: int64(len(raw)), Err: err}
	}

	if decoded.Error != nil {
		return Result{
			StartTs: start, EndTs: end, Outcome: model.ErrRpc, Endpoint: endpoint,
			ResponseBytes: int64(len(raw)),
			Err:           fmt.Errorf("rpcclient: rpc error %d: %s", decoded.Error.Code, decoded.Error.Message),
		}
	}

	return Result{StartTs: start, EndTs: end, Outcome: model.Ok, Endpoint: endpoint, ResponseBytes: int64(len(raw))}
}
